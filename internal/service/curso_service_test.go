package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/politrack/politrack-api/internal/models"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
)

type cursoStoreStub struct {
	cursos      map[string]models.Curso
	deletedEvs  []string
	saveErr     error
	deletedCurs []string
}

func newCursoStoreStub() *cursoStoreStub {
	return &cursoStoreStub{cursos: map[string]models.Curso{}}
}

func (s *cursoStoreStub) SaveCurso(ctx context.Context, cursoID string, update models.CursoUpdate) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	curso := s.cursos[cursoID]
	curso.ID = cursoID
	if update.Nombre != nil {
		curso.Nombre = *update.Nombre
	}
	if update.Estudiantes != nil {
		curso.Estudiantes = *update.Estudiantes
	}
	s.cursos[cursoID] = curso
	return nil
}

func (s *cursoStoreStub) GetCurso(ctx context.Context, cursoID string) (*models.Curso, error) {
	curso, ok := s.cursos[cursoID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "curso not found")
	}
	return &curso, nil
}

func (s *cursoStoreStub) ListCursos(ctx context.Context) (map[string]models.Curso, error) {
	return s.cursos, nil
}

func (s *cursoStoreStub) DeleteCurso(ctx context.Context, cursoID string) error {
	delete(s.cursos, cursoID)
	s.deletedCurs = append(s.deletedCurs, cursoID)
	return nil
}

func (s *cursoStoreStub) DeleteEvaluacionesEstudiante(ctx context.Context, cursoID, correo string) error {
	s.deletedEvs = append(s.deletedEvs, correo)
	return nil
}

func rosterFixture() []models.Estudiante {
	return []models.Estudiante{
		{Apellidos: "Aguirre", Nombres: "Alice", Correo: "alice@uni.edu", Grupo: "G1", Subgrupo: "G1-A"},
		{Apellidos: "Bravo", Nombres: "Benito", Correo: "benito@uni.edu", Grupo: "G1", Subgrupo: "G1-B"},
	}
}

func TestCursoServiceCreateAssignsID(t *testing.T) {
	store := newCursoStoreStub()
	svc := NewCursoService(store, validator.New(), nil)

	curso, err := svc.Create(context.Background(), CreateCursoRequest{
		Nombre:      "Arquitectura de Software",
		Estudiantes: rosterFixture(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, curso.ID)
	assert.Equal(t, "Arquitectura de Software", curso.Nombre)
	assert.Len(t, curso.Estudiantes, 2)
}

func TestCursoServiceCreateRejectsEmptyRoster(t *testing.T) {
	svc := NewCursoService(newCursoStoreStub(), validator.New(), nil)

	_, err := svc.Create(context.Background(), CreateCursoRequest{Nombre: "Curso vacío"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCursoServiceCreateRejectsDuplicateCorreos(t *testing.T) {
	svc := NewCursoService(newCursoStoreStub(), validator.New(), nil)

	roster := rosterFixture()
	roster[1].Correo = "ALICE@uni.edu"
	_, err := svc.Create(context.Background(), CreateCursoRequest{Nombre: "Curso", Estudiantes: roster})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCursoServiceCreateRejectsInvalidCorreo(t *testing.T) {
	svc := NewCursoService(newCursoStoreStub(), validator.New(), nil)

	roster := rosterFixture()
	roster[0].Correo = "not-an-email"
	_, err := svc.Create(context.Background(), CreateCursoRequest{Nombre: "Curso", Estudiantes: roster})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCursoServiceImportCSV(t *testing.T) {
	svc := NewCursoService(newCursoStoreStub(), validator.New(), nil)

	curso, err := svc.ImportCSV(context.Background(), ImportCursoRequest{
		Nombre:     "Curso Importado",
		CSVContent: "apellidos,nombres,correo,grupo,subgrupo\nAguirre,Alice,alice@uni.edu,G1,G1-A\n",
	})
	require.NoError(t, err)
	require.Len(t, curso.Estudiantes, 1)
	assert.Equal(t, "alice@uni.edu", curso.Estudiantes[0].Correo)
}

func TestCursoServiceRenameUnknownCurso(t *testing.T) {
	svc := NewCursoService(newCursoStoreStub(), validator.New(), nil)

	_, err := svc.Rename(context.Background(), "missing", RenameCursoRequest{Nombre: "Nuevo"})
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestCursoServiceReplaceEstudiantesDropsRemovedEvaluations(t *testing.T) {
	store := newCursoStoreStub()
	store.cursos["curso-1"] = models.Curso{ID: "curso-1", Nombre: "Curso", Estudiantes: rosterFixture()}
	svc := NewCursoService(store, validator.New(), nil)

	newRoster := []models.Estudiante{
		{Apellidos: "Aguirre", Nombres: "Alice", Correo: "alice@uni.edu", Grupo: "G1", Subgrupo: "G1-A"},
		{Apellidos: "Castro", Nombres: "Carla", Correo: "carla@uni.edu", Grupo: "G1", Subgrupo: "G1-B"},
	}
	curso, err := svc.ReplaceEstudiantes(context.Background(), "curso-1", ReplaceEstudiantesRequest{Estudiantes: newRoster})
	require.NoError(t, err)
	assert.Len(t, curso.Estudiantes, 2)
	assert.Equal(t, []string{"benito@uni.edu"}, store.deletedEvs)
}

func TestCursoServiceDelete(t *testing.T) {
	store := newCursoStoreStub()
	store.cursos["curso-1"] = models.Curso{ID: "curso-1", Nombre: "Curso"}
	svc := NewCursoService(store, validator.New(), nil)

	require.NoError(t, svc.Delete(context.Background(), "curso-1"))
	assert.Equal(t, []string{"curso-1"}, store.deletedCurs)

	err := svc.Delete(context.Background(), "curso-1")
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}
