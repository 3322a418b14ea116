package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/politrack/politrack-api/internal/models"
	"github.com/politrack/politrack-api/internal/service"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
)

type cursoServiceMock struct {
	cursos map[string]models.Curso
	err    error
}

func (m *cursoServiceMock) Create(ctx context.Context, req service.CreateCursoRequest) (*models.Curso, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Curso{ID: "curso-1", Nombre: req.Nombre, Estudiantes: req.Estudiantes}, nil
}

func (m *cursoServiceMock) ImportCSV(ctx context.Context, req service.ImportCursoRequest) (*models.Curso, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Curso{ID: "curso-1", Nombre: req.Nombre}, nil
}

func (m *cursoServiceMock) List(ctx context.Context) (map[string]models.Curso, error) {
	return m.cursos, m.err
}

func (m *cursoServiceMock) Get(ctx context.Context, cursoID string) (*models.Curso, error) {
	if m.err != nil {
		return nil, m.err
	}
	curso, ok := m.cursos[cursoID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "curso not found")
	}
	return &curso, nil
}

func (m *cursoServiceMock) Rename(ctx context.Context, cursoID string, req service.RenameCursoRequest) (*models.Curso, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Curso{ID: cursoID, Nombre: req.Nombre}, nil
}

func (m *cursoServiceMock) ReplaceEstudiantes(ctx context.Context, cursoID string, req service.ReplaceEstudiantesRequest) (*models.Curso, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Curso{ID: cursoID, Estudiantes: req.Estudiantes}, nil
}

func (m *cursoServiceMock) Delete(ctx context.Context, cursoID string) error {
	return m.err
}

func TestCursoHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCursoHandler(&cursoServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.CreateCursoRequest{
		Nombre: "Arquitectura de Software",
		Estudiantes: []models.Estudiante{
			{Apellidos: "Aguirre", Nombres: "Alice", Correo: "alice@uni.edu", Grupo: "G1", Subgrupo: "G1-A"},
		},
	})
	req, _ := http.NewRequest(http.MethodPost, "/cursos", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestCursoHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCursoHandler(&cursoServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/cursos", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCursoHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCursoHandler(&cursoServiceMock{cursos: map[string]models.Curso{}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/cursos/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "cursoId", Value: "missing"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCursoHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCursoHandler(&cursoServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/cursos/curso-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "cursoId", Value: "curso-1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCursoHandlerDeleteStoreUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCursoHandler(&cursoServiceMock{err: appErrors.ErrStoreUnavailable})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/cursos/curso-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "cursoId", Value: "curso-1"}}

	handler.Delete(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
