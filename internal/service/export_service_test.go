package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/politrack/politrack-api/internal/models"
)

type exportStoreStub struct {
	curso models.Curso
	evs   models.EvaluacionesCurso
}

func (s *exportStoreStub) GetCurso(ctx context.Context, cursoID string) (*models.Curso, error) {
	return &s.curso, nil
}

func (s *exportStoreStub) GetEvaluacionesCurso(ctx context.Context, cursoID string) (models.EvaluacionesCurso, error) {
	return s.evs, nil
}

func exportFixture() *exportStoreStub {
	pg, pi := 25, 38
	evs := models.NewEvaluacionesCurso()
	evs[models.EntregaE1]["alice@uni.edu"] = models.Evaluacion{
		Correo: "alice@uni.edu", PGScore: &pg, PIScore: &pi, Sumatoria: 63,
	}
	return &exportStoreStub{
		curso: models.Curso{
			ID:     "curso-1",
			Nombre: "Arquitectura de Software",
			Estudiantes: []models.Estudiante{
				{Apellidos: "Bravo", Nombres: "Benito", Correo: "benito@uni.edu", Grupo: "G1", Subgrupo: "G1-B"},
				{Apellidos: "Aguirre", Nombres: "Alice", Correo: "alice@uni.edu", Grupo: "G1", Subgrupo: "G1-A"},
			},
		},
		evs: evs,
	}
}

func TestExportServiceScoreSheetCSV(t *testing.T) {
	svc := NewExportService(exportFixture(), ',', nil)

	out, filename, err := svc.ScoreSheetCSV(context.Background(), "curso-1")
	require.NoError(t, err)
	assert.Equal(t, "notas_arquitectura_de_software.csv", filename)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Entrega 1 PG")
	// rows sorted by apellidos
	assert.True(t, strings.HasPrefix(lines[1], "Aguirre"))
	assert.Contains(t, lines[1], "25,38,63")
	// students without an evaluation get empty score cells
	assert.True(t, strings.HasPrefix(lines[2], "Bravo"))
	assert.Contains(t, lines[2], ",,")
}

func TestExportServiceScoreSheetPDF(t *testing.T) {
	svc := NewExportService(exportFixture(), ',', nil)

	out, filename, err := svc.ScoreSheetPDF(context.Background(), "curso-1")
	require.NoError(t, err)
	assert.Equal(t, "notas_arquitectura_de_software.pdf", filename)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestExportFilenameSlug(t *testing.T) {
	assert.Equal(t, "notas_curso.csv", exportFilename("¡¡¡", "csv"))
	assert.Equal(t, "notas_poo_2026-1.pdf", exportFilename("POO 2026-1", "pdf"))
}
