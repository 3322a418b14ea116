package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestRecalcSumatoriaTreatsNilAsZero(t *testing.T) {
	ev := Evaluacion{}
	ev.RecalcSumatoria()
	assert.Equal(t, 0, ev.Sumatoria)

	ev.PGScore = intPtr(30)
	ev.RecalcSumatoria()
	assert.Equal(t, 30, ev.Sumatoria)

	ev.PIScore = intPtr(40)
	ev.RecalcSumatoria()
	assert.Equal(t, 70, ev.Sumatoria)
}

func TestNormalizeFillsMissingEntregas(t *testing.T) {
	evs := EvaluacionesCurso{
		EntregaE1: {"a@uni.edu": {Correo: "a@uni.edu"}},
	}
	evs = evs.Normalize()
	for _, entrega := range Entregas {
		require.NotNil(t, evs[entrega])
	}
	assert.Len(t, evs[EntregaE1], 1)

	var nilSet EvaluacionesCurso
	normalized := nilSet.Normalize()
	for _, entrega := range Entregas {
		require.NotNil(t, normalized[entrega])
	}
}

func TestEstudiantesPorSubgrupo(t *testing.T) {
	curso := Curso{Estudiantes: []Estudiante{
		{Correo: "a@uni.edu", Subgrupo: "G1-A"},
		{Correo: "b@uni.edu", Subgrupo: "G1-B"},
		{Correo: "c@uni.edu", Subgrupo: "G1-A"},
	}}
	miembros := curso.EstudiantesPorSubgrupo("G1-A")
	require.Len(t, miembros, 2)
	assert.Equal(t, "a@uni.edu", miembros[0].Correo)
	assert.Equal(t, "c@uni.edu", miembros[1].Correo)
	assert.Empty(t, curso.EstudiantesPorSubgrupo("G9-Z"))
}
