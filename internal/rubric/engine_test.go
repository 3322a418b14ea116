package rubric

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/politrack/politrack-api/internal/models"
)

func TestCriterionPointsClampsAtZero(t *testing.T) {
	assert.Equal(t, 12, CriterionPoints(10, 2))
	assert.Equal(t, 8, CriterionPoints(10, -2))
	assert.Equal(t, 0, CriterionPoints(2, -5))
	assert.Equal(t, 0, CriterionPoints(0, -1))
}

func TestToggleRemovesRepeatedSelection(t *testing.T) {
	sel := Seleccion{}
	sel.Toggle("participacion", 8)
	assert.Equal(t, 8, sel["participacion"])

	sel.Toggle("participacion", 10)
	assert.Equal(t, 10, sel["participacion"])

	sel.Toggle("participacion", 10)
	_, ok := sel["participacion"]
	assert.False(t, ok, "re-picking the same level must unscore the criterion")
}

func TestResolveLevelExactMatchOnly(t *testing.T) {
	criterio := Individual().Criterios[0]

	nivel, ok := ResolveLevel(criterio, 12)
	require.True(t, ok)
	assert.Equal(t, 12, nivel.Valor)

	_, ok = ResolveLevel(criterio, 13)
	assert.False(t, ok, "adjusted totals must not resolve to a base level")
}

func TestMaxScoreSumsHighestLevels(t *testing.T) {
	assert.Equal(t, 40, MaxScore(Individual()))

	e1, ok := Grupal(models.EntregaE1)
	require.True(t, ok)
	assert.Equal(t, 30, MaxScore(e1))

	e2, ok := Grupal(models.EntregaE2)
	require.True(t, ok)
	assert.Equal(t, 40, MaxScore(e2))

	ef, ok := Grupal(models.EntregaEF)
	require.True(t, ok)
	assert.Equal(t, 60, MaxScore(ef))
}

func TestGrupalUnknownEntrega(t *testing.T) {
	_, ok := Grupal(models.Entrega("E9"))
	assert.False(t, ok)
}

func TestBuildDetalleKeepsRubricOrder(t *testing.T) {
	sel := Seleccion{
		"responsabilidad":      5,
		"conocimiento_tecnico": 12,
	}
	detalle := BuildDetalle(Individual(), sel, nil, nil, "buen trabajo", time.Now())

	require.Len(t, detalle.Criterios, 2)
	assert.Equal(t, "conocimiento_tecnico", detalle.Criterios[0].Codigo)
	assert.Equal(t, "responsabilidad", detalle.Criterios[1].Codigo)
	assert.Equal(t, 17, detalle.TotalScore)
	assert.Equal(t, "buen trabajo", detalle.Comentarios)
}

func TestBuildDetallePersistsSelectedLevelWithAdjustment(t *testing.T) {
	sel := Seleccion{"participacion": 8}
	ajustes := map[string]int{"participacion": -3}

	detalle := BuildDetalle(Individual(), sel, ajustes, nil, "", time.Now())

	require.Len(t, detalle.Criterios, 1)
	c := detalle.Criterios[0]
	require.NotNil(t, c.SelectedLevel)
	assert.Equal(t, 8, *c.SelectedLevel)
	assert.Equal(t, 5, c.Points)
	assert.Equal(t, map[string]int{"participacion": -3}, detalle.AjustesPuntaje)
}

func TestBuildDetalleNegativeAdjustmentClamps(t *testing.T) {
	sel := Seleccion{"responsabilidad": 1}
	ajustes := map[string]int{"responsabilidad": -4}

	detalle := BuildDetalle(Individual(), sel, ajustes, nil, "", time.Now())

	require.Len(t, detalle.Criterios, 1)
	assert.Equal(t, 0, detalle.Criterios[0].Points)
	assert.Equal(t, 0, detalle.TotalScore)
}

func TestBuildDetalleDropsAdjustmentsForUnselectedCriteria(t *testing.T) {
	sel := Seleccion{"participacion": 8}
	ajustes := map[string]int{"comunicacion": 2}

	detalle := BuildDetalle(Individual(), sel, ajustes, nil, "", time.Now())

	assert.Nil(t, detalle.AjustesPuntaje)
	assert.Equal(t, 8, detalle.TotalScore)
}

func TestDefinicionesIncludesAllRubrics(t *testing.T) {
	defs := Definiciones()
	require.Len(t, defs, 4)
	for _, id := range []string{"individual", "grupal_e1", "grupal_e2", "grupal_ef"} {
		_, ok := defs[id]
		assert.True(t, ok, "missing rubric %s", id)
	}
}
