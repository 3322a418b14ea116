// Package rubric implements the pure scoring rules for rubric-based
// evaluations. It performs no I/O.
package rubric

import (
	"time"

	"github.com/politrack/politrack-api/internal/models"
)

// CriterionPoints applies a signed manual adjustment on top of a chosen base
// level value. The result is clamped at zero, never negative.
func CriterionPoints(baseLevelValue, ajuste int) int {
	points := baseLevelValue + ajuste
	if points < 0 {
		return 0
	}
	return points
}

// Total sums the awarded points of every criterion result. There is no
// weighting beyond what is embedded in the level values themselves.
func Total(criterios []models.CriterioResultado) int {
	total := 0
	for _, c := range criterios {
		total += c.Points
	}
	return total
}

// ResolveLevel finds the level whose valor equals the given points. It only
// matches exactly: once an adjustment is baked into a stored total, the base
// level cannot be recovered this way, which is why CriterioResultado carries
// SelectedLevel as its own persisted field.
func ResolveLevel(c models.Criterio, puntos int) (models.Nivel, bool) {
	for _, n := range c.Niveles {
		if n.Valor == puntos {
			return n, true
		}
	}
	return models.Nivel{}, false
}

// MaxScore is the official maximum of a rubric: the sum of each criterion's
// highest level value. Manual adjustments do not count toward it.
func MaxScore(r models.Rubrica) int {
	total := 0
	for _, c := range r.Criterios {
		max := 0
		for _, n := range c.Niveles {
			if n.Valor > max {
				max = n.Valor
			}
		}
		total += max
	}
	return total
}

// Seleccion maps criterion code to the chosen base level value.
type Seleccion map[string]int

// Toggle records a level pick. Selecting the level already chosen for a
// criterion removes the criterion from the selection entirely, returning it
// to "unscored" rather than zero.
func (s Seleccion) Toggle(codigo string, valor int) {
	if current, ok := s[codigo]; ok && current == valor {
		delete(s, codigo)
		return
	}
	s[codigo] = valor
}

// BuildDetalle assembles an EvaluacionDetalle from a selection against a
// rubric. Criteria appear in rubric order; unselected criteria are omitted.
func BuildDetalle(r models.Rubrica, sel Seleccion, ajustes map[string]int, comentariosCriterios map[string]string, comentarios string, fecha time.Time) models.EvaluacionDetalle {
	detalle := models.EvaluacionDetalle{
		Comentarios: comentarios,
		Fecha:       fecha,
	}
	for _, criterio := range r.Criterios {
		valor, ok := sel[criterio.Codigo]
		if !ok {
			continue
		}
		base := valor
		resultado := models.CriterioResultado{
			Codigo:        criterio.Codigo,
			Nombre:        criterio.Nombre,
			SelectedLevel: &base,
			Points:        CriterionPoints(base, ajustes[criterio.Codigo]),
		}
		detalle.Criterios = append(detalle.Criterios, resultado)
	}
	if len(ajustes) > 0 {
		detalle.AjustesPuntaje = make(map[string]int, len(ajustes))
		for codigo, ajuste := range ajustes {
			if _, ok := sel[codigo]; ok && ajuste != 0 {
				detalle.AjustesPuntaje[codigo] = ajuste
			}
		}
		if len(detalle.AjustesPuntaje) == 0 {
			detalle.AjustesPuntaje = nil
		}
	}
	if len(comentariosCriterios) > 0 {
		detalle.ComentariosCriterios = make(map[string]string, len(comentariosCriterios))
		for codigo, texto := range comentariosCriterios {
			if texto != "" {
				detalle.ComentariosCriterios[codigo] = texto
			}
		}
		if len(detalle.ComentariosCriterios) == 0 {
			detalle.ComentariosCriterios = nil
		}
	}
	detalle.TotalScore = Total(detalle.Criterios)
	return detalle
}
