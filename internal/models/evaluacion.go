package models

import "time"

// Evaluacion is the full evaluation record for one student and delivery. The
// group and individual halves are edited by different flows at different
// times; persisting one half must never clobber the other.
type Evaluacion struct {
	Correo    string             `json:"correo"`
	PGScore   *int               `json:"pg_score,omitempty"`
	PIScore   *int               `json:"pi_score,omitempty"`
	IndEval   *EvaluacionDetalle `json:"ind_eval,omitempty"`
	GrupEval  *EvaluacionDetalle `json:"grup_eval,omitempty"`
	Sumatoria int                `json:"sumatoria"`
	UpdatedAt time.Time          `json:"updatedAt,omitempty"`
}

// RecalcSumatoria recomputes the derived total from whichever halves are set.
func (e *Evaluacion) RecalcSumatoria() {
	total := 0
	if e.PGScore != nil {
		total += *e.PGScore
	}
	if e.PIScore != nil {
		total += *e.PIScore
	}
	e.Sumatoria = total
}

// EvaluacionDetalle holds the scored rubric for one half of an evaluation.
type EvaluacionDetalle struct {
	Criterios            []CriterioResultado `json:"criterios"`
	TotalScore           int                 `json:"totalScore"`
	Comentarios          string              `json:"comentarios,omitempty"`
	ComentariosCriterios map[string]string   `json:"comentariosCriterios,omitempty"`
	AjustesPuntaje       map[string]int      `json:"ajustesPuntaje,omitempty"`
	Fecha                time.Time           `json:"fecha,omitempty"`
}

// CriterioResultado records the outcome for one rubric criterion.
// SelectedLevel is the chosen base level value, persisted separately from
// Points so that a manual adjustment can never be confused with a different
// base level on reload.
type CriterioResultado struct {
	Codigo        string `json:"codigo"`
	Nombre        string `json:"nombre"`
	SelectedLevel *int   `json:"selectedLevel,omitempty"`
	Points        int    `json:"points"`
}

// EvaluacionesEntrega maps student correo to evaluation for one delivery.
type EvaluacionesEntrega map[string]Evaluacion

// EvaluacionesCurso holds the full evaluation set of a course keyed by
// delivery. All three deliveries are always present, possibly empty.
type EvaluacionesCurso map[Entrega]EvaluacionesEntrega

// NewEvaluacionesCurso returns an evaluation set with every delivery
// initialized to an empty map.
func NewEvaluacionesCurso() EvaluacionesCurso {
	evs := make(EvaluacionesCurso, len(Entregas))
	for _, entrega := range Entregas {
		evs[entrega] = EvaluacionesEntrega{}
	}
	return evs
}

// Normalize fills in any delivery missing from a decoded document.
func (evs EvaluacionesCurso) Normalize() EvaluacionesCurso {
	if evs == nil {
		return NewEvaluacionesCurso()
	}
	for _, entrega := range Entregas {
		if evs[entrega] == nil {
			evs[entrega] = EvaluacionesEntrega{}
		}
	}
	return evs
}
