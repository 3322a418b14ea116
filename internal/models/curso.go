package models

import "time"

// Curso is a course as returned by listing operations: roster populated,
// evaluations NOT embedded (they are loaded separately per delivery).
type Curso struct {
	ID          string       `json:"id"`
	Nombre      string       `json:"nombre"`
	Estudiantes []Estudiante `json:"estudiantes"`
	CreatedAt   time.Time    `json:"createdAt,omitempty"`
	UpdatedAt   time.Time    `json:"updatedAt,omitempty"`
}

// CursoUpdate carries a partial course write. Nil fields are preserved from
// the stored record. The store refreshes updated_at unless an explicit
// timestamp is supplied; snapshot restore uses the overrides to re-pin the
// original values.
type CursoUpdate struct {
	Nombre      *string       `json:"nombre,omitempty"`
	Estudiantes *[]Estudiante `json:"estudiantes,omitempty"`
	CreatedAt   *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time    `json:"updatedAt,omitempty"`
}

// EstudiantesPorSubgrupo returns the roster entries belonging to the given
// subgroup, in roster order.
func (c *Curso) EstudiantesPorSubgrupo(subgrupo string) []Estudiante {
	var result []Estudiante
	for _, e := range c.Estudiantes {
		if e.Subgrupo == subgrupo {
			result = append(result, e)
		}
	}
	return result
}
