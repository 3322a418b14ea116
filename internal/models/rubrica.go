package models

// Nivel is one discrete scoring level of a criterion. Valor doubles as the
// awarded score and the sort key.
type Nivel struct {
	Valor       int    `json:"valor"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
}

// Criterio is one graded dimension within a rubric.
type Criterio struct {
	Codigo    string  `json:"codigo"`
	Nombre    string  `json:"nombre"`
	MaxPuntos int     `json:"maxPuntos"`
	Niveles   []Nivel `json:"niveles"`
}

// Rubrica is an ordered set of criteria with discrete scoring levels.
type Rubrica struct {
	ID        string     `json:"id"`
	Nombre    string     `json:"nombre"`
	Criterios []Criterio `json:"criterios"`
}

// Criterio looks up a criterion by code.
func (r Rubrica) Criterio(codigo string) (Criterio, bool) {
	for _, c := range r.Criterios {
		if c.Codigo == codigo {
			return c, true
		}
	}
	return Criterio{}, false
}
