package models

// Estudiante represents one student inside a course roster. The correo acts
// as the natural key within a course; students are replaced as a whole list,
// never edited in place.
type Estudiante struct {
	Apellidos string `json:"apellidos" validate:"required"`
	Nombres   string `json:"nombres" validate:"required"`
	Correo    string `json:"correo" validate:"required,email"`
	Grupo     string `json:"grupo" validate:"required"`
	Subgrupo  string `json:"subgrupo" validate:"required"`
}
