package models

// SnapshotVersion is the backup format version written on export.
const SnapshotVersion = 1.0

// Snapshot is a full serialized copy of store state used for backup/restore.
// Unknown extra keys are ignored on read; version, cursos and evaluaciones
// are required on import.
type Snapshot struct {
	Version            float64                      `json:"version"`
	ExportDate         string                       `json:"exportDate"`
	Cursos             map[string]Curso             `json:"cursos"`
	Evaluaciones       map[string]EvaluacionesCurso `json:"evaluaciones"`
	ComentariosComunes []string                     `json:"comentariosComunes,omitempty"`
	Rubricas           map[string]Rubrica           `json:"rubricas,omitempty"`
}
