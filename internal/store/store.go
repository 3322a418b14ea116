// Package store implements the hybrid evaluation store: one storage contract
// with a relational (SQLite) driver and a document (Redis) driver behind it,
// plus the façade that picks a backend at init and owns the merge protocol
// for partial evaluation writes.
package store

import (
	"context"

	"github.com/politrack/politrack-api/internal/models"
)

// Document driver key namespace. The relational driver mirrors the last three
// through its global_config and rubricas tables.
const (
	KeyCursos             = "cursos"
	KeyEvaluacionesPrefix = "evaluaciones_"
	KeyRubricas           = "rubricas"
	KeyUIState            = "ui_state"
	KeyComentariosComunes = "comentarios_comunes_globales"
)

// EvaluationStore is the storage contract both backend drivers satisfy.
// Drivers persist exactly what they are handed: SaveFullEvaluacion is an
// unconditional overwrite of the record at its key, and the read-merge-write
// protocol for partial updates lives one layer up, in Hybrid.
type EvaluationStore interface {
	// Init is idempotent; a second call on an initialized store is a no-op.
	Init(ctx context.Context) error

	// SaveCurso upserts a course. Nil update fields are preserved from the
	// stored record if present, else default-initialized.
	SaveCurso(ctx context.Context, cursoID string, update models.CursoUpdate) error
	GetCurso(ctx context.Context, cursoID string) (*models.Curso, error)
	// ListCursos returns every course with roster populated and evaluations
	// NOT populated.
	ListCursos(ctx context.Context) (map[string]models.Curso, error)
	// DeleteCurso removes the course and, transitively, all its evaluations.
	DeleteCurso(ctx context.Context, cursoID string) error

	// GetEvaluacionesCurso returns the full evaluation set of a course, with
	// every delivery present (empty maps when nothing is stored).
	GetEvaluacionesCurso(ctx context.Context, cursoID string) (models.EvaluacionesCurso, error)
	SaveFullEvaluacion(ctx context.Context, cursoID, correo string, entrega models.Entrega, ev models.Evaluacion) error
	// DeleteEvaluacionesEstudiante removes the student's entries from all
	// three deliveries.
	DeleteEvaluacionesEstudiante(ctx context.Context, cursoID, correo string) error

	// GetComentariosComunes returns ErrNotFound when the list has never been
	// saved, so the façade can seed defaults exactly once.
	GetComentariosComunes(ctx context.Context) ([]string, error)
	SaveComentariosComunes(ctx context.Context, comentarios []string) error

	GetRubricas(ctx context.Context) (map[string]models.Rubrica, error)
	SaveRubrica(ctx context.Context, rubricaID string, r models.Rubrica) error

	GetUIState(ctx context.Context) (map[string]interface{}, error)
	SaveUIState(ctx context.Context, state map[string]interface{}) error

	// Clear wipes all state; used by snapshot restore.
	Clear(ctx context.Context) error
	Close() error
	// Name identifies the driver ("sqlite" or "redis") for logs and health.
	Name() string
}

// DefaultComentariosComunes returns the fixed list seeded on first access to
// the common comments store.
func DefaultComentariosComunes() []string {
	return []string{
		"Excelente dominio del tema.",
		"Buena presentación y comunicación.",
		"Debe profundizar en los aspectos técnicos.",
		"Falta claridad en la exposición.",
		"Cumple con todos los requisitos de la entrega.",
		"Se recomienda mejorar la documentación.",
		"Buen trabajo en equipo.",
		"Debe participar más activamente.",
	}
}
