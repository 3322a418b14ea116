package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/politrack/politrack-api/internal/models"
)

// The codec is the only place that touches raw stored JSON. Reads are
// fail-soft: a malformed payload decodes to a typed default and is logged,
// never propagated as an error.

type cursoRow struct {
	ID          string    `db:"id"`
	Nombre      string    `db:"nombre"`
	Estudiantes string    `db:"estudiantes"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type evaluacionRow struct {
	ID           string    `db:"id"`
	CursoID      string    `db:"curso_id"`
	EstudianteID string    `db:"estudiante_id"`
	Entrega      string    `db:"entrega"`
	Data         string    `db:"evaluacion_data"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type rubricaRow struct {
	ID         string `db:"id"`
	Nombre     string `db:"nombre"`
	Definicion string `db:"definicion"`
}

// evaluacionID builds the composite primary key of an evaluation row.
func evaluacionID(cursoID, correo string, entrega models.Entrega) string {
	return fmt.Sprintf("%s-%s-%s", cursoID, correo, entrega)
}

// decodeOr unmarshals raw JSON into T, returning def (and logging) when the
// payload is empty or malformed.
func decodeOr[T any](logger *zap.Logger, raw, key string, def T) T {
	if raw == "" {
		return def
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		if logger != nil {
			logger.Warn("malformed stored payload, using default",
				zap.String("key", key),
				zap.Error(err))
		}
		return def
	}
	return out
}

func (r cursoRow) toModel(logger *zap.Logger) models.Curso {
	return models.Curso{
		ID:          r.ID,
		Nombre:      r.Nombre,
		Estudiantes: decodeOr(logger, r.Estudiantes, "cursos."+r.ID+".estudiantes", []models.Estudiante{}),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func encodeCursoRow(c models.Curso) (cursoRow, error) {
	estudiantes := c.Estudiantes
	if estudiantes == nil {
		estudiantes = []models.Estudiante{}
	}
	raw, err := json.Marshal(estudiantes)
	if err != nil {
		return cursoRow{}, fmt.Errorf("encode estudiantes for curso %s: %w", c.ID, err)
	}
	return cursoRow{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Estudiantes: string(raw),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}

func (r evaluacionRow) toModel(logger *zap.Logger) models.Evaluacion {
	ev := decodeOr(logger, r.Data, "evaluaciones."+r.ID, models.Evaluacion{})
	if ev.Correo == "" {
		ev.Correo = r.EstudianteID
	}
	if ev.UpdatedAt.IsZero() {
		ev.UpdatedAt = r.UpdatedAt
	}
	return ev
}

func encodeEvaluacionRow(cursoID, correo string, entrega models.Entrega, ev models.Evaluacion) (evaluacionRow, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return evaluacionRow{}, fmt.Errorf("encode evaluacion %s: %w", evaluacionID(cursoID, correo, entrega), err)
	}
	return evaluacionRow{
		ID:           evaluacionID(cursoID, correo, entrega),
		CursoID:      cursoID,
		EstudianteID: correo,
		Entrega:      string(entrega),
		Data:         string(raw),
		UpdatedAt:    ev.UpdatedAt,
	}, nil
}

func (r rubricaRow) toModel(logger *zap.Logger) models.Rubrica {
	def := models.Rubrica{ID: r.ID, Nombre: r.Nombre}
	rubrica := decodeOr(logger, r.Definicion, "rubricas."+r.ID, def)
	if rubrica.ID == "" {
		rubrica.ID = r.ID
	}
	if rubrica.Nombre == "" {
		rubrica.Nombre = r.Nombre
	}
	return rubrica
}

func encodeRubricaRow(id string, r models.Rubrica) (rubricaRow, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return rubricaRow{}, fmt.Errorf("encode rubrica %s: %w", id, err)
	}
	return rubricaRow{ID: id, Nombre: r.Nombre, Definicion: string(raw)}, nil
}
