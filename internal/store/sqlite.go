package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/politrack/politrack-api/internal/models"
	"github.com/politrack/politrack-api/pkg/config"
	"github.com/politrack/politrack-api/pkg/database"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cursos (
	id         TEXT PRIMARY KEY,
	nombre     TEXT NOT NULL,
	estudiantes TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluaciones (
	id              TEXT PRIMARY KEY,
	curso_id        TEXT NOT NULL REFERENCES cursos(id) ON DELETE CASCADE,
	estudiante_id   TEXT NOT NULL,
	entrega         TEXT NOT NULL,
	evaluacion_data TEXT NOT NULL DEFAULT '{}',
	updated_at      TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluaciones_curso ON evaluaciones(curso_id);

CREATE TABLE IF NOT EXISTS rubricas (
	id         TEXT PRIMARY KEY,
	nombre     TEXT NOT NULL,
	definicion TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS global_config (
	key   TEXT PRIMARY KEY,
	value TEXT
);
`

// SQLiteStore is the relational EvaluationStore driver. Course rosters and
// evaluation details are stored as JSON text blobs inside row columns; only
// the curso and evaluacion envelopes are true relational rows. Cascade
// delete of evaluations rides on the foreign key to cursos.
type SQLiteStore struct {
	cfg    config.StorageConfig
	logger *zap.Logger

	mu    sync.Mutex
	db    *sqlx.DB
	ready bool
}

// NewSQLiteStore builds a driver that opens the database on Init.
func NewSQLiteStore(cfg config.StorageConfig, logger *zap.Logger) *SQLiteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{cfg: cfg, logger: logger}
}

// NewSQLiteStoreWithDB wires an existing handle; used by tests.
func NewSQLiteStoreWithDB(db *sqlx.DB, logger *zap.Logger) *SQLiteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{db: db, logger: logger, ready: true}
}

// Name identifies the driver.
func (s *SQLiteStore) Name() string { return "sqlite" }

// Init opens the database and runs the idempotent DDL. A second call on an
// initialized store is a no-op success.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	if s.db == nil {
		db, err := database.NewSQLite(s.cfg)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInitFailed.Code, appErrors.ErrInitFailed.Status, "open sqlite database")
		}
		s.db = db
	}

	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInitFailed.Code, appErrors.ErrInitFailed.Status, "create sqlite tables")
	}

	s.ready = true
	return nil
}

func (s *SQLiteStore) handle() (*sqlx.DB, error) {
	if s.db == nil {
		return nil, appErrors.ErrStoreUnavailable
	}
	return s.db, nil
}

// SaveCurso upserts a course, preserving fields the update leaves nil.
func (s *SQLiteStore) SaveCurso(ctx context.Context, cursoID string, update models.CursoUpdate) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	curso := models.Curso{ID: cursoID, Estudiantes: []models.Estudiante{}, CreatedAt: now}
	if existing, err := s.getCursoRow(ctx, cursoID); err == nil {
		curso = existing.toModel(s.logger)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("load curso %s: %w", cursoID, err)
	}

	if update.Nombre != nil {
		curso.Nombre = *update.Nombre
	}
	if update.Estudiantes != nil {
		curso.Estudiantes = *update.Estudiantes
	}
	if update.CreatedAt != nil {
		curso.CreatedAt = *update.CreatedAt
	}
	curso.UpdatedAt = now
	if update.UpdatedAt != nil {
		curso.UpdatedAt = *update.UpdatedAt
	}

	row, err := encodeCursoRow(curso)
	if err != nil {
		return err
	}

	const query = `INSERT INTO cursos (id, nombre, estudiantes, created_at, updated_at)
VALUES (:id, :nombre, :estudiantes, :created_at, :updated_at)
ON CONFLICT (id)
DO UPDATE SET nombre = excluded.nombre, estudiantes = excluded.estudiantes, updated_at = excluded.updated_at`
	if _, err := db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert curso %s: %w", cursoID, err)
	}
	return nil
}

func (s *SQLiteStore) getCursoRow(ctx context.Context, cursoID string) (cursoRow, error) {
	const query = `SELECT id, nombre, estudiantes, created_at, updated_at FROM cursos WHERE id = ?`
	var row cursoRow
	err := s.db.GetContext(ctx, &row, query, cursoID)
	return row, err
}

// GetCurso fetches a single course with its roster.
func (s *SQLiteStore) GetCurso(ctx context.Context, cursoID string) (*models.Curso, error) {
	if _, err := s.handle(); err != nil {
		return nil, err
	}
	row, err := s.getCursoRow(ctx, cursoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "curso not found")
		}
		return nil, fmt.Errorf("get curso %s: %w", cursoID, err)
	}
	curso := row.toModel(s.logger)
	return &curso, nil
}

// ListCursos returns every course keyed by id, evaluations not populated.
func (s *SQLiteStore) ListCursos(ctx context.Context) (map[string]models.Curso, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	const query = `SELECT id, nombre, estudiantes, created_at, updated_at FROM cursos ORDER BY created_at ASC`
	var rows []cursoRow
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list cursos: %w", err)
	}
	cursos := make(map[string]models.Curso, len(rows))
	for _, row := range rows {
		cursos[row.ID] = row.toModel(s.logger)
	}
	return cursos, nil
}

// DeleteCurso removes the course; evaluations go with it via ON DELETE CASCADE.
func (s *SQLiteStore) DeleteCurso(ctx context.Context, cursoID string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM cursos WHERE id = ?`, cursoID); err != nil {
		return fmt.Errorf("delete curso %s: %w", cursoID, err)
	}
	return nil
}

// GetEvaluacionesCurso loads the full evaluation set, with all deliveries
// present even when empty.
func (s *SQLiteStore) GetEvaluacionesCurso(ctx context.Context, cursoID string) (models.EvaluacionesCurso, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	const query = `SELECT id, curso_id, estudiante_id, entrega, evaluacion_data, updated_at
FROM evaluaciones WHERE curso_id = ?`
	var rows []evaluacionRow
	if err := db.SelectContext(ctx, &rows, query, cursoID); err != nil {
		return nil, fmt.Errorf("list evaluaciones for curso %s: %w", cursoID, err)
	}
	evs := models.NewEvaluacionesCurso()
	for _, row := range rows {
		entrega := models.Entrega(row.Entrega)
		if !entrega.Valid() {
			s.logger.Warn("evaluacion row with unknown entrega", zap.String("id", row.ID))
			continue
		}
		evs[entrega][row.EstudianteID] = row.toModel(s.logger)
	}
	return evs, nil
}

// SaveFullEvaluacion overwrites the evaluation record at its composite key
// and touches the owning course's updated_at.
func (s *SQLiteStore) SaveFullEvaluacion(ctx context.Context, cursoID, correo string, entrega models.Entrega, ev models.Evaluacion) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	row, err := encodeEvaluacionRow(cursoID, correo, entrega, ev)
	if err != nil {
		return err
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO evaluaciones (id, curso_id, estudiante_id, entrega, evaluacion_data, updated_at)
VALUES (:id, :curso_id, :estudiante_id, :entrega, :evaluacion_data, :updated_at)
ON CONFLICT (id)
DO UPDATE SET evaluacion_data = excluded.evaluacion_data, updated_at = excluded.updated_at`
	if _, err := db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert evaluacion %s: %w", row.ID, err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE cursos SET updated_at = ? WHERE id = ?`, row.UpdatedAt, cursoID); err != nil {
		return fmt.Errorf("touch curso %s: %w", cursoID, err)
	}
	return nil
}

// DeleteEvaluacionesEstudiante removes the student's entries from all deliveries.
func (s *SQLiteStore) DeleteEvaluacionesEstudiante(ctx context.Context, cursoID, correo string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	const query = `DELETE FROM evaluaciones WHERE curso_id = ? AND estudiante_id = ?`
	if _, err := db.ExecContext(ctx, query, cursoID, correo); err != nil {
		return fmt.Errorf("delete evaluaciones for %s in curso %s: %w", correo, cursoID, err)
	}
	return nil
}

func (s *SQLiteStore) getConfigValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM global_config WHERE key = ?`, key)
	return value, err
}

func (s *SQLiteStore) setConfigValue(ctx context.Context, key, value string) error {
	const query = `INSERT INTO global_config (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set global_config %s: %w", key, err)
	}
	return nil
}

// GetComentariosComunes returns the stored list, or ErrNotFound when it has
// never been saved.
func (s *SQLiteStore) GetComentariosComunes(ctx context.Context) ([]string, error) {
	if _, err := s.handle(); err != nil {
		return nil, err
	}
	raw, err := s.getConfigValue(ctx, KeyComentariosComunes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "comentarios comunes not seeded")
		}
		return nil, fmt.Errorf("get comentarios comunes: %w", err)
	}
	return decodeOr(s.logger, raw, KeyComentariosComunes, []string{}), nil
}

// SaveComentariosComunes stores the full list.
func (s *SQLiteStore) SaveComentariosComunes(ctx context.Context, comentarios []string) error {
	if _, err := s.handle(); err != nil {
		return err
	}
	raw, err := json.Marshal(comentarios)
	if err != nil {
		return fmt.Errorf("encode comentarios comunes: %w", err)
	}
	return s.setConfigValue(ctx, KeyComentariosComunes, string(raw))
}

// GetRubricas returns stored rubric definitions keyed by id.
func (s *SQLiteStore) GetRubricas(ctx context.Context) (map[string]models.Rubrica, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	var rows []rubricaRow
	if err := db.SelectContext(ctx, &rows, `SELECT id, nombre, definicion FROM rubricas`); err != nil {
		return nil, fmt.Errorf("list rubricas: %w", err)
	}
	rubricas := make(map[string]models.Rubrica, len(rows))
	for _, row := range rows {
		rubricas[row.ID] = row.toModel(s.logger)
	}
	return rubricas, nil
}

// SaveRubrica upserts one rubric definition.
func (s *SQLiteStore) SaveRubrica(ctx context.Context, rubricaID string, r models.Rubrica) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	row, err := encodeRubricaRow(rubricaID, r)
	if err != nil {
		return err
	}
	const query = `INSERT INTO rubricas (id, nombre, definicion) VALUES (:id, :nombre, :definicion)
ON CONFLICT (id) DO UPDATE SET nombre = excluded.nombre, definicion = excluded.definicion`
	if _, err := db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert rubrica %s: %w", rubricaID, err)
	}
	return nil
}

// GetUIState returns the persisted UI state document.
func (s *SQLiteStore) GetUIState(ctx context.Context) (map[string]interface{}, error) {
	if _, err := s.handle(); err != nil {
		return nil, err
	}
	raw, err := s.getConfigValue(ctx, KeyUIState)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return map[string]interface{}{}, nil
		}
		return nil, fmt.Errorf("get ui state: %w", err)
	}
	return decodeOr(s.logger, raw, KeyUIState, map[string]interface{}{}), nil
}

// SaveUIState stores the UI state document.
func (s *SQLiteStore) SaveUIState(ctx context.Context, state map[string]interface{}) error {
	if _, err := s.handle(); err != nil {
		return err
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode ui state: %w", err)
	}
	return s.setConfigValue(ctx, KeyUIState, string(raw))
}

// Clear wipes every table inside one transaction.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear tx: %w", err)
	}
	for _, stmt := range []string{
		`DELETE FROM evaluaciones`,
		`DELETE FROM cursos`,
		`DELETE FROM rubricas`,
		`DELETE FROM global_config`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear store: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear tx: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.ready = false
	return err
}
