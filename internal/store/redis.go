package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/politrack/politrack-api/internal/models"
	"github.com/politrack/politrack-api/pkg/cache"
	"github.com/politrack/politrack-api/pkg/config"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
)

// RedisStore is the document EvaluationStore driver: each logical table is
// one key holding a full nested JSON document. The engine has no cascade and
// no joins, so course deletion explicitly drops the course's evaluation
// document, and partial updates are read-modify-write on whole documents,
// serialized by a driver-level mutex.
type RedisStore struct {
	cfg    config.RedisConfig
	logger *zap.Logger

	mu     sync.Mutex
	client *redis.Client
}

// NewRedisStore builds a driver that connects on Init.
func NewRedisStore(cfg config.RedisConfig, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{cfg: cfg, logger: logger}
}

// NewRedisStoreWithClient wires an existing client; used by tests.
func NewRedisStoreWithClient(client *redis.Client, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, logger: logger}
}

// Name identifies the driver.
func (s *RedisStore) Name() string { return "redis" }

// Init opens the connection. Idempotent: a second call is a no-op success.
func (s *RedisStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}

	client, err := cache.NewRedis(ctx, s.cfg)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInitFailed.Code, appErrors.ErrInitFailed.Status, "connect document store")
	}
	s.client = client
	return nil
}

func (s *RedisStore) handle() (*redis.Client, error) {
	if s.client == nil {
		return nil, appErrors.ErrStoreUnavailable
	}
	return s.client, nil
}

func evaluacionesKey(cursoID string) string {
	return KeyEvaluacionesPrefix + cursoID
}

// getDocument loads and decodes one document key. The bool reports presence;
// malformed payloads decode fail-soft to def.
func getDocument[T any](ctx context.Context, client *redis.Client, logger *zap.Logger, key string, def T) (T, bool, error) {
	raw, err := client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return def, false, nil
		}
		return def, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return decodeOr(logger, raw, key, def), true, nil
}

func setDocument(ctx context.Context, client *redis.Client, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", key, err)
	}
	if err := client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) loadCursos(ctx context.Context, client *redis.Client) (map[string]models.Curso, error) {
	cursos, _, err := getDocument(ctx, client, s.logger, KeyCursos, map[string]models.Curso{})
	return cursos, err
}

// SaveCurso upserts the course entry inside the cursos document, preserving
// fields the update leaves nil.
func (s *RedisStore) SaveCurso(ctx context.Context, cursoID string, update models.CursoUpdate) error {
	client, err := s.handle()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cursos, err := s.loadCursos(ctx, client)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	curso, ok := cursos[cursoID]
	if !ok {
		curso = models.Curso{ID: cursoID, Estudiantes: []models.Estudiante{}, CreatedAt: now}
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
	cursos[cursoID] = curso

	return setDocument(ctx, client, KeyCursos, cursos)
}

// GetCurso fetches a single course with its roster.
func (s *RedisStore) GetCurso(ctx context.Context, cursoID string) (*models.Curso, error) {
	client, err := s.handle()
	if err != nil {
		return nil, err
	}
	cursos, err := s.loadCursos(ctx, client)
	if err != nil {
		return nil, err
	}
	curso, ok := cursos[cursoID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "curso not found")
	}
	return &curso, nil
}

// ListCursos returns every course keyed by id, evaluations not populated.
func (s *RedisStore) ListCursos(ctx context.Context) (map[string]models.Curso, error) {
	client, err := s.handle()
	if err != nil {
		return nil, err
	}
	return s.loadCursos(ctx, client)
}

// DeleteCurso removes the course entry and, since the engine has no cascade,
// explicitly deletes the course's evaluation document.
func (s *RedisStore) DeleteCurso(ctx context.Context, cursoID string) error {
	client, err := s.handle()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cursos, err := s.loadCursos(ctx, client)
	if err != nil {
		return err
	}
	delete(cursos, cursoID)
	if err := setDocument(ctx, client, KeyCursos, cursos); err != nil {
		return err
	}
	if err := client.Del(ctx, evaluacionesKey(cursoID)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", evaluacionesKey(cursoID), err)
	}
	return nil
}

// GetEvaluacionesCurso loads the course's evaluation document, default-
// initialized to empty deliveries when absent.
func (s *RedisStore) GetEvaluacionesCurso(ctx context.Context, cursoID string) (models.EvaluacionesCurso, error) {
	client, err := s.handle()
	if err != nil {
		return nil, err
	}
	evs, _, err := getDocument(ctx, client, s.logger, evaluacionesKey(cursoID), models.EvaluacionesCurso{})
	if err != nil {
		return nil, err
	}
	return evs.Normalize(), nil
}

// SaveFullEvaluacion overwrites the record at its key inside the course's
// evaluation document and touches the owning course's updatedAt.
func (s *RedisStore) SaveFullEvaluacion(ctx context.Context, cursoID, correo string, entrega models.Entrega, ev models.Evaluacion) error {
	client, err := s.handle()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	evs, _, err := getDocument(ctx, client, s.logger, evaluacionesKey(cursoID), models.EvaluacionesCurso{})
	if err != nil {
		return err
	}
	evs = evs.Normalize()
	if ev.UpdatedAt.IsZero() {
		ev.UpdatedAt = time.Now().UTC()
	}
	evs[entrega][correo] = ev
	if err := setDocument(ctx, client, evaluacionesKey(cursoID), evs); err != nil {
		return err
	}

	cursos, err := s.loadCursos(ctx, client)
	if err != nil {
		return err
	}
	if curso, ok := cursos[cursoID]; ok {
		curso.UpdatedAt = ev.UpdatedAt
		cursos[cursoID] = curso
		return setDocument(ctx, client, KeyCursos, cursos)
	}
	return nil
}

// DeleteEvaluacionesEstudiante removes the student's entries from all deliveries.
func (s *RedisStore) DeleteEvaluacionesEstudiante(ctx context.Context, cursoID, correo string) error {
	client, err := s.handle()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	evs, found, err := getDocument(ctx, client, s.logger, evaluacionesKey(cursoID), models.EvaluacionesCurso{})
	if err != nil || !found {
		return err
	}
	evs = evs.Normalize()
	for _, entrega := range models.Entregas {
		delete(evs[entrega], correo)
	}
	return setDocument(ctx, client, evaluacionesKey(cursoID), evs)
}

// GetComentariosComunes returns the stored list, or ErrNotFound when the key
// has never been written.
func (s *RedisStore) GetComentariosComunes(ctx context.Context) ([]string, error) {
	client, err := s.handle()
	if err != nil {
		return nil, err
	}
	comentarios, found, err := getDocument(ctx, client, s.logger, KeyComentariosComunes, []string{})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "comentarios comunes not seeded")
	}
	return comentarios, nil
}

// SaveComentariosComunes stores the full list.
func (s *RedisStore) SaveComentariosComunes(ctx context.Context, comentarios []string) error {
	client, err := s.handle()
	if err != nil {
		return err
	}
	return setDocument(ctx, client, KeyComentariosComunes, comentarios)
}

// GetRubricas returns stored rubric definitions keyed by id.
func (s *RedisStore) GetRubricas(ctx context.Context) (map[string]models.Rubrica, error) {
	client, err := s.handle()
	if err != nil {
		return nil, err
	}
	rubricas, _, err := getDocument(ctx, client, s.logger, KeyRubricas, map[string]models.Rubrica{})
	return rubricas, err
}

// SaveRubrica upserts one rubric definition inside the rubricas document.
func (s *RedisStore) SaveRubrica(ctx context.Context, rubricaID string, r models.Rubrica) error {
	client, err := s.handle()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rubricas, _, err := getDocument(ctx, client, s.logger, KeyRubricas, map[string]models.Rubrica{})
	if err != nil {
		return err
	}
	rubricas[rubricaID] = r
	return setDocument(ctx, client, KeyRubricas, rubricas)
}

// GetUIState returns the persisted UI state document.
func (s *RedisStore) GetUIState(ctx context.Context) (map[string]interface{}, error) {
	client, err := s.handle()
	if err != nil {
		return nil, err
	}
	state, _, err := getDocument(ctx, client, s.logger, KeyUIState, map[string]interface{}{})
	return state, err
}

// SaveUIState stores the UI state document.
func (s *RedisStore) SaveUIState(ctx context.Context, state map[string]interface{}) error {
	client, err := s.handle()
	if err != nil {
		return err
	}
	return setDocument(ctx, client, KeyUIState, state)
}

// Clear deletes every namespace key, scanning for per-course evaluation
// documents.
func (s *RedisStore) Clear(ctx context.Context) error {
	client, err := s.handle()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := []string{KeyCursos, KeyRubricas, KeyUIState, KeyComentariosComunes}
	iter := client.Scan(ctx, 0, KeyEvaluacionesPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s*: %w", KeyEvaluacionesPrefix, err)
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}

// Close releases the underlying connection if present.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}
