package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/politrack/politrack-api/internal/models"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
)

// snapshotFilePrefix names exported backup files.
const snapshotFilePrefix = "politrack_backup_"

type backupStore interface {
	ListCursos(ctx context.Context) (map[string]models.Curso, error)
	GetEvaluacionesCurso(ctx context.Context, cursoID string) (models.EvaluacionesCurso, error)
	GetComentariosComunes(ctx context.Context) ([]string, error)
	GetRubricas(ctx context.Context) (map[string]models.Rubrica, error)
	Clear(ctx context.Context) error
	SaveCurso(ctx context.Context, cursoID string, update models.CursoUpdate) error
	SaveFullEvaluacion(ctx context.Context, cursoID, correo string, entrega models.Entrega, ev models.Evaluacion) error
	SaveComentariosComunes(ctx context.Context, comentarios []string) error
	SaveRubrica(ctx context.Context, rubricaID string, r models.Rubrica) error
}

// BackupService serializes the entire store to one versioned snapshot and
// restores from it, replacing all state. It reads and writes through the
// hybrid store's bulk accessors, never the drivers directly.
type BackupService struct {
	store    backupStore
	logger   *zap.Logger
	maxBytes int64
}

// NewBackupService constructs BackupService. maxBytes bounds import
// payloads; zero means unbounded.
func NewBackupService(store backupStore, logger *zap.Logger, maxBytes int64) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{store: store, logger: logger, maxBytes: maxBytes}
}

// Filename returns the download name for a snapshot exported now.
func (s *BackupService) Filename() string {
	return snapshotFilePrefix + time.Now().Format("2006-01-02_15:04:05") + ".json"
}

// Export gathers every course, its full evaluation set, the common comments
// and any customized rubrics into one snapshot document.
func (s *BackupService) Export(ctx context.Context) (*models.Snapshot, error) {
	cursos, err := s.store.ListCursos(ctx)
	if err != nil {
		return nil, err
	}

	evaluaciones := make(map[string]models.EvaluacionesCurso, len(cursos))
	for cursoID := range cursos {
		evs, err := s.store.GetEvaluacionesCurso(ctx, cursoID)
		if err != nil {
			return nil, err
		}
		evaluaciones[cursoID] = evs
	}

	comentarios, err := s.store.GetComentariosComunes(ctx)
	if err != nil {
		return nil, err
	}
	rubricas, err := s.store.GetRubricas(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &models.Snapshot{
		Version:            models.SnapshotVersion,
		ExportDate:         time.Now().UTC().Format(time.RFC3339),
		Cursos:             cursos,
		Evaluaciones:       evaluaciones,
		ComentariosComunes: comentarios,
	}
	if len(rubricas) > 0 {
		snapshot.Rubricas = rubricas
	}

	s.logger.Info("snapshot exported",
		zap.Int("cursos", len(cursos)),
		zap.Float64("version", snapshot.Version))
	return snapshot, nil
}

// Import validates the snapshot, then clears the entire store and
// repopulates it. Evaluations are written through SaveFullEvaluacion,
// bypassing the merge protocol: the snapshot already holds merged records.
// The replace is destructive by design; confirmation is the caller's job and
// the store is left untouched when validation fails.
func (s *BackupService) Import(ctx context.Context, raw []byte) error {
	if s.maxBytes > 0 && int64(len(raw)) > s.maxBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("snapshot exceeds %d bytes", s.maxBytes))
	}

	snapshot, err := decodeSnapshot(raw)
	if err != nil {
		return err
	}

	if err := s.store.Clear(ctx); err != nil {
		return err
	}

	cursoIDs := make([]string, 0, len(snapshot.Cursos))
	for cursoID := range snapshot.Cursos {
		cursoIDs = append(cursoIDs, cursoID)
	}
	sort.Strings(cursoIDs)

	for _, cursoID := range cursoIDs {
		curso := snapshot.Cursos[cursoID]
		if err := s.restoreCurso(ctx, cursoID, curso, snapshot.Evaluaciones[cursoID]); err != nil {
			return err
		}
	}

	if snapshot.ComentariosComunes != nil {
		if err := s.store.SaveComentariosComunes(ctx, snapshot.ComentariosComunes); err != nil {
			return err
		}
	}
	for rubricaID, r := range snapshot.Rubricas {
		if err := s.store.SaveRubrica(ctx, rubricaID, r); err != nil {
			return err
		}
	}

	s.logger.Info("snapshot imported", zap.Int("cursos", len(cursoIDs)))
	return nil
}

func (s *BackupService) restoreCurso(ctx context.Context, cursoID string, curso models.Curso, evs models.EvaluacionesCurso) error {
	estudiantes := curso.Estudiantes
	if estudiantes == nil {
		estudiantes = []models.Estudiante{}
	}
	update := models.CursoUpdate{
		Nombre:      &curso.Nombre,
		Estudiantes: &estudiantes,
		CreatedAt:   &curso.CreatedAt,
		UpdatedAt:   &curso.UpdatedAt,
	}
	if err := s.store.SaveCurso(ctx, cursoID, update); err != nil {
		return err
	}

	for entrega, porCorreo := range evs {
		for correo, ev := range porCorreo {
			if err := s.store.SaveFullEvaluacion(ctx, cursoID, correo, entrega, ev); err != nil {
				return err
			}
		}
	}

	// Evaluation writes touch the course timestamp; re-pin the snapshot value.
	if err := s.store.SaveCurso(ctx, cursoID, models.CursoUpdate{UpdatedAt: &curso.UpdatedAt}); err != nil {
		return err
	}
	return nil
}

// decodeSnapshot rejects payloads missing the required top-level keys before
// anything destructive happens. Unknown extra keys are ignored.
func decodeSnapshot(raw []byte) (*models.Snapshot, error) {
	var probe struct {
		Version      *float64        `json:"version"`
		Cursos       json.RawMessage `json:"cursos"`
		Evaluaciones json.RawMessage `json:"evaluaciones"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidSnapshot.Code, appErrors.ErrInvalidSnapshot.Status, "snapshot is not valid JSON")
	}
	if probe.Version == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidSnapshot, "snapshot missing version")
	}
	if len(probe.Cursos) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidSnapshot, "snapshot missing cursos")
	}
	if len(probe.Evaluaciones) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidSnapshot, "snapshot missing evaluaciones")
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidSnapshot.Code, appErrors.ErrInvalidSnapshot.Status, "snapshot payload malformed")
	}
	return &snapshot, nil
}
