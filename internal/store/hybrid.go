package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/politrack/politrack-api/internal/models"
	"github.com/politrack/politrack-api/internal/rubric"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
)

// Hybrid is the single entry point to persistence. It probes the relational
// driver at init and falls back to the document driver; exactly one driver
// is active for the store's lifetime. It also owns the merge-before-write
// protocol that the drivers themselves do not implement: every partial
// evaluation update is a read-merge-write over the full record, serialized
// per (curso, correo, entrega) key so a group save and an individual save
// landing on the same student cannot lose each other's half.
// Observer receives per-operation store timings.
type Observer interface {
	ObserveStoreOperation(operation string, duration time.Duration)
}

type Hybrid struct {
	relational EvaluationStore
	document   EvaluationStore
	logger     *zap.Logger
	observer   Observer

	initOnce sync.Once
	initErr  error
	active   EvaluationStore

	keyMu    sync.Mutex
	keyLocks map[string]*sync.Mutex

	commentsMu sync.Mutex
}

// NewHybrid builds the façade over the two drivers. Either driver may be nil
// when the platform rules it out up front.
func NewHybrid(relational, document EvaluationStore, logger *zap.Logger) *Hybrid {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hybrid{
		relational: relational,
		document:   document,
		logger:     logger,
		keyLocks:   make(map[string]*sync.Mutex),
	}
}

// SetObserver attaches a metrics sink for store operation timings.
func (h *Hybrid) SetObserver(o Observer) {
	h.observer = o
}

func (h *Hybrid) observe(operation string, start time.Time) {
	if h.observer != nil {
		h.observer.ObserveStoreOperation(operation, time.Since(start))
	}
}

// Init selects the active driver. Single-flight: concurrent callers await
// the first attempt's result instead of racing a second init, and repeat
// calls return the recorded outcome.
func (h *Hybrid) Init(ctx context.Context) error {
	h.initOnce.Do(func() {
		var relErr, docErr error
		if h.relational != nil {
			if relErr = h.relational.Init(ctx); relErr == nil {
				h.active = h.relational
				h.logger.Info("evaluation store ready", zap.String("driver", h.relational.Name()))
				return
			}
			h.logger.Warn("relational backend unavailable, falling back to document store", zap.Error(relErr))
		}
		if h.document != nil {
			if docErr = h.document.Init(ctx); docErr == nil {
				h.active = h.document
				h.logger.Info("evaluation store ready", zap.String("driver", h.document.Name()))
				return
			}
			h.logger.Error("document backend unavailable", zap.Error(docErr))
		}
		cause := relErr
		if cause == nil {
			cause = docErr
		}
		h.initErr = appErrors.Wrap(cause, appErrors.ErrInitFailed.Code, appErrors.ErrInitFailed.Status, "no storage backend could start")
	})
	return h.initErr
}

// ActiveDriver names the selected backend, or "" before a successful Init.
func (h *Hybrid) ActiveDriver() string {
	if h.active == nil {
		return ""
	}
	return h.active.Name()
}

func (h *Hybrid) store() (EvaluationStore, error) {
	if h.active == nil {
		return nil, appErrors.ErrStoreUnavailable
	}
	return h.active, nil
}

func (h *Hybrid) lockKey(cursoID, correo string, entrega models.Entrega) func() {
	key := strings.Join([]string{cursoID, correo, string(entrega)}, "|")
	h.keyMu.Lock()
	mu, ok := h.keyLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		h.keyLocks[key] = mu
	}
	h.keyMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

// mergeAndSave loads the full evaluation record (or an empty default),
// applies mutate, recomputes the derived total and stores the result.
func (h *Hybrid) mergeAndSave(ctx context.Context, cursoID, correo string, entrega models.Entrega, mutate func(*models.Evaluacion)) error {
	defer h.observe("merge_save", time.Now())
	unlock := h.lockKey(cursoID, correo, entrega)
	defer unlock()

	st, err := h.store()
	if err != nil {
		return err
	}
	evs, err := st.GetEvaluacionesCurso(ctx, cursoID)
	if err != nil {
		return err
	}
	ev, ok := evs[entrega][correo]
	if !ok {
		ev = models.Evaluacion{Correo: correo}
	}

	mutate(&ev)

	ev.Correo = correo
	ev.RecalcSumatoria()
	ev.UpdatedAt = time.Now().UTC()

	return st.SaveFullEvaluacion(ctx, cursoID, correo, entrega, ev)
}

// SaveGroupEvaluation applies one scored group rubric to every student of a
// subgroup. Each student's individual half is preserved verbatim; only
// grup_eval and pg_score are overwritten. The per-student loop is not
// transactional: an interruption can leave part of the subgroup on the old
// score.
func (h *Hybrid) SaveGroupEvaluation(ctx context.Context, cursoID, subgrupoID string, entrega models.Entrega, detalle models.EvaluacionDetalle) error {
	curso, err := h.GetCurso(ctx, cursoID)
	if err != nil {
		return err
	}
	estudiantes := curso.EstudiantesPorSubgrupo(subgrupoID)
	if len(estudiantes) == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "subgrupo has no students")
	}

	pgScore := rubric.Total(detalle.Criterios)
	for _, est := range estudiantes {
		err := h.mergeAndSave(ctx, cursoID, est.Correo, entrega, func(ev *models.Evaluacion) {
			d := detalle
			score := pgScore
			ev.GrupEval = &d
			ev.PGScore = &score
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveIndividualEvaluation applies a scored individual rubric to one student,
// preserving the group half verbatim.
func (h *Hybrid) SaveIndividualEvaluation(ctx context.Context, cursoID, correo string, entrega models.Entrega, detalle models.EvaluacionDetalle) error {
	piScore := rubric.Total(detalle.Criterios)
	return h.mergeAndSave(ctx, cursoID, correo, entrega, func(ev *models.Evaluacion) {
		d := detalle
		score := piScore
		ev.IndEval = &d
		ev.PIScore = &score
	})
}

// SaveCurso passes through to the active driver.
func (h *Hybrid) SaveCurso(ctx context.Context, cursoID string, update models.CursoUpdate) error {
	st, err := h.store()
	if err != nil {
		return err
	}
	return st.SaveCurso(ctx, cursoID, update)
}

// GetCurso passes through to the active driver.
func (h *Hybrid) GetCurso(ctx context.Context, cursoID string) (*models.Curso, error) {
	st, err := h.store()
	if err != nil {
		return nil, err
	}
	return st.GetCurso(ctx, cursoID)
}

// ListCursos passes through to the active driver.
func (h *Hybrid) ListCursos(ctx context.Context) (map[string]models.Curso, error) {
	st, err := h.store()
	if err != nil {
		return nil, err
	}
	return st.ListCursos(ctx)
}

// DeleteCurso passes through to the active driver, which removes the
// course's evaluations transitively.
func (h *Hybrid) DeleteCurso(ctx context.Context, cursoID string) error {
	st, err := h.store()
	if err != nil {
		return err
	}
	return st.DeleteCurso(ctx, cursoID)
}

// GetEvaluacionesCurso passes through to the active driver.
func (h *Hybrid) GetEvaluacionesCurso(ctx context.Context, cursoID string) (models.EvaluacionesCurso, error) {
	defer h.observe("get_evaluaciones", time.Now())
	st, err := h.store()
	if err != nil {
		return nil, err
	}
	return st.GetEvaluacionesCurso(ctx, cursoID)
}

// SaveFullEvaluacion bypasses the merge protocol. Restore uses it because a
// snapshot already contains merged records.
func (h *Hybrid) SaveFullEvaluacion(ctx context.Context, cursoID, correo string, entrega models.Entrega, ev models.Evaluacion) error {
	st, err := h.store()
	if err != nil {
		return err
	}
	return st.SaveFullEvaluacion(ctx, cursoID, correo, entrega, ev)
}

// DeleteEvaluacionesEstudiante passes through to the active driver.
func (h *Hybrid) DeleteEvaluacionesEstudiante(ctx context.Context, cursoID, correo string) error {
	st, err := h.store()
	if err != nil {
		return err
	}
	return st.DeleteEvaluacionesEstudiante(ctx, cursoID, correo)
}

// GetComentariosComunes returns the common comment list, seeding the fixed
// defaults on first access so the same call later returns identical content.
func (h *Hybrid) GetComentariosComunes(ctx context.Context) ([]string, error) {
	st, err := h.store()
	if err != nil {
		return nil, err
	}
	comentarios, err := st.GetComentariosComunes(ctx)
	if err != nil {
		if appErrors.IsNotFound(err) {
			seeded := DefaultComentariosComunes()
			if saveErr := st.SaveComentariosComunes(ctx, seeded); saveErr != nil {
				return nil, saveErr
			}
			return seeded, nil
		}
		return nil, err
	}
	return comentarios, nil
}

// AddComentarioComun appends a comment to the deduplicated global list.
func (h *Hybrid) AddComentarioComun(ctx context.Context, texto string) error {
	texto = strings.TrimSpace(texto)
	if texto == "" {
		return appErrors.Clone(appErrors.ErrValidation, "comentario must not be empty")
	}

	h.commentsMu.Lock()
	defer h.commentsMu.Unlock()

	comentarios, err := h.GetComentariosComunes(ctx)
	if err != nil {
		return err
	}
	for _, existing := range comentarios {
		if existing == texto {
			return nil
		}
	}
	st, err := h.store()
	if err != nil {
		return err
	}
	return st.SaveComentariosComunes(ctx, append(comentarios, texto))
}

// SaveComentariosComunes passes through to the active driver.
func (h *Hybrid) SaveComentariosComunes(ctx context.Context, comentarios []string) error {
	st, err := h.store()
	if err != nil {
		return err
	}
	return st.SaveComentariosComunes(ctx, comentarios)
}

// GetRubricas passes through to the active driver.
func (h *Hybrid) GetRubricas(ctx context.Context) (map[string]models.Rubrica, error) {
	st, err := h.store()
	if err != nil {
		return nil, err
	}
	return st.GetRubricas(ctx)
}

// SaveRubrica passes through to the active driver.
func (h *Hybrid) SaveRubrica(ctx context.Context, rubricaID string, r models.Rubrica) error {
	st, err := h.store()
	if err != nil {
		return err
	}
	return st.SaveRubrica(ctx, rubricaID, r)
}

// GetUIState passes through to the active driver.
func (h *Hybrid) GetUIState(ctx context.Context) (map[string]interface{}, error) {
	st, err := h.store()
	if err != nil {
		return nil, err
	}
	return st.GetUIState(ctx)
}

// SaveUIState passes through to the active driver.
func (h *Hybrid) SaveUIState(ctx context.Context, state map[string]interface{}) error {
	st, err := h.store()
	if err != nil {
		return err
	}
	return st.SaveUIState(ctx, state)
}

// Clear wipes the active backend. Restore relies on it; callers are expected
// to hold exclusive access for the duration.
func (h *Hybrid) Clear(ctx context.Context) error {
	defer h.observe("clear", time.Now())
	st, err := h.store()
	if err != nil {
		return err
	}
	return st.Clear(ctx)
}

// Close releases whichever driver is active.
func (h *Hybrid) Close() error {
	if h.active == nil {
		return nil
	}
	return h.active.Close()
}
