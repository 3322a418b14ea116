package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/politrack/politrack-api/internal/models"
	"github.com/politrack/politrack-api/internal/rubric"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
)

// Score bounds enforced per evaluation half.
const (
	minScore         = 0
	maxScore         = 100
	maxCommentLength = 500
)

type evaluationStore interface {
	GetEvaluacionesCurso(ctx context.Context, cursoID string) (models.EvaluacionesCurso, error)
	SaveGroupEvaluation(ctx context.Context, cursoID, subgrupoID string, entrega models.Entrega, detalle models.EvaluacionDetalle) error
	SaveIndividualEvaluation(ctx context.Context, cursoID, correo string, entrega models.Entrega, detalle models.EvaluacionDetalle) error
	GetComentariosComunes(ctx context.Context) ([]string, error)
	AddComentarioComun(ctx context.Context, texto string) error
	GetRubricas(ctx context.Context) (map[string]models.Rubrica, error)
	SaveRubrica(ctx context.Context, rubricaID string, r models.Rubrica) error
}

// CriterioSeleccion is one criterion pick inside a save payload: a base
// level value plus an optional signed adjustment and comment.
type CriterioSeleccion struct {
	SelectedLevel int    `json:"selectedLevel"`
	Ajuste        int    `json:"ajuste"`
	Comentario    string `json:"comentario" validate:"omitempty,max=500"`
}

// SaveEvaluacionRequest carries one scored rubric half.
type SaveEvaluacionRequest struct {
	Entrega     string                       `json:"entrega" validate:"required"`
	Criterios   map[string]CriterioSeleccion `json:"criterios" validate:"required,min=1"`
	Comentarios string                       `json:"comentarios" validate:"omitempty,max=500"`
}

type saveCounter interface {
	CountEvaluationSave(kind string)
}

// EvaluationService builds rubric details from save payloads and drives the
// hybrid store's merge-protected evaluation writes.
type EvaluationService struct {
	store     evaluationStore
	validator *validator.Validate
	logger    *zap.Logger
	metrics   saveCounter
}

// NewEvaluationService constructs EvaluationService.
func NewEvaluationService(store evaluationStore, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{store: store, validator: validate, logger: logger}
}

// SetMetrics attaches a save counter. Optional; a nil service counts nothing.
func (s *EvaluationService) SetMetrics(m saveCounter) {
	s.metrics = m
}

func (s *EvaluationService) countSave(kind string) {
	if s.metrics != nil {
		s.metrics.CountEvaluationSave(kind)
	}
}

// Evaluaciones returns the full evaluation set of a course.
func (s *EvaluationService) Evaluaciones(ctx context.Context, cursoID string) (models.EvaluacionesCurso, error) {
	return s.store.GetEvaluacionesCurso(ctx, cursoID)
}

// SaveGrupal scores the delivery's group rubric for one subgroup. The
// individual half of every affected student is preserved by the store.
func (s *EvaluationService) SaveGrupal(ctx context.Context, cursoID, subgrupoID string, req SaveEvaluacionRequest) (*models.EvaluacionDetalle, error) {
	entrega, err := s.parseRequest(req)
	if err != nil {
		return nil, err
	}
	rubrica, ok := rubric.Grupal(entrega)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("no group rubric for entrega %s", entrega))
	}
	detalle, err := s.buildDetalle(rubrica, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveGroupEvaluation(ctx, cursoID, subgrupoID, entrega, *detalle); err != nil {
		return nil, err
	}
	s.logger.Info("evaluacion grupal saved",
		zap.String("curso_id", cursoID),
		zap.String("subgrupo", subgrupoID),
		zap.String("entrega", string(entrega)),
		zap.Int("pg_score", detalle.TotalScore))
	s.countSave("grupal")
	return detalle, nil
}

// SaveIndividual scores the delivery-invariant individual rubric for one
// student, preserving the group half.
func (s *EvaluationService) SaveIndividual(ctx context.Context, cursoID, correo string, req SaveEvaluacionRequest) (*models.EvaluacionDetalle, error) {
	entrega, err := s.parseRequest(req)
	if err != nil {
		return nil, err
	}
	detalle, err := s.buildDetalle(rubric.Individual(), req)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveIndividualEvaluation(ctx, cursoID, correo, entrega, *detalle); err != nil {
		return nil, err
	}
	s.logger.Info("evaluacion individual saved",
		zap.String("curso_id", cursoID),
		zap.String("correo", correo),
		zap.String("entrega", string(entrega)),
		zap.Int("pi_score", detalle.TotalScore))
	s.countSave("individual")
	return detalle, nil
}

func (s *EvaluationService) parseRequest(req SaveEvaluacionRequest) (models.Entrega, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluacion payload")
	}
	entrega, err := models.ParseEntrega(req.Entrega)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid entrega")
	}
	return entrega, nil
}

// buildDetalle turns the raw selection map into an EvaluacionDetalle,
// rejecting unknown criteria and level values the rubric does not define.
func (s *EvaluationService) buildDetalle(rubrica models.Rubrica, req SaveEvaluacionRequest) (*models.EvaluacionDetalle, error) {
	sel := rubric.Seleccion{}
	ajustes := make(map[string]int)
	comentarios := make(map[string]string)

	for codigo, pick := range req.Criterios {
		criterio, ok := rubrica.Criterio(codigo)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown criterio %s for rubrica %s", codigo, rubrica.ID))
		}
		if _, ok := rubric.ResolveLevel(criterio, pick.SelectedLevel); !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("level %d is not defined for criterio %s", pick.SelectedLevel, codigo))
		}
		sel[codigo] = pick.SelectedLevel
		if pick.Ajuste != 0 {
			ajustes[codigo] = pick.Ajuste
		}
		if pick.Comentario != "" {
			comentarios[codigo] = pick.Comentario
		}
	}

	detalle := rubric.BuildDetalle(rubrica, sel, ajustes, comentarios, req.Comentarios, time.Now().UTC())
	if detalle.TotalScore < minScore || detalle.TotalScore > maxScore {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("total score %d outside [%d, %d]", detalle.TotalScore, minScore, maxScore))
	}
	return &detalle, nil
}

// ComentariosComunes returns the global suggestion list, seeded on first use.
func (s *EvaluationService) ComentariosComunes(ctx context.Context) ([]string, error) {
	return s.store.GetComentariosComunes(ctx)
}

// AddComentarioComun appends one suggestion to the global list.
func (s *EvaluationService) AddComentarioComun(ctx context.Context, texto string) error {
	if len(texto) > maxCommentLength {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("comentario exceeds %d characters", maxCommentLength))
	}
	return s.store.AddComentarioComun(ctx, texto)
}

// Rubricas returns the built-in definitions with stored customizations
// layered on top.
func (s *EvaluationService) Rubricas(ctx context.Context) (map[string]models.Rubrica, error) {
	defs := rubric.Definiciones()
	overrides, err := s.store.GetRubricas(ctx)
	if err != nil {
		return nil, err
	}
	for id, r := range overrides {
		defs[id] = r
	}
	return defs, nil
}

// SaveRubrica stores a customized rubric definition.
func (s *EvaluationService) SaveRubrica(ctx context.Context, rubricaID string, r models.Rubrica) error {
	if rubricaID == "" || r.Nombre == "" || len(r.Criterios) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "rubrica requires id, nombre and at least one criterio")
	}
	if r.ID == "" {
		r.ID = rubricaID
	}
	return s.store.SaveRubrica(ctx, rubricaID, r)
}
