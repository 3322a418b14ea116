package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/politrack/politrack-api/internal/models"
	"github.com/politrack/politrack-api/internal/service"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
	"github.com/politrack/politrack-api/pkg/response"
)

type evaluationService interface {
	Evaluaciones(ctx context.Context, cursoID string) (models.EvaluacionesCurso, error)
	SaveGrupal(ctx context.Context, cursoID, subgrupoID string, req service.SaveEvaluacionRequest) (*models.EvaluacionDetalle, error)
	SaveIndividual(ctx context.Context, cursoID, correo string, req service.SaveEvaluacionRequest) (*models.EvaluacionDetalle, error)
	ComentariosComunes(ctx context.Context) ([]string, error)
	AddComentarioComun(ctx context.Context, texto string) error
	Rubricas(ctx context.Context) (map[string]models.Rubrica, error)
	SaveRubrica(ctx context.Context, rubricaID string, r models.Rubrica) error
}

// EvaluationHandler exposes evaluation scoring, rubric and comment endpoints.
type EvaluationHandler struct {
	service evaluationService
}

// NewEvaluationHandler builds a new handler.
func NewEvaluationHandler(service evaluationService) *EvaluationHandler {
	return &EvaluationHandler{service: service}
}

// List returns the full evaluation map for one course.
func (h *EvaluationHandler) List(c *gin.Context) {
	evaluaciones, err := h.service.Evaluaciones(c.Request.Context(), c.Param("cursoId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluaciones, nil)
}

// SaveGrupal scores a subgroup against the delivery's group rubric. Every
// member of the subgroup receives the same group half.
func (h *EvaluationHandler) SaveGrupal(c *gin.Context) {
	var req service.SaveEvaluacionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluation payload"))
		return
	}
	detalle, err := h.service.SaveGrupal(c.Request.Context(), c.Param("cursoId"), c.Param("subgrupoId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detalle, nil)
}

// SaveIndividual scores a single student against the individual rubric.
func (h *EvaluationHandler) SaveIndividual(c *gin.Context) {
	var req service.SaveEvaluacionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluation payload"))
		return
	}
	detalle, err := h.service.SaveIndividual(c.Request.Context(), c.Param("cursoId"), c.Param("correo"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detalle, nil)
}

// ComentariosComunes lists the reusable comment bank.
func (h *EvaluationHandler) ComentariosComunes(c *gin.Context) {
	comentarios, err := h.service.ComentariosComunes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comentarios, nil)
}

type addComentarioRequest struct {
	Texto string `json:"texto" binding:"required"`
}

// AddComentarioComun appends one comment to the bank, skipping duplicates.
func (h *EvaluationHandler) AddComentarioComun(c *gin.Context) {
	var req addComentarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}
	if err := h.service.AddComentarioComun(c.Request.Context(), req.Texto); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"texto": req.Texto}, nil)
}

// Rubricas returns the effective rubric set, defaults merged with stored
// customizations.
func (h *EvaluationHandler) Rubricas(c *gin.Context) {
	rubricas, err := h.service.Rubricas(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rubricas, nil)
}

// SaveRubrica stores a customized rubric under its id.
func (h *EvaluationHandler) SaveRubrica(c *gin.Context) {
	var r models.Rubrica
	if err := c.ShouldBindJSON(&r); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rubric payload"))
		return
	}
	if err := h.service.SaveRubrica(c.Request.Context(), c.Param("rubricaId"), r); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, r, nil)
}
