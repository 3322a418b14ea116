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

type cursoService interface {
	Create(ctx context.Context, req service.CreateCursoRequest) (*models.Curso, error)
	ImportCSV(ctx context.Context, req service.ImportCursoRequest) (*models.Curso, error)
	List(ctx context.Context) (map[string]models.Curso, error)
	Get(ctx context.Context, cursoID string) (*models.Curso, error)
	Rename(ctx context.Context, cursoID string, req service.RenameCursoRequest) (*models.Curso, error)
	ReplaceEstudiantes(ctx context.Context, cursoID string, req service.ReplaceEstudiantesRequest) (*models.Curso, error)
	Delete(ctx context.Context, cursoID string) error
}

// CursoHandler exposes course lifecycle endpoints.
type CursoHandler struct {
	service cursoService
}

// NewCursoHandler builds a new handler.
func NewCursoHandler(service cursoService) *CursoHandler {
	return &CursoHandler{service: service}
}

// Create registers a course with an explicit roster.
func (h *CursoHandler) Create(c *gin.Context) {
	var req service.CreateCursoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	curso, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, curso)
}

// Import registers a course from uploaded CSV roster content.
func (h *CursoHandler) Import(c *gin.Context) {
	var req service.ImportCursoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import payload"))
		return
	}
	curso, err := h.service.ImportCSV(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, curso)
}

// List returns every stored course keyed by id.
func (h *CursoHandler) List(c *gin.Context) {
	cursos, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cursos, nil)
}

// Get returns one course with its roster.
func (h *CursoHandler) Get(c *gin.Context) {
	curso, err := h.service.Get(c.Request.Context(), c.Param("cursoId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, curso, nil)
}

// Rename updates the course name.
func (h *CursoHandler) Rename(c *gin.Context) {
	var req service.RenameCursoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rename payload"))
		return
	}
	curso, err := h.service.Rename(c.Request.Context(), c.Param("cursoId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, curso, nil)
}

// ReplaceEstudiantes swaps the full roster. Evaluations of removed students
// are dropped.
func (h *CursoHandler) ReplaceEstudiantes(c *gin.Context) {
	var req service.ReplaceEstudiantesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid roster payload"))
		return
	}
	curso, err := h.service.ReplaceEstudiantes(c.Request.Context(), c.Param("cursoId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, curso, nil)
}

// Delete removes the course and all of its evaluations.
func (h *CursoHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("cursoId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
