package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/politrack/politrack-api/pkg/response"
)

type exportService interface {
	ScoreSheetCSV(ctx context.Context, cursoID string) ([]byte, string, error)
	ScoreSheetPDF(ctx context.Context, cursoID string) ([]byte, string, error)
}

// ExportHandler serves downloadable score sheets.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// CSV downloads the course score sheet as CSV.
func (h *ExportHandler) CSV(c *gin.Context) {
	out, filename, err := h.service.ScoreSheetCSV(c.Request.Context(), c.Param("cursoId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", out)
}

// PDF downloads the course score sheet as PDF.
func (h *ExportHandler) PDF(c *gin.Context) {
	out, filename, err := h.service.ScoreSheetPDF(c.Request.Context(), c.Param("cursoId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", out)
}
