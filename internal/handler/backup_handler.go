package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/politrack/politrack-api/internal/models"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
	"github.com/politrack/politrack-api/pkg/response"
)

type backupService interface {
	Export(ctx context.Context) (*models.Snapshot, error)
	Import(ctx context.Context, raw []byte) error
	Filename() string
}

type archiveService interface {
	ArchiveNow(ctx context.Context) (string, error)
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, filename string) ([]byte, error)
	Delete(ctx context.Context, filename string) error
}

// BackupHandler exposes snapshot export and restore endpoints.
type BackupHandler struct {
	service backupService
	archive archiveService
}

// NewBackupHandler builds a new handler. archive may be nil when on-disk
// archiving is disabled.
func NewBackupHandler(service backupService, archive archiveService) *BackupHandler {
	return &BackupHandler{service: service, archive: archive}
}

// Export streams the full snapshot as a JSON download.
func (h *BackupHandler) Export(c *gin.Context) {
	snapshot, err := h.service.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.service.Filename()))
	c.JSON(http.StatusOK, snapshot)
}

// Import replaces all stored data with the uploaded snapshot. Validation
// failures leave the store untouched.
func (h *BackupHandler) Import(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read snapshot body"))
		return
	}
	if err := h.service.Import(c.Request.Context(), raw); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"restored": true}, nil)
}

// Archive writes a snapshot to the local archive directory right away.
func (h *BackupHandler) Archive(c *gin.Context) {
	filename, err := h.archive.ArchiveNow(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"file": filename}, nil)
}

// ListArchives returns stored archive filenames, newest first.
func (h *BackupHandler) ListArchives(c *gin.Context) {
	files, err := h.archive.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if files == nil {
		files = []string{}
	}
	response.JSON(c, http.StatusOK, files, nil)
}

// DownloadArchive streams one stored archive as a JSON download.
func (h *BackupHandler) DownloadArchive(c *gin.Context) {
	filename := c.Param("file")
	data, err := h.archive.Read(c.Request.Context(), filename)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}

// DeleteArchive removes one stored archive.
func (h *BackupHandler) DeleteArchive(c *gin.Context) {
	if err := h.archive.Delete(c.Request.Context(), c.Param("file")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
