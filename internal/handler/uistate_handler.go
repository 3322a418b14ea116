package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/politrack/politrack-api/pkg/errors"
	"github.com/politrack/politrack-api/pkg/response"
)

type uiStateStore interface {
	GetUIState(ctx context.Context) (map[string]interface{}, error)
	SaveUIState(ctx context.Context, state map[string]interface{}) error
}

// UIStateHandler persists opaque client UI state (selected course, active
// delivery tab). The payload is stored as-is and never interpreted.
type UIStateHandler struct {
	store uiStateStore
}

// NewUIStateHandler builds a new handler.
func NewUIStateHandler(store uiStateStore) *UIStateHandler {
	return &UIStateHandler{store: store}
}

// Get returns the stored UI state, or an empty object when none exists.
func (h *UIStateHandler) Get(c *gin.Context) {
	state, err := h.store.GetUIState(c.Request.Context())
	if err != nil {
		if appErrors.IsNotFound(err) {
			response.JSON(c, http.StatusOK, map[string]interface{}{}, nil)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Save replaces the stored UI state.
func (h *UIStateHandler) Save(c *gin.Context) {
	var state map[string]interface{}
	if err := c.ShouldBindJSON(&state); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid state payload"))
		return
	}
	if err := h.store.SaveUIState(c.Request.Context(), state); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}
