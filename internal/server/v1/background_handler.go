package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cnmzsjbz199328/LazyDog/internal/notes"
	"github.com/cnmzsjbz199328/LazyDog/internal/server/validator"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

type BackgroundHandler struct {
	service *notes.Service
}

func NewBackgroundHandler(service *notes.Service) *BackgroundHandler {
	return &BackgroundHandler{service: service}
}

// Get returns the stored background context, empty when unset.
//
// GET /background
func (h *BackgroundHandler) Get(c *gin.Context) {
	value, err := h.service.Background(c.Request.Context())
	if err != nil {
		_ = c.Error(api.InternalError("Failed to load background", err))
		return
	}
	c.JSON(http.StatusOK, api.BackgroundResponse{Background: value})
}

// Set replaces the background context.
//
// POST /background
func (h *BackgroundHandler) Set(c *gin.Context) {
	var req api.SetBackgroundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	if err := h.service.SetBackground(c.Request.Context(), req.Background); err != nil {
		_ = c.Error(api.InternalError("Failed to save background", err))
		return
	}
	c.JSON(http.StatusOK, api.BackgroundResponse{Background: req.Background})
}

// Clear removes the background context.
//
// DELETE /background
func (h *BackgroundHandler) Clear(c *gin.Context) {
	if err := h.service.ClearBackground(c.Request.Context()); err != nil {
		_ = c.Error(api.InternalError("Failed to clear background", err))
		return
	}
	c.Status(http.StatusNoContent)
}
