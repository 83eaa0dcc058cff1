package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cnmzsjbz199328/LazyDog/internal/notes"
	"github.com/cnmzsjbz199328/LazyDog/internal/server/validator"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

type ProviderHandler struct {
	service *notes.Service
}

func NewProviderHandler(service *notes.Service) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// List returns the registered backends in cascade priority order.
//
// GET /providers
func (h *ProviderHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.service.Providers()})
}

// GetAPIType returns the currently selected backend.
//
// GET /settings/api-type
func (h *ProviderHandler) GetAPIType(c *gin.Context) {
	current, err := h.service.CurrentAPIType(c.Request.Context())
	if err != nil {
		_ = c.Error(api.InternalError("Failed to load backend selection", err))
		return
	}
	c.JSON(http.StatusOK, api.APITypeResponse{APIType: current})
}

// SetAPIType selects the primary backend.
//
// PUT /settings/api-type
func (h *ProviderHandler) SetAPIType(c *gin.Context) {
	var req api.SetAPITypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	if err := h.service.SetAPIType(c.Request.Context(), req.APIType); err != nil {
		if errors.Is(err, notes.ErrUnknownProvider) {
			_ = c.Error(api.BadRequestError("Unknown provider type: " + req.APIType))
			return
		}
		_ = c.Error(api.InternalError("Failed to save backend selection", err))
		return
	}

	c.JSON(http.StatusOK, api.APITypeResponse{APIType: req.APIType})
}
