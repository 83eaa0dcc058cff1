package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cnmzsjbz199328/LazyDog/internal/llm"
	"github.com/cnmzsjbz199328/LazyDog/internal/notes"
	"github.com/cnmzsjbz199328/LazyDog/internal/server/validator"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

type MindMapHandler struct {
	service *notes.Service
}

func NewMindMapHandler(service *notes.Service) *MindMapHandler {
	return &MindMapHandler{service: service}
}

// Generate builds and persists a new diagram.
//
// POST /mindmap
func (h *MindMapHandler) Generate(c *gin.Context) {
	var req api.GenerateMindMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	resp, err := h.service.GenerateMindMap(c.Request.Context(), req.Topic, req.Content)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to generate mind map", err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Get returns the current diagram document.
//
// GET /mindmap
func (h *MindMapHandler) Get(c *gin.Context) {
	doc, err := h.service.CurrentMindMap(c.Request.Context())
	if err != nil {
		_ = c.Error(api.InternalError("Failed to load mind map", err))
		return
	}
	if doc == nil {
		_ = c.Error(api.NotFoundError("No mind map has been generated yet"))
		return
	}

	c.JSON(http.StatusOK, api.MindMapResponse{
		Title:       doc.Title,
		Code:        doc.Code,
		CreatedAt:   doc.CreatedAt,
		LastUpdated: doc.LastUpdated,
	})
}

// Flowchart returns the current diagram in the flowchart render dialect.
//
// GET /mindmap/flowchart
func (h *MindMapHandler) Flowchart(c *gin.Context) {
	code, err := h.service.FlowchartCode(c.Request.Context())
	if err != nil {
		_ = c.Error(api.InternalError("Failed to convert mind map", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}

// Expand generates children for a node and splices them into the diagram.
//
// POST /mindmap/expand
func (h *MindMapHandler) Expand(c *gin.Context) {
	var req api.ExpandNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	resp, err := h.service.ExpandNode(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, llm.ErrAllProvidersExhausted) {
			_ = c.Error(api.ProviderError("All AI backends failed", err))
			return
		}
		_ = c.Error(api.InternalError("Failed to expand node", err))
		return
	}

	c.JSON(http.StatusOK, resp)
}
