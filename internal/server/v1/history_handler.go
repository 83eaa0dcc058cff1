package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cnmzsjbz199328/LazyDog/internal/notes"
	"github.com/cnmzsjbz199328/LazyDog/internal/server/validator"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

type HistoryHandler struct {
	service *notes.Service
}

func NewHistoryHandler(service *notes.Service) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// List returns all stored records in insertion order.
//
// GET /history
func (h *HistoryHandler) List(c *gin.Context) {
	records, err := h.service.History(c.Request.Context())
	if err != nil {
		_ = c.Error(api.InternalError("Failed to load history", err))
		return
	}

	out := make([]api.HistoryRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, api.HistoryRecordResponse{
			ID:        rec.ID,
			MainPoint: rec.MainPoint,
			Content:   rec.Content,
			CreatedAt: rec.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"records": out})
}

// Save appends one record.
//
// POST /history
func (h *HistoryHandler) Save(c *gin.Context) {
	var req api.SaveHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	rec, err := h.service.SaveHistoryRecord(c.Request.Context(), req.MainPoint, req.Content)
	if err != nil {
		if errors.Is(err, notes.ErrInvalidRecord) {
			_ = c.Error(api.BadRequestError("Record is blank or a placeholder value"))
			return
		}
		_ = c.Error(api.InternalError("Failed to save history record", err))
		return
	}

	c.JSON(http.StatusCreated, api.HistoryRecordResponse{
		ID:        rec.ID,
		MainPoint: rec.MainPoint,
		Content:   rec.Content,
		CreatedAt: rec.CreatedAt,
	})
}

// Clear removes every record.
//
// DELETE /history
func (h *HistoryHandler) Clear(c *gin.Context) {
	if err := h.service.ClearHistory(c.Request.Context()); err != nil {
		_ = c.Error(api.InternalError("Failed to clear history", err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Clean purges invalid records on demand.
//
// POST /history/clean
func (h *HistoryHandler) Clean(c *gin.Context) {
	removed, err := h.service.CleanInvalidRecords(c.Request.Context())
	if err != nil {
		_ = c.Error(api.InternalError("Failed to clean history", err))
		return
	}
	c.JSON(http.StatusOK, api.CleanHistoryResponse{Removed: removed})
}
