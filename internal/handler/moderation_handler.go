package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/review-bot-api/internal/dto"
	"github.com/noah-isme/review-bot-api/internal/models"
	"github.com/noah-isme/review-bot-api/internal/service"
	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
	"github.com/noah-isme/review-bot-api/pkg/response"
)

type moderationService interface {
	ListRecent(ctx context.Context, adminID int64, limit int) ([]dto.ModerationItem, error)
	Open(ctx context.Context, adminID, id int64) (*dto.ModerationItem, error)
	Approve(ctx context.Context, adminID, id int64) error
	Reject(ctx context.Context, adminID, id int64) error
	Delete(ctx context.Context, adminID, id int64) error
	EditField(ctx context.Context, adminID, reviewID int64, field models.EditField, value string) error
}

type exportService interface {
	Generate(ctx context.Context, format dto.ExportFormat, limit int) (*service.ExportResult, error)
}

// ModerationHandler exposes the admin panel review workflow.
type ModerationHandler struct {
	moderation moderationService
	exports    exportService
}

// NewModerationHandler constructs ModerationHandler.
func NewModerationHandler(moderation moderationService, exports exportService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation, exports: exports}
}

// List returns recent reviews of any status for the panel.
func (h *ModerationHandler) List(c *gin.Context) {
	claims, ok := adminFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	items, err := h.moderation.ListRecent(c.Request.Context(), claims.AdminID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get returns one review with moderation fields.
func (h *ModerationHandler) Get(c *gin.Context) {
	claims, ok := adminFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := reviewIDParam(c)
	if !ok {
		return
	}

	item, err := h.moderation.Open(c.Request.Context(), claims.AdminID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Approve publishes a pending review.
func (h *ModerationHandler) Approve(c *gin.Context) {
	h.setStatus(c, h.moderation.Approve)
}

// Reject hides a review from the public listing.
func (h *ModerationHandler) Reject(c *gin.Context) {
	h.setStatus(c, h.moderation.Reject)
}

func (h *ModerationHandler) setStatus(c *gin.Context, apply func(ctx context.Context, adminID, id int64) error) {
	claims, ok := adminFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := reviewIDParam(c)
	if !ok {
		return
	}

	if err := apply(c.Request.Context(), claims.AdminID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Edit applies a single-field correction to a review.
func (h *ModerationHandler) Edit(c *gin.Context) {
	claims, ok := adminFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := reviewIDParam(c)
	if !ok {
		return
	}

	var req dto.EditReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid edit payload"))
		return
	}

	if err := h.moderation.EditField(c.Request.Context(), claims.AdminID, id, models.EditField(req.Field), req.Value); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete removes a review entirely.
func (h *ModerationHandler) Delete(c *gin.Context) {
	h.setStatus(c, h.moderation.Delete)
}

// Export streams a rendered dump of all reviews.
func (h *ModerationHandler) Export(c *gin.Context) {
	if _, ok := adminFromContext(c); !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := dto.ExportFormat(c.DefaultQuery("format", string(dto.ExportCSV)))
	limit := 1000
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	result, err := h.exports.Generate(c.Request.Context(), format, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}

func reviewIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id must be an integer"))
		return 0, false
	}
	return id, true
}
