package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/review-bot-api/internal/dto"
	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
	"github.com/noah-isme/review-bot-api/pkg/response"
)

type publicReviewService interface {
	ListApproved(ctx context.Context, limit int) ([]dto.ReviewView, error)
	OpenApproved(ctx context.Context, id int64) (*dto.ReviewView, error)
}

// ReviewHandler exposes the public approved-review listing.
type ReviewHandler struct {
	reviews      publicReviewService
	defaultLimit int
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(reviews publicReviewService, defaultLimit int) *ReviewHandler {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &ReviewHandler{reviews: reviews, defaultLimit: defaultLimit}
}

// List returns approved reviews, newest first.
func (h *ReviewHandler) List(c *gin.Context) {
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	views, err := h.reviews.ListApproved(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Get returns one approved review by id.
func (h *ReviewHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id must be an integer"))
		return
	}

	view, err := h.reviews.OpenApproved(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
