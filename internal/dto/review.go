package dto

import (
	"time"

	"github.com/noah-isme/review-bot-api/internal/models"
)

// ReviewView is the public shape of an approved review.
type ReviewView struct {
	ID          int64               `json:"id"`
	Author      string              `json:"author"`
	Rating      int                 `json:"rating"`
	Text        string              `json:"text"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// ModerationItem is the admin panel shape, exposing moderation fields
// the public view hides.
type ModerationItem struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"userId"`
	Author      string              `json:"author"`
	Rating      int                 `json:"rating"`
	Text        string              `json:"text"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
	Status      models.ReviewStatus `json:"status"`
	ModeratorID *int64              `json:"moderatorId,omitempty"`
	ModeratedAt *time.Time          `json:"moderatedAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// EditReviewRequest is the admin panel single-field correction payload.
type EditReviewRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// ExportFormat selects the moderation export rendering.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)
