package models

import "time"

// ReviewStatus is the moderation state of a stored review.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Validation bounds shared by the submission flow and moderation edits.
const (
	MinRating = 1
	MaxRating = 5

	MinTextLen         = 10
	MaxTextLen         = 2000
	MaxVoiceCaptionLen = 500

	// MaxReviewsPerUser counts reviews of every status.
	MaxReviewsPerUser = 2
)

// Review is a persisted user review. Identity is immutable once created;
// text, rating and status may change through moderation.
type Review struct {
	ID          int64        `db:"id" json:"id"`
	UserID      int64        `db:"user_id" json:"userId"`
	DisplayName string       `db:"display_name" json:"displayName"`
	Rating      int          `db:"rating" json:"rating"`
	Text        string       `db:"text" json:"text"`
	Attachments string       `db:"attachments" json:"attachments"`
	Status      ReviewStatus `db:"status" json:"status"`
	ModeratorID *int64       `db:"moderator_id" json:"moderatorId,omitempty"`
	ModeratedAt *time.Time   `db:"moderated_at" json:"moderatedAt,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
}

// Author returns the display name, falling back for anonymous submitters.
func (r *Review) Author() string {
	if r.DisplayName == "" {
		return "Anonymous"
	}
	return r.DisplayName
}
