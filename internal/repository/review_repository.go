package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/review-bot-api/internal/models"
	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
)

// ReviewRepository handles persistence for user reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository instantiates a review repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, user_id, display_name, rating, text, attachments, status, moderator_id, moderated_at, created_at`

// CreateParams carries the insert payload for a new review.
type CreateParams struct {
	UserID      int64
	DisplayName string
	Rating      int
	Text        string
	Attachments string
}

// Create inserts a pending review and returns its id. It enforces the
// per-user cap with a count before the insert; the two statements are
// not one transaction, which is tolerable only because events for one
// user are dispatched serially.
func (r *ReviewRepository) Create(ctx context.Context, params CreateParams, now time.Time) (int64, error) {
	count, err := r.CountByUser(ctx, params.UserID)
	if err != nil {
		return 0, err
	}
	if count >= models.MaxReviewsPerUser {
		return 0, appErrors.ErrQuotaExceeded
	}

	const query = `INSERT INTO reviews (user_id, display_name, rating, text, attachments, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	var id int64
	if err := r.db.GetContext(ctx, &id, query,
		params.UserID, params.DisplayName, params.Rating, params.Text, params.Attachments,
		models.StatusPending, now.UTC(),
	); err != nil {
		return 0, fmt.Errorf("insert review: %w", err)
	}
	return id, nil
}

// FindByID loads a review by identifier.
func (r *ReviewRepository) FindByID(ctx context.Context, id int64) (*models.Review, error) {
	query := fmt.Sprintf("SELECT %s FROM reviews WHERE id = $1", reviewColumns)
	var review models.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByStatus returns the most recent reviews with the given status.
func (r *ReviewRepository) ListByStatus(ctx context.Context, status models.ReviewStatus, limit int) ([]models.Review, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf("SELECT %s FROM reviews WHERE status = $1 ORDER BY created_at DESC LIMIT $2", reviewColumns)
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, status, limit); err != nil {
		return nil, fmt.Errorf("list reviews by status: %w", err)
	}
	return reviews, nil
}

// ListRecent returns the most recent reviews regardless of status.
func (r *ReviewRepository) ListRecent(ctx context.Context, limit int) ([]models.Review, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf("SELECT %s FROM reviews ORDER BY created_at DESC LIMIT $1", reviewColumns)
	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, limit); err != nil {
		return nil, fmt.Errorf("list recent reviews: %w", err)
	}
	return reviews, nil
}

// CountByUser counts a user's stored reviews across every status.
func (r *ReviewRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM reviews WHERE user_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

// UpdateStatus overwrites the moderation status and stamps the
// moderator. Missing ids are a no-op, not an error.
func (r *ReviewRepository) UpdateStatus(ctx context.Context, id int64, status models.ReviewStatus, moderatorID int64, at time.Time) error {
	const query = `UPDATE reviews SET status = $1, moderator_id = $2, moderated_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, status, moderatorID, at.UTC(), id); err != nil {
		return fmt.Errorf("update review status: %w", err)
	}
	return nil
}

// UpdateText replaces the review text and stamps the moderator.
func (r *ReviewRepository) UpdateText(ctx context.Context, id int64, text string, moderatorID int64, at time.Time) error {
	const query = `UPDATE reviews SET text = $1, moderator_id = $2, moderated_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, text, moderatorID, at.UTC(), id); err != nil {
		return fmt.Errorf("update review text: %w", err)
	}
	return nil
}

// UpdateRating replaces the rating and stamps the moderator.
func (r *ReviewRepository) UpdateRating(ctx context.Context, id int64, rating int, moderatorID int64, at time.Time) error {
	const query = `UPDATE reviews SET rating = $1, moderator_id = $2, moderated_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, rating, moderatorID, at.UTC(), id); err != nil {
		return fmt.Errorf("update review rating: %w", err)
	}
	return nil
}

// Delete hard-deletes a review. Missing ids are a no-op.
func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM reviews WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}
