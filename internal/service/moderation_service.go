package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/review-bot-api/internal/dto"
	"github.com/noah-isme/review-bot-api/internal/models"
	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
)

// Submitter-facing moderation notices.
const (
	msgReviewApproved = "Your review was published. Thank you!"
	msgReviewRejected = "Your review was rejected."
	msgReviewDeleted  = "Your review was removed by a moderator."
)

const approvedCachePrefix = "reviews:approved:"

type moderationStore interface {
	FindByID(ctx context.Context, id int64) (*models.Review, error)
	ListByStatus(ctx context.Context, status models.ReviewStatus, limit int) ([]models.Review, error)
	ListRecent(ctx context.Context, limit int) ([]models.Review, error)
	UpdateStatus(ctx context.Context, id int64, status models.ReviewStatus, moderatorID int64, at time.Time) error
	UpdateText(ctx context.Context, id int64, text string, moderatorID int64, at time.Time) error
	UpdateRating(ctx context.Context, id int64, rating int, moderatorID int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

// ModerationService exposes the admin-facing review workflow. It owns
// the per-admin pending-edit registry; review records live in the store
// and are shared with the submission side.
type ModerationService struct {
	repo      moderationStore
	presenter Presenter
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	admins    map[int64]struct{}
	now       func() time.Time

	mu           sync.Mutex
	pendingEdits map[int64]models.PendingEdit
}

// NewModerationService constructs the moderation service.
func NewModerationService(repo moderationStore, presenter Presenter, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, adminIDs []int64) *ModerationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &ModerationService{
		repo:         repo,
		presenter:    presenter,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		admins:       admins,
		now:          time.Now,
		pendingEdits: make(map[int64]models.PendingEdit),
	}
}

// IsAdmin reports whether the identity belongs to the administrator set.
func (s *ModerationService) IsAdmin(id int64) bool {
	_, ok := s.admins[id]
	return ok
}

func (s *ModerationService) gate(adminID int64) error {
	if !s.IsAdmin(adminID) {
		return appErrors.Clone(appErrors.ErrUnauthorized, "administrators only")
	}
	return nil
}

// ListRecent returns the newest reviews of any status for the panel.
func (s *ModerationService) ListRecent(ctx context.Context, adminID int64, limit int) ([]dto.ModerationItem, error) {
	if err := s.gate(adminID); err != nil {
		return nil, err
	}
	reviews, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	items := make([]dto.ModerationItem, 0, len(reviews))
	for i := range reviews {
		items = append(items, s.toModerationItem(&reviews[i]))
	}
	return items, nil
}

// Open returns the full record for moderation display.
func (s *ModerationService) Open(ctx context.Context, adminID, id int64) (*dto.ModerationItem, error) {
	if err := s.gate(adminID); err != nil {
		return nil, err
	}
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review")
	}
	item := s.toModerationItem(review)
	return &item, nil
}

// Approve publishes a review regardless of its prior status and
// notifies the submitter best-effort.
func (s *ModerationService) Approve(ctx context.Context, adminID, id int64) error {
	return s.setStatus(ctx, adminID, id, models.StatusApproved, msgReviewApproved, "approve")
}

// Reject marks a review rejected regardless of its prior status and
// notifies the submitter best-effort.
func (s *ModerationService) Reject(ctx context.Context, adminID, id int64) error {
	return s.setStatus(ctx, adminID, id, models.StatusRejected, msgReviewRejected, "reject")
}

func (s *ModerationService) setStatus(ctx context.Context, adminID, id int64, status models.ReviewStatus, notice, action string) error {
	if err := s.gate(adminID); err != nil {
		return err
	}
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review")
	}
	if err := s.repo.UpdateStatus(ctx, id, status, adminID, s.now()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update review status")
	}
	s.metrics.RecordModeration(action)
	s.invalidateApproved(ctx)
	s.presenter.Notify(ctx, review.UserID, notice)
	return nil
}

// Delete hard-deletes a review. A missing id is a no-op success: there
// is nothing left to delete either way.
func (s *ModerationService) Delete(ctx context.Context, adminID, id int64) error {
	if err := s.gate(adminID); err != nil {
		return err
	}
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete review")
	}
	s.metrics.RecordModeration("delete")
	s.invalidateApproved(ctx)
	s.presenter.Notify(ctx, review.UserID, msgReviewDeleted)
	return nil
}

// BeginEdit registers a pending single-field correction, replacing any
// prior one for the same admin, and prompts for the new value.
func (s *ModerationService) BeginEdit(ctx context.Context, adminID, reviewID int64, field models.EditField) error {
	if err := s.gate(adminID); err != nil {
		return err
	}
	if !field.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown field: "+string(field))
	}
	s.mu.Lock()
	s.pendingEdits[adminID] = models.PendingEdit{ReviewID: reviewID, Field: field}
	s.mu.Unlock()

	switch field {
	case models.EditFieldText:
		s.presenter.Notify(ctx, adminID, fmt.Sprintf("Send the new text for review #%d (10-2000 characters).", reviewID))
	case models.EditFieldRating:
		s.presenter.Notify(ctx, adminID, fmt.Sprintf("Send the new rating for review #%d (a number from 1 to 5).", reviewID))
	}
	return nil
}

// HasPendingEdit reports whether the admin's next message should be
// consumed as an edit value.
func (s *ModerationService) HasPendingEdit(adminID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pendingEdits[adminID]
	return ok
}

// ApplyEdit consumes the admin's pending edit with the supplied input.
// The pending edit is removed whether or not the input validates; a
// failed edit has to be re-initiated.
func (s *ModerationService) ApplyEdit(ctx context.Context, adminID int64, input string) error {
	s.mu.Lock()
	edit, ok := s.pendingEdits[adminID]
	delete(s.pendingEdits, adminID)
	s.mu.Unlock()
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "no edit in progress")
	}

	err := s.EditField(ctx, adminID, edit.ReviewID, edit.Field, strings.TrimSpace(input))
	if err != nil {
		s.presenter.Notify(ctx, adminID, appErrors.FromError(err).Message)
		return err
	}

	switch edit.Field {
	case models.EditFieldText:
		s.presenter.Notify(ctx, adminID, fmt.Sprintf("Text of review #%d updated.", edit.ReviewID))
	case models.EditFieldRating:
		s.presenter.Notify(ctx, adminID, fmt.Sprintf("Rating of review #%d updated.", edit.ReviewID))
	}
	return nil
}

// EditField validates and applies a single-field correction, stamping
// the moderator. Shared by the conversation flow and the admin panel.
func (s *ModerationService) EditField(ctx context.Context, adminID, reviewID int64, field models.EditField, value string) error {
	if err := s.gate(adminID); err != nil {
		return err
	}

	switch field {
	case models.EditFieldText:
		if err := s.validator.Var(value, "min=10,max=2000"); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid text length: send 10-2000 characters")
		}
		if err := s.repo.UpdateText(ctx, reviewID, value, adminID, s.now()); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update review text")
		}
	case models.EditFieldRating:
		rating, err := strconv.Atoi(value)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid rating: send a number from 1 to 5")
		}
		if err := s.validator.Var(rating, "gte=1,lte=5"); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid rating: send a number from 1 to 5")
		}
		if err := s.repo.UpdateRating(ctx, reviewID, rating, adminID, s.now()); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update review rating")
		}
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown field: "+string(field))
	}

	s.metrics.RecordModeration("edit")
	s.invalidateApproved(ctx)
	return nil
}

// ListApproved returns approved reviews for public browsing. No admin
// gate; served from cache when enabled.
func (s *ModerationService) ListApproved(ctx context.Context, limit int) ([]dto.ReviewView, error) {
	key := approvedCachePrefix + strconv.Itoa(limit)
	var cached []dto.ReviewView
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	reviews, err := s.repo.ListByStatus(ctx, models.StatusApproved, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approved reviews")
	}
	views := make([]dto.ReviewView, 0, len(reviews))
	for i := range reviews {
		views = append(views, s.toReviewView(&reviews[i]))
	}

	if err := s.cache.Set(ctx, key, views, 0); err != nil {
		s.logger.Debug("approved listing cache write failed", zap.Error(err))
	}
	return views, nil
}

// OpenApproved returns one approved review for public display; pending
// and rejected reviews are invisible here.
func (s *ModerationService) OpenApproved(ctx context.Context, id int64) (*dto.ReviewView, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "review not found or not yet approved")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review")
	}
	if review.Status != models.StatusApproved {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "review not found or not yet approved")
	}
	view := s.toReviewView(review)
	return &view, nil
}

func (s *ModerationService) invalidateApproved(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, approvedCachePrefix+"*"); err != nil {
		s.logger.Debug("approved listing cache invalidation failed", zap.Error(err))
	}
}

func (s *ModerationService) toReviewView(review *models.Review) dto.ReviewView {
	return dto.ReviewView{
		ID:          review.ID,
		Author:      review.Author(),
		Rating:      review.Rating,
		Text:        review.Text,
		Attachments: s.decodeAttachments(review),
		CreatedAt:   review.CreatedAt,
	}
}

func (s *ModerationService) toModerationItem(review *models.Review) dto.ModerationItem {
	return dto.ModerationItem{
		ID:          review.ID,
		UserID:      review.UserID,
		Author:      review.Author(),
		Rating:      review.Rating,
		Text:        review.Text,
		Attachments: s.decodeAttachments(review),
		Status:      review.Status,
		ModeratorID: review.ModeratorID,
		ModeratedAt: review.ModeratedAt,
		CreatedAt:   review.CreatedAt,
	}
}

// decodeAttachments tolerates malformed persisted segments but logs
// them: silently vanishing data would mask corruption.
func (s *ModerationService) decodeAttachments(review *models.Review) []models.Attachment {
	set, skipped := models.DecodeAttachments(review.Attachments)
	if skipped > 0 {
		s.logger.Warn("review has malformed attachment segments",
			zap.Int64("review_id", review.ID), zap.Int("skipped", skipped))
	}
	if set.Len() == 0 {
		return nil
	}
	return set.Items()
}
