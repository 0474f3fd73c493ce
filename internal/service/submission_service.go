package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/review-bot-api/internal/dto"
	"github.com/noah-isme/review-bot-api/internal/models"
	"github.com/noah-isme/review-bot-api/internal/repository"
	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
)

// Fixed conversation prompts. The presenter renders them verbatim.
const (
	promptRating          = "Rate your experience from 1 to 5 stars:"
	promptText            = "Your rating is saved!\nNow send your review: text (10-2000 characters), a photo, video or voice message."
	promptNeedInput       = "Please send review text (10-2000 characters) or an attachment."
	promptTextTooShort    = "The text is too short - at least 10 characters."
	promptTextTooLong     = "The text is too long - at most 2000 characters."
	promptAttachDecision  = "Would you like to attach a photo, video or voice message?"
	promptCollect         = "Send up to 3 files. When you are finished, press 'Done'."
	promptAttachLimit     = "No more than 3 attachments per review."
	promptOptionalText    = "Would you like to add text to your review? (at least 10 characters)"
	promptVoiceCaption    = "Voice message received. Add a caption or skip it."
	promptCaptionTooLong  = "The caption is too long - at most 500 characters."
	promptInvalidRating   = "Please choose a rating from 1 to 5."
	msgSubmitted          = "Your review was sent for moderation. An administrator will publish or reject it."
	msgSubmittedVoice     = "Your review with the voice message was sent for moderation."
	msgCancelled          = "Review submission cancelled."
	msgQuotaExceeded      = "You have already left the maximum number of reviews (2)."
	msgSubmitFailed       = "Something went wrong while saving your review. Please try again."
	msgIncompleteReview   = "The review is incomplete and was not sent."
)

type submissionStore interface {
	Create(ctx context.Context, params repository.CreateParams, now time.Time) (int64, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
}

// SubmissionService drives the per-user review submission conversation.
// It owns the session registry; the dispatcher serializes events per
// user, the internal mutex only protects registry bookkeeping.
type SubmissionService struct {
	repo      submissionStore
	presenter Presenter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	adminIDs  []int64
	now       func() time.Time

	mu       sync.Mutex
	sessions map[int64]*models.Session
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(repo submissionStore, presenter Presenter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, adminIDs []int64) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		repo:      repo,
		presenter: presenter,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		adminIDs:  adminIDs,
		now:       time.Now,
		sessions:  make(map[int64]*models.Session),
	}
}

// HasSession reports whether the user has an open submission session.
func (s *SubmissionService) HasSession(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID]
	return ok
}

// Start opens a fresh session for the user, superseding any prior one.
// The quota is pre-checked here for early feedback; the authoritative
// check stays in the store's Create.
func (s *SubmissionService) Start(ctx context.Context, userID int64, displayName string) error {
	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		s.logger.Error("quota pre-check failed", zap.Int64("user_id", userID), zap.Error(err))
		s.presenter.Notify(ctx, userID, msgSubmitFailed)
		return err
	}
	if count >= models.MaxReviewsPerUser {
		s.presenter.Notify(ctx, userID, msgQuotaExceeded)
		return appErrors.ErrQuotaExceeded
	}

	session := &models.Session{
		UserID:      userID,
		DisplayName: displayName,
		State:       models.StateAwaitingRating,
	}
	s.mu.Lock()
	s.sessions[userID] = session
	size := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(size)

	s.sendStep(ctx, session, dto.Prompt{
		Text:    promptRating,
		Actions: []dto.ActionKind{dto.ActionRate, dto.ActionMainMenu},
	})
	return nil
}

// HandleAction advances the session with a parsed button action.
func (s *SubmissionService) HandleAction(ctx context.Context, userID int64, action dto.Action) error {
	if action.Kind == dto.ActionStartReview {
		return s.Start(ctx, userID, "")
	}

	session := s.session(userID)
	if session == nil {
		s.presenter.Notify(ctx, userID, "Session not found. Press 'Leave a review' to start over.")
		return nil
	}

	switch action.Kind {
	case dto.ActionCancel:
		s.discard(ctx, session)
		s.presenter.Notify(ctx, userID, msgCancelled)
		return nil

	case dto.ActionRate:
		if session.State != models.StateAwaitingRating {
			return nil
		}
		if err := s.validator.Var(action.Rating, "gte=1,lte=5"); err != nil {
			s.sendStep(ctx, session, dto.Prompt{Text: promptInvalidRating, Actions: []dto.ActionKind{dto.ActionRate}})
			return nil
		}
		session.Rating = action.Rating
		session.State = models.StateAwaitingText
		s.sendStep(ctx, session, dto.Prompt{Text: promptText, Actions: []dto.ActionKind{dto.ActionCancel}})
		return nil

	case dto.ActionAttachYes:
		if session.State != models.StateAwaitingAttachmentDecision {
			return nil
		}
		session.State = models.StateCollectingAttachments
		s.sendStep(ctx, session, dto.Prompt{Text: promptCollect, Actions: []dto.ActionKind{dto.ActionConfirm, dto.ActionCancel}})
		return nil

	case dto.ActionWriteText:
		if session.State != models.StateAwaitingOptionalText {
			return nil
		}
		s.sendStep(ctx, session, dto.Prompt{Text: "Send your review text (10-2000 characters).", Actions: []dto.ActionKind{dto.ActionConfirm, dto.ActionCancel}})
		return nil

	case dto.ActionConfirm:
		switch session.State {
		case models.StateAwaitingAttachmentDecision, models.StateCollectingAttachments, models.StateAwaitingOptionalText:
			return s.submit(ctx, session, msgSubmitted)
		}
		return nil

	case dto.ActionSkipCaption:
		if session.State != models.StateAwaitingVoiceCaption {
			return nil
		}
		session.Text = ""
		return s.submit(ctx, session, msgSubmittedVoice)
	}

	return nil
}

// HandleMessage advances the session with a free-form text or media event.
func (s *SubmissionService) HandleMessage(ctx context.Context, event dto.Event) error {
	session := s.session(event.UserID)
	if session == nil {
		return nil
	}
	if event.DisplayName != "" {
		session.DisplayName = event.DisplayName
	}

	text := strings.TrimSpace(event.Text)

	switch session.State {
	case models.StateAwaitingRating:
		s.sendStep(ctx, session, dto.Prompt{Text: promptRating, Actions: []dto.ActionKind{dto.ActionRate, dto.ActionMainMenu}})
		return nil

	case models.StateAwaitingText:
		return s.handleAwaitingText(ctx, session, text, event.Media)

	case models.StateAwaitingAttachmentDecision, models.StateCollectingAttachments:
		return s.handleCollecting(ctx, session, text, event.Media)

	case models.StateAwaitingOptionalText:
		return s.handleOptionalText(ctx, session, text, event.Media)

	case models.StateAwaitingVoiceCaption:
		if err := s.validator.Var(text, "max=500"); err != nil {
			s.sendStep(ctx, session, dto.Prompt{Text: promptCaptionTooLong, Actions: []dto.ActionKind{dto.ActionSkipCaption, dto.ActionCancel}})
			return nil
		}
		session.Text = text
		return s.submit(ctx, session, msgSubmittedVoice)
	}

	return nil
}

// handleAwaitingText covers the first content message after the rating:
// text alone, media alone, or both at once.
func (s *SubmissionService) handleAwaitingText(ctx context.Context, session *models.Session, text string, media []dto.MediaItem) error {
	if text == "" && len(media) == 0 {
		s.sendStep(ctx, session, dto.Prompt{Text: promptNeedInput, Actions: []dto.ActionKind{dto.ActionCancel}})
		return nil
	}

	if text != "" {
		if prompt, ok := s.checkReviewText(text); !ok {
			s.sendStep(ctx, session, dto.Prompt{Text: prompt, Actions: []dto.ActionKind{dto.ActionCancel}})
			return nil
		}
		session.Text = text

		if len(media) > 0 {
			// Text and attachments arrived together: submit immediately.
			session.Attachments = models.NewAttachmentSet(toAttachments(media)...)
			return s.submit(ctx, session, msgSubmitted)
		}

		session.State = models.StateAwaitingAttachmentDecision
		s.sendStep(ctx, session, dto.Prompt{
			Text:    promptAttachDecision,
			Actions: []dto.ActionKind{dto.ActionAttachYes, dto.ActionConfirm, dto.ActionCancel},
		})
		return nil
	}

	// Attachments without text.
	session.Attachments = models.NewAttachmentSet(toAttachments(media)...)
	if session.Attachments.HasVoice() {
		session.State = models.StateAwaitingVoiceCaption
		s.sendStep(ctx, session, dto.Prompt{Text: promptVoiceCaption, Actions: []dto.ActionKind{dto.ActionSkipCaption, dto.ActionCancel}})
		return nil
	}
	session.State = models.StateAwaitingOptionalText
	s.sendStep(ctx, session, dto.Prompt{
		Text:    promptOptionalText,
		Actions: []dto.ActionKind{dto.ActionWriteText, dto.ActionConfirm, dto.ActionCancel},
	})
	return nil
}

// handleCollecting accepts additional attachments and the done token.
func (s *SubmissionService) handleCollecting(ctx context.Context, session *models.Session, text string, media []dto.MediaItem) error {
	if len(media) > 0 {
		if len(media) > session.Attachments.Remaining() {
			s.sendStep(ctx, session, dto.Prompt{Text: promptAttachLimit, Actions: []dto.ActionKind{dto.ActionConfirm, dto.ActionCancel}})
			return nil
		}
		voice := false
		for _, item := range media {
			if err := session.Attachments.Append(item.Kind, item.Ref); err != nil {
				s.sendStep(ctx, session, dto.Prompt{Text: promptAttachLimit, Actions: []dto.ActionKind{dto.ActionConfirm, dto.ActionCancel}})
				return nil
			}
			if item.Kind == models.KindVoice {
				voice = true
			}
		}
		session.State = models.StateCollectingAttachments

		if voice {
			// The transport cannot caption a voice message, so captioning
			// gets its own step regardless of remaining capacity.
			session.State = models.StateAwaitingVoiceCaption
			s.sendStep(ctx, session, dto.Prompt{Text: promptVoiceCaption, Actions: []dto.ActionKind{dto.ActionSkipCaption, dto.ActionCancel}})
			return nil
		}

		s.sendStep(ctx, session, dto.Prompt{
			Text:    fmt.Sprintf("Attachment received. %d/3 attached. Press 'Done' when finished.", session.Attachments.Len()),
			Actions: []dto.ActionKind{dto.ActionConfirm, dto.ActionCancel},
		})
		return nil
	}

	if dto.IsDoneToken(text) {
		return s.submit(ctx, session, msgSubmitted)
	}

	s.sendStep(ctx, session, dto.Prompt{Text: promptCollect, Actions: []dto.ActionKind{dto.ActionConfirm, dto.ActionCancel}})
	return nil
}

// handleOptionalText runs after an attachments-only start: the user may
// still add text, add more attachments, or send as-is.
func (s *SubmissionService) handleOptionalText(ctx context.Context, session *models.Session, text string, media []dto.MediaItem) error {
	if text != "" {
		if prompt, ok := s.checkReviewText(text); !ok {
			s.sendStep(ctx, session, dto.Prompt{Text: prompt, Actions: []dto.ActionKind{dto.ActionConfirm, dto.ActionCancel}})
			return nil
		}
		session.Text = text
		return s.submit(ctx, session, msgSubmitted)
	}

	if len(media) > 0 {
		if len(media) > session.Attachments.Remaining() {
			s.sendStep(ctx, session, dto.Prompt{Text: promptAttachLimit, Actions: []dto.ActionKind{dto.ActionConfirm, dto.ActionCancel}})
			return nil
		}
		for _, item := range media {
			if err := session.Attachments.Append(item.Kind, item.Ref); err != nil {
				s.sendStep(ctx, session, dto.Prompt{Text: promptAttachLimit, Actions: []dto.ActionKind{dto.ActionConfirm, dto.ActionCancel}})
				return nil
			}
		}
		s.sendStep(ctx, session, dto.Prompt{
			Text:    fmt.Sprintf("Attachment received. %d/3 attached. Send text or press 'Send as is'.", session.Attachments.Len()),
			Actions: []dto.ActionKind{dto.ActionConfirm, dto.ActionCancel},
		})
		return nil
	}

	s.sendStep(ctx, session, dto.Prompt{Text: promptOptionalText, Actions: []dto.ActionKind{dto.ActionWriteText, dto.ActionConfirm, dto.ActionCancel}})
	return nil
}

// checkReviewText validates the 10-2000 character rule and returns the
// re-prompt message on violation.
func (s *SubmissionService) checkReviewText(text string) (string, bool) {
	if err := s.validator.Var(text, "min=10"); err != nil {
		return promptTextTooShort, false
	}
	if err := s.validator.Var(text, "max=2000"); err != nil {
		return promptTextTooLong, false
	}
	return "", true
}

// submit is the terminal transition: persist, notify, destroy session.
func (s *SubmissionService) submit(ctx context.Context, session *models.Session, successMsg string) error {
	defer s.discard(ctx, session)

	if session.Rating < models.MinRating {
		s.presenter.Notify(ctx, session.UserID, msgIncompleteReview)
		return nil
	}

	id, err := s.repo.Create(ctx, repository.CreateParams{
		UserID:      session.UserID,
		DisplayName: session.DisplayName,
		Rating:      session.Rating,
		Text:        session.Text,
		Attachments: session.Attachments.Encode(),
	}, s.now())
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrQuotaExceeded.Code {
			s.metrics.RecordSubmission("quota_exceeded")
			s.presenter.Notify(ctx, session.UserID, msgQuotaExceeded)
			return err
		}
		s.metrics.RecordSubmission("failed")
		s.logger.Error("failed to save review", zap.Int64("user_id", session.UserID), zap.Error(err))
		s.presenter.Notify(ctx, session.UserID, msgSubmitFailed)
		return err
	}

	s.metrics.RecordSubmission("created")
	s.presenter.Notify(ctx, session.UserID, successMsg)
	s.notifyAdmins(ctx, id, session)
	return nil
}

// notifyAdmins sends every administrator a moderation prompt for the new
// review. Best effort: failures are logged by the presenter.
func (s *SubmissionService) notifyAdmins(ctx context.Context, reviewID int64, session *models.Session) {
	author := session.DisplayName
	if author == "" {
		author = "Anonymous"
	}
	summary := fmt.Sprintf("New review #%d - %d/5\nFrom: %s\n\n%s", reviewID, session.Rating, author, session.Text)
	prompt := dto.Prompt{
		Text:       summary,
		ModActions: []dto.ModerationActionKind{dto.ModActionApprove, dto.ModActionReject, dto.ModActionEditField, dto.ModActionDelete},
		ReviewID:   reviewID,
	}
	for _, adminID := range s.adminIDs {
		if _, err := s.presenter.SendPrompt(ctx, adminID, prompt); err != nil {
			s.logger.Warn("failed to notify admin about new review",
				zap.Int64("admin_id", adminID), zap.Int64("review_id", reviewID), zap.Error(err))
		}
	}
}

// sendStep replaces the user's live prompt. Transport failures never
// block the state machine.
func (s *SubmissionService) sendStep(ctx context.Context, session *models.Session, prompt dto.Prompt) {
	if session.LiveMessage != "" {
		if err := s.presenter.RemovePrompt(ctx, session.UserID, session.LiveMessage); err != nil {
			s.logger.Debug("could not remove previous prompt", zap.Int64("user_id", session.UserID), zap.Error(err))
		}
		session.LiveMessage = ""
	}
	ref, err := s.presenter.SendPrompt(ctx, session.UserID, prompt)
	if err != nil {
		s.logger.Warn("failed to send step prompt", zap.Int64("user_id", session.UserID), zap.Error(err))
		return
	}
	session.LiveMessage = ref
}

// discard removes the session and its live prompt.
func (s *SubmissionService) discard(ctx context.Context, session *models.Session) {
	if session.LiveMessage != "" {
		if err := s.presenter.RemovePrompt(ctx, session.UserID, session.LiveMessage); err != nil {
			s.logger.Debug("could not remove prompt on discard", zap.Int64("user_id", session.UserID), zap.Error(err))
		}
		session.LiveMessage = ""
	}
	s.mu.Lock()
	delete(s.sessions, session.UserID)
	size := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(size)
}

func (s *SubmissionService) session(userID int64) *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[userID]
}

func toAttachments(media []dto.MediaItem) []models.Attachment {
	out := make([]models.Attachment, 0, len(media))
	for _, m := range media {
		out = append(out, models.Attachment{Kind: m.Kind, Ref: m.Ref})
	}
	return out
}
