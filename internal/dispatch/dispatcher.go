package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/review-bot-api/internal/dto"
	"github.com/noah-isme/review-bot-api/internal/models"
	"github.com/noah-isme/review-bot-api/internal/service"
)

const (
	msgMainMenu      = "Hello! Here you can leave a review or read what others wrote."
	msgUnknownAction = "This button is no longer active."
	msgNoReviews     = "No published reviews yet. Be the first!"
)

// lockStripes bounds the per-user serialization table. Events for the
// same user always hit the same stripe; collisions between users only
// cost a little extra waiting.
const lockStripes = 64

type submissionFlow interface {
	HasSession(userID int64) bool
	Start(ctx context.Context, userID int64, displayName string) error
	HandleAction(ctx context.Context, userID int64, action dto.Action) error
	HandleMessage(ctx context.Context, event dto.Event) error
}

type moderationFlow interface {
	IsAdmin(id int64) bool
	HasPendingEdit(adminID int64) bool
	ApplyEdit(ctx context.Context, adminID int64, input string) error
	Open(ctx context.Context, adminID, id int64) (*dto.ModerationItem, error)
	Approve(ctx context.Context, adminID, id int64) error
	Reject(ctx context.Context, adminID, id int64) error
	Delete(ctx context.Context, adminID, id int64) error
	BeginEdit(ctx context.Context, adminID, reviewID int64, field models.EditField) error
	ListApproved(ctx context.Context, limit int) ([]dto.ReviewView, error)
}

// Dispatcher routes decoded transport events into the submission and
// moderation flows. Events for the same user are handled one at a
// time; different users proceed in parallel.
type Dispatcher struct {
	submission submissionFlow
	moderation moderationFlow
	presenter  service.Presenter
	metrics    *service.MetricsService
	logger     *zap.Logger
	listLimit  int

	locks [lockStripes]sync.Mutex
}

// New constructs a Dispatcher.
func New(submission submissionFlow, moderation moderationFlow, presenter service.Presenter, metrics *service.MetricsService, logger *zap.Logger, listLimit int) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if listLimit <= 0 {
		listLimit = 10
	}
	return &Dispatcher{
		submission: submission,
		moderation: moderation,
		presenter:  presenter,
		metrics:    metrics,
		logger:     logger,
		listLimit:  listLimit,
	}
}

// Dispatch handles one inbound event to completion.
func (d *Dispatcher) Dispatch(ctx context.Context, event dto.Event) error {
	d.metrics.RecordEvent(string(event.Kind))

	stripe := &d.locks[uint64(event.UserID)%lockStripes]
	stripe.Lock()
	defer stripe.Unlock()

	switch event.Kind {
	case dto.EventCallback:
		return d.dispatchCallback(ctx, event)
	case dto.EventText, dto.EventMedia:
		return d.dispatchMessage(ctx, event)
	}

	d.logger.Warn("dropping event of unknown kind",
		zap.String("kind", string(event.Kind)), zap.Int64("user_id", event.UserID))
	return nil
}

// dispatchMessage routes free-form input. An admin with an edit in
// progress gets their text consumed by the edit before anything else.
func (d *Dispatcher) dispatchMessage(ctx context.Context, event dto.Event) error {
	if event.Kind == dto.EventText && d.moderation.IsAdmin(event.UserID) && d.moderation.HasPendingEdit(event.UserID) {
		return d.moderation.ApplyEdit(ctx, event.UserID, event.Text)
	}

	if !d.submission.HasSession(event.UserID) {
		d.sendMainMenu(ctx, event.UserID)
		return nil
	}
	return d.submission.HandleMessage(ctx, event)
}

func (d *Dispatcher) dispatchCallback(ctx context.Context, event dto.Event) error {
	if mod := dto.ParseModerationCallback(event.Callback); mod.Kind != dto.ModActionNone {
		return d.dispatchModeration(ctx, event.UserID, mod)
	}

	action := dto.ParseCallback(event.Callback)
	switch action.Kind {
	case dto.ActionNone:
		d.logger.Warn("unknown callback payload",
			zap.String("payload", event.Callback), zap.Int64("user_id", event.UserID))
		d.presenter.Notify(ctx, event.UserID, msgUnknownAction)
		return nil

	case dto.ActionStartReview:
		return d.submission.Start(ctx, event.UserID, event.DisplayName)

	case dto.ActionMainMenu:
		d.sendMainMenu(ctx, event.UserID)
		return nil

	case dto.ActionListReviews:
		return d.sendApprovedList(ctx, event.UserID)
	}

	return d.submission.HandleAction(ctx, event.UserID, action)
}

func (d *Dispatcher) dispatchModeration(ctx context.Context, userID int64, action dto.ModerationAction) error {
	switch action.Kind {
	case dto.ModActionOpen:
		item, err := d.moderation.Open(ctx, userID, action.ReviewID)
		if err != nil {
			return err
		}
		_, err = d.presenter.SendPrompt(ctx, userID, dto.Prompt{
			Text:       formatModerationItem(item),
			ModActions: []dto.ModerationActionKind{dto.ModActionApprove, dto.ModActionReject, dto.ModActionEditField, dto.ModActionDelete},
			ReviewID:   item.ID,
		})
		return err

	case dto.ModActionApprove:
		return d.moderation.Approve(ctx, userID, action.ReviewID)
	case dto.ModActionReject:
		return d.moderation.Reject(ctx, userID, action.ReviewID)
	case dto.ModActionDelete:
		return d.moderation.Delete(ctx, userID, action.ReviewID)
	case dto.ModActionEditField:
		return d.moderation.BeginEdit(ctx, userID, action.ReviewID, action.Field)
	}
	return nil
}

func (d *Dispatcher) sendMainMenu(ctx context.Context, userID int64) {
	if _, err := d.presenter.SendPrompt(ctx, userID, dto.Prompt{
		Text:    msgMainMenu,
		Actions: []dto.ActionKind{dto.ActionStartReview, dto.ActionListReviews},
	}); err != nil {
		d.logger.Warn("failed to send main menu", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (d *Dispatcher) sendApprovedList(ctx context.Context, userID int64) error {
	views, err := d.moderation.ListApproved(ctx, d.listLimit)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		d.presenter.Notify(ctx, userID, msgNoReviews)
		return nil
	}

	var b strings.Builder
	for i, view := range views {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s - %d/5\n%s", view.Author, view.Rating, view.Text)
	}
	_, err = d.presenter.SendPrompt(ctx, userID, dto.Prompt{
		Text:    b.String(),
		Actions: []dto.ActionKind{dto.ActionStartReview, dto.ActionMainMenu},
	})
	return err
}

func formatModerationItem(item *dto.ModerationItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review #%d - %d/5 (%s)\nFrom: %s\n\n%s", item.ID, item.Rating, item.Status, item.Author, item.Text)
	if n := len(item.Attachments); n > 0 {
		fmt.Fprintf(&b, "\n\nAttachments: %d", n)
	}
	return b.String()
}
