package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/review-bot-api/internal/dto"
	"github.com/noah-isme/review-bot-api/internal/models"
)

type submissionStub struct {
	hasSession bool
	started    []int64
	actions    []dto.Action
	messages   []dto.Event
}

func (s *submissionStub) HasSession(userID int64) bool { return s.hasSession }

func (s *submissionStub) Start(ctx context.Context, userID int64, displayName string) error {
	s.started = append(s.started, userID)
	return nil
}

func (s *submissionStub) HandleAction(ctx context.Context, userID int64, action dto.Action) error {
	s.actions = append(s.actions, action)
	return nil
}

func (s *submissionStub) HandleMessage(ctx context.Context, event dto.Event) error {
	s.messages = append(s.messages, event)
	return nil
}

type modCall struct {
	kind     string
	reviewID int64
}

type moderationStub struct {
	adminID     int64
	pendingEdit bool
	applied     []string
	calls       []modCall
	approvedSet []dto.ReviewView
	openItem    *dto.ModerationItem
}

func (s *moderationStub) IsAdmin(id int64) bool        { return id == s.adminID }
func (s *moderationStub) HasPendingEdit(id int64) bool { return s.pendingEdit }

func (s *moderationStub) ApplyEdit(ctx context.Context, adminID int64, input string) error {
	s.applied = append(s.applied, input)
	return nil
}

func (s *moderationStub) Open(ctx context.Context, adminID, id int64) (*dto.ModerationItem, error) {
	s.calls = append(s.calls, modCall{kind: "open", reviewID: id})
	return s.openItem, nil
}

func (s *moderationStub) Approve(ctx context.Context, adminID, id int64) error {
	s.calls = append(s.calls, modCall{kind: "approve", reviewID: id})
	return nil
}

func (s *moderationStub) Reject(ctx context.Context, adminID, id int64) error {
	s.calls = append(s.calls, modCall{kind: "reject", reviewID: id})
	return nil
}

func (s *moderationStub) Delete(ctx context.Context, adminID, id int64) error {
	s.calls = append(s.calls, modCall{kind: "delete", reviewID: id})
	return nil
}

func (s *moderationStub) BeginEdit(ctx context.Context, adminID, reviewID int64, field models.EditField) error {
	s.calls = append(s.calls, modCall{kind: "edit_" + string(field), reviewID: reviewID})
	return nil
}

func (s *moderationStub) ListApproved(ctx context.Context, limit int) ([]dto.ReviewView, error) {
	return s.approvedSet, nil
}

type sentPrompt struct {
	userID int64
	prompt dto.Prompt
}

type notice struct {
	userID int64
	text   string
}

type presenterStub struct {
	prompts []sentPrompt
	notices []notice
}

func (p *presenterStub) SendPrompt(ctx context.Context, userID int64, prompt dto.Prompt) (models.MessageRef, error) {
	p.prompts = append(p.prompts, sentPrompt{userID: userID, prompt: prompt})
	return "ref", nil
}

func (p *presenterStub) RemovePrompt(ctx context.Context, userID int64, ref models.MessageRef) error {
	return nil
}

func (p *presenterStub) Notify(ctx context.Context, userID int64, text string) {
	p.notices = append(p.notices, notice{userID: userID, text: text})
}

func newDispatcher(submission *submissionStub, moderation *moderationStub, presenter *presenterStub) *Dispatcher {
	return New(submission, moderation, presenter, nil, nil, 10)
}

func TestAdminPendingEditConsumesText(t *testing.T) {
	submission := &submissionStub{hasSession: true}
	moderation := &moderationStub{adminID: 1, pendingEdit: true}
	presenter := &presenterStub{}
	d := newDispatcher(submission, moderation, presenter)

	err := d.Dispatch(context.Background(), dto.Event{Kind: dto.EventText, UserID: 1, Text: "the corrected review text"})
	require.NoError(t, err)
	assert.Equal(t, []string{"the corrected review text"}, moderation.applied)
	assert.Empty(t, submission.messages)
}

func TestAdminMediaBypassesPendingEdit(t *testing.T) {
	submission := &submissionStub{hasSession: true}
	moderation := &moderationStub{adminID: 1, pendingEdit: true}
	presenter := &presenterStub{}
	d := newDispatcher(submission, moderation, presenter)

	err := d.Dispatch(context.Background(), dto.Event{Kind: dto.EventMedia, UserID: 1, Media: []dto.MediaItem{{Kind: models.KindPhoto, Ref: "f1"}}})
	require.NoError(t, err)
	assert.Empty(t, moderation.applied)
	assert.Len(t, submission.messages, 1)
}

func TestTextWithoutSessionShowsMainMenu(t *testing.T) {
	submission := &submissionStub{}
	moderation := &moderationStub{}
	presenter := &presenterStub{}
	d := newDispatcher(submission, moderation, presenter)

	require.NoError(t, d.Dispatch(context.Background(), dto.Event{Kind: dto.EventText, UserID: 100, Text: "hello"}))
	assert.Empty(t, submission.messages)
	require.Len(t, presenter.prompts, 1)
	assert.Equal(t, msgMainMenu, presenter.prompts[0].prompt.Text)
	assert.Contains(t, presenter.prompts[0].prompt.Actions, dto.ActionStartReview)
}

func TestTextWithSessionGoesToSubmission(t *testing.T) {
	submission := &submissionStub{hasSession: true}
	moderation := &moderationStub{}
	presenter := &presenterStub{}
	d := newDispatcher(submission, moderation, presenter)

	require.NoError(t, d.Dispatch(context.Background(), dto.Event{Kind: dto.EventText, UserID: 100, Text: "my review text goes here"}))
	require.Len(t, submission.messages, 1)
	assert.Equal(t, "my review text goes here", submission.messages[0].Text)
}

func TestCallbackRouting(t *testing.T) {
	submission := &submissionStub{hasSession: true}
	moderation := &moderationStub{adminID: 1}
	presenter := &presenterStub{}
	d := newDispatcher(submission, moderation, presenter)

	ctx := context.Background()
	require.NoError(t, d.Dispatch(ctx, dto.Event{Kind: dto.EventCallback, UserID: 100, Callback: "leave_review"}))
	assert.Equal(t, []int64{100}, submission.started)

	require.NoError(t, d.Dispatch(ctx, dto.Event{Kind: dto.EventCallback, UserID: 100, Callback: "rate_4"}))
	require.Len(t, submission.actions, 1)
	assert.Equal(t, dto.Action{Kind: dto.ActionRate, Rating: 4}, submission.actions[0])

	require.NoError(t, d.Dispatch(ctx, dto.Event{Kind: dto.EventCallback, UserID: 100, Callback: "cancel_review"}))
	assert.Equal(t, dto.ActionCancel, submission.actions[1].Kind)
}

func TestModerationCallbackRouting(t *testing.T) {
	submission := &submissionStub{}
	moderation := &moderationStub{adminID: 1}
	presenter := &presenterStub{}
	d := newDispatcher(submission, moderation, presenter)

	ctx := context.Background()
	require.NoError(t, d.Dispatch(ctx, dto.Event{Kind: dto.EventCallback, UserID: 1, Callback: "approve_7"}))
	require.NoError(t, d.Dispatch(ctx, dto.Event{Kind: dto.EventCallback, UserID: 1, Callback: "reject_8"}))
	require.NoError(t, d.Dispatch(ctx, dto.Event{Kind: dto.EventCallback, UserID: 1, Callback: "delete_9"}))
	require.NoError(t, d.Dispatch(ctx, dto.Event{Kind: dto.EventCallback, UserID: 1, Callback: "edit_field_7_rating"}))

	assert.Equal(t, []modCall{
		{kind: "approve", reviewID: 7},
		{kind: "reject", reviewID: 8},
		{kind: "delete", reviewID: 9},
		{kind: "edit_rating", reviewID: 7},
	}, moderation.calls)
	assert.Empty(t, submission.actions)
}

func TestOpenCallbackPresentsReview(t *testing.T) {
	submission := &submissionStub{}
	moderation := &moderationStub{
		adminID:  1,
		openItem: &dto.ModerationItem{ID: 7, Author: "alice", Rating: 5, Text: "lovely", Status: models.StatusPending},
	}
	presenter := &presenterStub{}
	d := newDispatcher(submission, moderation, presenter)

	require.NoError(t, d.Dispatch(context.Background(), dto.Event{Kind: dto.EventCallback, UserID: 1, Callback: "admin_review_7"}))
	require.Len(t, presenter.prompts, 1)
	assert.Equal(t, int64(7), presenter.prompts[0].prompt.ReviewID)
	assert.Contains(t, presenter.prompts[0].prompt.ModActions, dto.ModActionApprove)
}

func TestUnknownCallbackIsIgnored(t *testing.T) {
	submission := &submissionStub{hasSession: true}
	moderation := &moderationStub{}
	presenter := &presenterStub{}
	d := newDispatcher(submission, moderation, presenter)

	require.NoError(t, d.Dispatch(context.Background(), dto.Event{Kind: dto.EventCallback, UserID: 100, Callback: "bogus_payload"}))
	assert.Empty(t, submission.actions)
	require.Len(t, presenter.notices, 1)
	assert.Equal(t, msgUnknownAction, presenter.notices[0].text)
}

func TestListReviewsCallback(t *testing.T) {
	submission := &submissionStub{}
	moderation := &moderationStub{approvedSet: []dto.ReviewView{{ID: 1, Author: "alice", Rating: 5, Text: "splendid"}}}
	presenter := &presenterStub{}
	d := newDispatcher(submission, moderation, presenter)

	require.NoError(t, d.Dispatch(context.Background(), dto.Event{Kind: dto.EventCallback, UserID: 100, Callback: "list_reviews"}))
	require.Len(t, presenter.prompts, 1)
	assert.Contains(t, presenter.prompts[0].prompt.Text, "alice - 5/5")
}

func TestListReviewsEmpty(t *testing.T) {
	submission := &submissionStub{}
	moderation := &moderationStub{}
	presenter := &presenterStub{}
	d := newDispatcher(submission, moderation, presenter)

	require.NoError(t, d.Dispatch(context.Background(), dto.Event{Kind: dto.EventCallback, UserID: 100, Callback: "list_reviews"}))
	assert.Empty(t, presenter.prompts)
	require.Len(t, presenter.notices, 1)
	assert.Equal(t, msgNoReviews, presenter.notices[0].text)
}
