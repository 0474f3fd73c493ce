package dto

import (
	"strconv"
	"strings"

	"github.com/noah-isme/review-bot-api/internal/models"
)

// EventKind classifies an inbound transport event.
type EventKind string

const (
	EventText     EventKind = "text"
	EventMedia    EventKind = "media"
	EventCallback EventKind = "callback"
)

// MediaItem is one media reference carried by an inbound event.
type MediaItem struct {
	Kind models.AttachmentKind `json:"kind" binding:"required"`
	Ref  string                `json:"ref" binding:"required"`
}

// Event is a decoded inbound chat event from the transport bridge.
// Media events may carry a caption in Text and several media items at
// once (an album).
type Event struct {
	Kind        EventKind   `json:"kind" binding:"required"`
	UserID      int64       `json:"userId" binding:"required"`
	DisplayName string      `json:"displayName"`
	Text        string      `json:"text"`
	Media       []MediaItem `json:"media"`
	Callback    string      `json:"callback"`
}

// ActionKind is the closed set of semantic actions a user can take on a
// prompt. Callback payloads and the few free-text tokens all parse into
// this enum; handlers never compare raw strings.
type ActionKind string

const (
	ActionNone        ActionKind = ""
	ActionStartReview ActionKind = "start_review"
	ActionRate        ActionKind = "rate"
	ActionAttachYes   ActionKind = "attach_yes"
	ActionWriteText   ActionKind = "write_text"
	ActionConfirm     ActionKind = "confirm"
	ActionCancel      ActionKind = "cancel"
	ActionSkipCaption ActionKind = "skip_caption"
	ActionListReviews ActionKind = "list_reviews"
	ActionMainMenu    ActionKind = "main_menu"
)

// Action is a parsed user action; Rating is set only for ActionRate.
type Action struct {
	Kind   ActionKind
	Rating int
}

// callbackActions is the fixed grammar mapping callback payloads to
// actions. Rating callbacks are handled separately because they carry a
// value.
var callbackActions = map[string]ActionKind{
	"leave_review":       ActionStartReview,
	"attach_yes":         ActionAttachYes,
	"write_text":         ActionWriteText,
	"confirm_review":     ActionConfirm,
	"cancel_review":      ActionCancel,
	"skip_voice_caption": ActionSkipCaption,
	"list_reviews":       ActionListReviews,
	"main_menu":          ActionMainMenu,
}

// ParseCallback maps a callback payload onto the action enum. Unknown
// payloads produce ActionNone rather than an error; the dispatcher
// ignores them.
func ParseCallback(payload string) Action {
	if kind, ok := callbackActions[payload]; ok {
		return Action{Kind: kind}
	}
	if rest, ok := strings.CutPrefix(payload, "rate_"); ok {
		if n, err := strconv.Atoi(rest); err == nil {
			return Action{Kind: ActionRate, Rating: n}
		}
	}
	return Action{Kind: ActionNone}
}

// doneTokens are the free-text equivalents of the confirm button.
var doneTokens = map[string]struct{}{
	"done":   {},
	"готово": {},
}

// IsDoneToken reports whether free text is a confirm token.
func IsDoneToken(text string) bool {
	_, ok := doneTokens[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// ModerationActionKind is the closed set of admin actions arriving as
// callback events.
type ModerationActionKind string

const (
	ModActionNone      ModerationActionKind = ""
	ModActionOpen      ModerationActionKind = "open"
	ModActionApprove   ModerationActionKind = "approve"
	ModActionReject    ModerationActionKind = "reject"
	ModActionDelete    ModerationActionKind = "delete"
	ModActionEditField ModerationActionKind = "edit_field"
)

// ModerationAction is a parsed admin callback; Field is set only for
// ModActionEditField.
type ModerationAction struct {
	Kind     ModerationActionKind
	ReviewID int64
	Field    models.EditField
}

// ParseModerationCallback maps admin callback payloads onto the
// moderation action enum. Unknown payloads produce ModActionNone.
func ParseModerationCallback(payload string) ModerationAction {
	if rest, ok := strings.CutPrefix(payload, "edit_field_"); ok {
		idPart, fieldPart, found := strings.Cut(rest, "_")
		if !found {
			return ModerationAction{}
		}
		id, err := strconv.ParseInt(idPart, 10, 64)
		field := models.EditField(fieldPart)
		if err != nil || !field.Valid() {
			return ModerationAction{}
		}
		return ModerationAction{Kind: ModActionEditField, ReviewID: id, Field: field}
	}

	prefixes := map[string]ModerationActionKind{
		"admin_review_": ModActionOpen,
		"approve_":      ModActionApprove,
		"reject_":       ModActionReject,
		"delete_":       ModActionDelete,
	}
	for prefix, kind := range prefixes {
		if rest, ok := strings.CutPrefix(payload, prefix); ok {
			if id, err := strconv.ParseInt(rest, 10, 64); err == nil {
				return ModerationAction{Kind: kind, ReviewID: id}
			}
		}
	}
	return ModerationAction{}
}

// Prompt is a semantic outbound message: display text plus the closed
// set of actions the user may take next. Rendering buttons and markup
// is entirely the transport collaborator's concern.
type Prompt struct {
	Text    string       `json:"text"`
	Actions []ActionKind `json:"actions,omitempty"`

	// ModActions and ReviewID are set on prompts addressed to
	// administrators; the transport renders them as review-scoped
	// moderation buttons.
	ModActions []ModerationActionKind `json:"modActions,omitempty"`
	ReviewID   int64                  `json:"reviewId,omitempty"`
}
