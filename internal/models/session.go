package models

// SessionState names a step of the guided submission conversation.
type SessionState string

const (
	StateAwaitingRating             SessionState = "awaiting_rating"
	StateAwaitingText               SessionState = "awaiting_text"
	StateAwaitingAttachmentDecision SessionState = "awaiting_attachment_decision"
	StateCollectingAttachments      SessionState = "collecting_attachments"
	StateAwaitingOptionalText       SessionState = "awaiting_optional_text"
	StateAwaitingVoiceCaption       SessionState = "awaiting_voice_caption"
)

// Session is the transient per-user submission state. It lives only in
// the process registry; losing it on restart just means the user starts
// over.
type Session struct {
	UserID      int64
	DisplayName string
	State       SessionState
	Rating      int
	Text        string
	Attachments AttachmentSet

	// LiveMessage is the handle of the most recent outbound prompt,
	// removed before the next prompt is shown.
	LiveMessage MessageRef
}

// MessageRef is an opaque handle to a rendered chat message, issued and
// consumed by the transport collaborator. The zero value means "none".
type MessageRef string

// EditField names a review field an admin may correct.
type EditField string

const (
	EditFieldText   EditField = "text"
	EditFieldRating EditField = "rating"
)

// Valid reports whether f names an editable field.
func (f EditField) Valid() bool {
	return f == EditFieldText || f == EditFieldRating
}

// PendingEdit marks an admin's in-progress single-field correction.
// At most one exists per admin; it is consumed by the admin's next
// message whether or not that message validates.
type PendingEdit struct {
	ReviewID int64
	Field    EditField
}
