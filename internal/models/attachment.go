package models

import (
	"strings"

	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
)

// AttachmentKind classifies a media reference by the transport media type.
type AttachmentKind string

const (
	KindPhoto     AttachmentKind = "photo"
	KindVideo     AttachmentKind = "video"
	KindDocument  AttachmentKind = "document"
	KindAudio     AttachmentKind = "audio"
	KindVoice     AttachmentKind = "voice"
	KindVideoNote AttachmentKind = "video_note"
)

// Known reports whether the kind is one of the recognized media types.
// Unknown kinds still round-trip through encoding; renderers treat them
// as generic documents.
func (k AttachmentKind) Known() bool {
	switch k {
	case KindPhoto, KindVideo, KindDocument, KindAudio, KindVoice, KindVideoNote:
		return true
	}
	return false
}

// Attachment is a typed, opaque media reference.
type Attachment struct {
	Kind AttachmentKind `json:"kind"`
	Ref  string         `json:"ref"`
}

// MaxAttachments caps the attachment count for a single review.
const MaxAttachments = 3

// AttachmentSet is an ordered collection of at most MaxAttachments items.
type AttachmentSet struct {
	items []Attachment
}

// NewAttachmentSet builds a set from items, keeping at most MaxAttachments.
func NewAttachmentSet(items ...Attachment) AttachmentSet {
	if len(items) > MaxAttachments {
		items = items[:MaxAttachments]
	}
	set := AttachmentSet{items: make([]Attachment, len(items))}
	copy(set.items, items)
	return set
}

// Append adds one attachment, preserving order. It fails once the set
// holds MaxAttachments items; there is no partial append.
func (s *AttachmentSet) Append(kind AttachmentKind, ref string) error {
	if len(s.items) >= MaxAttachments {
		return appErrors.ErrAttachmentLimit
	}
	s.items = append(s.items, Attachment{Kind: kind, Ref: ref})
	return nil
}

// Len returns the number of attachments held.
func (s *AttachmentSet) Len() int {
	return len(s.items)
}

// Remaining returns how many more attachments the set accepts.
func (s *AttachmentSet) Remaining() int {
	return MaxAttachments - len(s.items)
}

// Items returns a copy of the ordered attachments.
func (s *AttachmentSet) Items() []Attachment {
	out := make([]Attachment, len(s.items))
	copy(out, s.items)
	return out
}

// HasVoice reports whether the set contains a voice attachment.
func (s *AttachmentSet) HasVoice() bool {
	for _, a := range s.items {
		if a.Kind == KindVoice {
			return true
		}
	}
	return false
}

// Encode flattens the set to the persisted "kind:ref,kind:ref" form,
// preserving order. An empty set encodes to "".
func (s *AttachmentSet) Encode() string {
	if len(s.items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(s.items))
	for _, a := range s.items {
		if a.Kind == "" || a.Ref == "" {
			continue
		}
		parts = append(parts, string(a.Kind)+":"+a.Ref)
	}
	return strings.Join(parts, ",")
}

// DecodeAttachments parses the persisted form back into an ordered set.
// Segments without a kind/ref separator are skipped rather than failing
// the whole decode; skipped returns how many were dropped so callers can
// log possible corruption.
func DecodeAttachments(encoded string) (set AttachmentSet, skipped int) {
	if encoded == "" {
		return AttachmentSet{}, 0
	}
	for _, seg := range strings.Split(encoded, ",") {
		if seg == "" {
			continue
		}
		kind, ref, ok := strings.Cut(seg, ":")
		if !ok || kind == "" || ref == "" {
			skipped++
			continue
		}
		if len(set.items) < MaxAttachments {
			set.items = append(set.items, Attachment{Kind: AttachmentKind(kind), Ref: ref})
		}
	}
	return set, skipped
}
