package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
)

func TestAttachmentSetAppendCapacity(t *testing.T) {
	var set AttachmentSet
	require.NoError(t, set.Append(KindPhoto, "f1"))
	require.NoError(t, set.Append(KindVideo, "f2"))
	require.NoError(t, set.Append(KindDocument, "f3"))

	err := set.Append(KindPhoto, "f4")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrAttachmentLimit)
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, 0, set.Remaining())
}

func TestAttachmentSetEncodeOrder(t *testing.T) {
	var set AttachmentSet
	require.NoError(t, set.Append(KindVideoNote, "abc"))
	require.NoError(t, set.Append(KindVoice, "def"))
	assert.Equal(t, "video_note:abc,voice:def", set.Encode())
}

func TestAttachmentSetEncodeEmpty(t *testing.T) {
	var set AttachmentSet
	assert.Equal(t, "", set.Encode())
}

func TestDecodeAttachmentsRoundTrip(t *testing.T) {
	var set AttachmentSet
	require.NoError(t, set.Append(KindPhoto, "file-1"))
	require.NoError(t, set.Append(KindVoice, "file-2"))
	require.NoError(t, set.Append(KindVideoNote, "file-3"))

	decoded, skipped := DecodeAttachments(set.Encode())
	assert.Zero(t, skipped)
	assert.Equal(t, set.Items(), decoded.Items())
}

func TestDecodeAttachmentsSkipsMalformedSegments(t *testing.T) {
	decoded, skipped := DecodeAttachments("photo:f1,garbage,video:f2")
	assert.Equal(t, 1, skipped)
	require.Equal(t, 2, decoded.Len())
	items := decoded.Items()
	assert.Equal(t, KindPhoto, items[0].Kind)
	assert.Equal(t, "f2", items[1].Ref)
}

func TestDecodeAttachmentsUnknownKindRoundTrips(t *testing.T) {
	decoded, skipped := DecodeAttachments("sticker:f9")
	assert.Zero(t, skipped)
	require.Equal(t, 1, decoded.Len())
	assert.False(t, decoded.Items()[0].Kind.Known())
	assert.Equal(t, "sticker:f9", decoded.Encode())
}

func TestAttachmentRefsWithColons(t *testing.T) {
	decoded, skipped := DecodeAttachments("document:a:b:c")
	assert.Zero(t, skipped)
	require.Equal(t, 1, decoded.Len())
	assert.Equal(t, "a:b:c", decoded.Items()[0].Ref)
}

func TestHasVoice(t *testing.T) {
	var set AttachmentSet
	require.NoError(t, set.Append(KindPhoto, "f1"))
	assert.False(t, set.HasVoice())
	require.NoError(t, set.Append(KindVoice, "f2"))
	assert.True(t, set.HasVoice())
}
