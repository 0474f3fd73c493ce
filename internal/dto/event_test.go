package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/review-bot-api/internal/models"
)

func TestParseCallbackFixedGrammar(t *testing.T) {
	cases := map[string]ActionKind{
		"leave_review":       ActionStartReview,
		"confirm_review":     ActionConfirm,
		"cancel_review":      ActionCancel,
		"attach_yes":         ActionAttachYes,
		"write_text":         ActionWriteText,
		"skip_voice_caption": ActionSkipCaption,
		"list_reviews":       ActionListReviews,
		"main_menu":          ActionMainMenu,
	}
	for payload, want := range cases {
		assert.Equal(t, want, ParseCallback(payload).Kind, payload)
	}
}

func TestParseCallbackRating(t *testing.T) {
	action := ParseCallback("rate_4")
	assert.Equal(t, ActionRate, action.Kind)
	assert.Equal(t, 4, action.Rating)
}

func TestParseCallbackUnknown(t *testing.T) {
	assert.Equal(t, ActionNone, ParseCallback("rate_x").Kind)
	assert.Equal(t, ActionNone, ParseCallback("approve_7").Kind)
	assert.Equal(t, ActionNone, ParseCallback("").Kind)
}

func TestParseModerationCallback(t *testing.T) {
	action := ParseModerationCallback("approve_12")
	assert.Equal(t, ModActionApprove, action.Kind)
	assert.Equal(t, int64(12), action.ReviewID)

	action = ParseModerationCallback("edit_field_7_rating")
	assert.Equal(t, ModActionEditField, action.Kind)
	assert.Equal(t, int64(7), action.ReviewID)
	assert.Equal(t, models.EditFieldRating, action.Field)

	assert.Equal(t, ModActionNone, ParseModerationCallback("edit_field_7_colour").Kind)
	assert.Equal(t, ModActionNone, ParseModerationCallback("approve_abc").Kind)
	assert.Equal(t, ModActionNone, ParseModerationCallback("confirm_review").Kind)
}

func TestIsDoneToken(t *testing.T) {
	assert.True(t, IsDoneToken("done"))
	assert.True(t, IsDoneToken("  Готово "))
	assert.False(t, IsDoneToken("finished"))
}
