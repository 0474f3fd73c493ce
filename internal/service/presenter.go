package service

import (
	"context"

	"github.com/noah-isme/review-bot-api/internal/dto"
	"github.com/noah-isme/review-bot-api/internal/models"
)

// Presenter is the conversation rendering collaborator. It owns every
// platform-specific concern: button markup, media captions, message
// formatting. This core hands it semantic prompts only.
//
// SendPrompt and RemovePrompt together carry the single-live-message
// contract: callers remove the previous live prompt before sending the
// next one. A failed removal is a cosmetic defect, never a reason to
// stop the conversation.
type Presenter interface {
	SendPrompt(ctx context.Context, userID int64, prompt dto.Prompt) (models.MessageRef, error)
	RemovePrompt(ctx context.Context, userID int64, ref models.MessageRef) error

	// Notify delivers a plain informational message. It is fire and
	// forget; implementations log failures and return nothing.
	Notify(ctx context.Context, userID int64, text string)
}
