package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/review-bot-api/internal/dto"
	"github.com/noah-isme/review-bot-api/internal/models"
)

// WebhookPresenter delivers outbound chat messages through the
// transport bridge's webhook. The bridge owns the actual chat protocol;
// this side only speaks JSON over HTTP.
type WebhookPresenter struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebhookPresenter constructs a WebhookPresenter.
func NewWebhookPresenter(baseURL string, timeout time.Duration, logger *zap.Logger) *WebhookPresenter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookPresenter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type outboundMessage struct {
	UserID     int64                      `json:"userId"`
	Text       string                     `json:"text"`
	Actions    []dto.ActionKind           `json:"actions,omitempty"`
	ModActions []dto.ModerationActionKind `json:"modActions,omitempty"`
	ReviewID   int64                      `json:"reviewId,omitempty"`
}

type outboundRemoval struct {
	UserID int64             `json:"userId"`
	Ref    models.MessageRef `json:"ref"`
}

// SendPrompt posts an interactive message and returns the bridge's
// reference for it, used later to remove the superseded prompt.
func (p *WebhookPresenter) SendPrompt(ctx context.Context, userID int64, prompt dto.Prompt) (models.MessageRef, error) {
	raw, err := p.post(ctx, "/messages", outboundMessage{
		UserID:     userID,
		Text:       prompt.Text,
		Actions:    prompt.Actions,
		ModActions: prompt.ModActions,
		ReviewID:   prompt.ReviewID,
	})
	if err != nil {
		return "", err
	}

	var res struct {
		Ref models.MessageRef `json:"ref"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", fmt.Errorf("decode send response: %w", err)
	}
	return res.Ref, nil
}

// RemovePrompt asks the bridge to delete a previously sent message.
func (p *WebhookPresenter) RemovePrompt(ctx context.Context, userID int64, ref models.MessageRef) error {
	_, err := p.post(ctx, "/messages/delete", outboundRemoval{UserID: userID, Ref: ref})
	return err
}

// Notify sends a plain one-way message. Best effort: delivery failures
// are logged, never surfaced.
func (p *WebhookPresenter) Notify(ctx context.Context, userID int64, text string) {
	if _, err := p.post(ctx, "/notifications", outboundMessage{UserID: userID, Text: text}); err != nil {
		p.logger.Warn("notification delivery failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (p *WebhookPresenter) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("webhook returned http=%d body=%s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
