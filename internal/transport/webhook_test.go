package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/review-bot-api/internal/dto"
)

func TestSendPromptReturnsRef(t *testing.T) {
	var got outboundMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ref":"msg-42"}`))
	}))
	defer server.Close()

	presenter := NewWebhookPresenter(server.URL, time.Second, nil)
	ref, err := presenter.SendPrompt(context.Background(), 100, dto.Prompt{
		Text:    "Rate your experience from 1 to 5 stars:",
		Actions: []dto.ActionKind{dto.ActionRate, dto.ActionCancel},
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-42", string(ref))
	assert.Equal(t, int64(100), got.UserID)
	assert.Equal(t, []dto.ActionKind{dto.ActionRate, dto.ActionCancel}, got.Actions)
}

func TestSendPromptServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bridge down", http.StatusBadGateway)
	}))
	defer server.Close()

	presenter := NewWebhookPresenter(server.URL, time.Second, nil)
	_, err := presenter.SendPrompt(context.Background(), 100, dto.Prompt{Text: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http=502")
}

func TestRemovePrompt(t *testing.T) {
	var got outboundRemoval
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages/delete", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	presenter := NewWebhookPresenter(server.URL, time.Second, nil)
	require.NoError(t, presenter.RemovePrompt(context.Background(), 100, "msg-42"))
	assert.Equal(t, "msg-42", string(got.Ref))
}

func TestNotifySwallowsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	presenter := NewWebhookPresenter(server.URL, time.Second, nil)
	presenter.Notify(context.Background(), 100, "text that will not arrive")
}
