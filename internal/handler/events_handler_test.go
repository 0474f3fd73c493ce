package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/review-bot-api/internal/dto"
	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
)

type dispatcherMock struct {
	events []dto.Event
	err    error
}

func (m *dispatcherMock) Dispatch(ctx context.Context, event dto.Event) error {
	m.events = append(m.events, event)
	return m.err
}

func TestEventsHandlerReceive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockDispatcher := &dispatcherMock{}
	handler := NewEventsHandler(mockDispatcher)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := []byte(`{"kind":"callback","userId":100,"callback":"rate_5"}`)
	req, _ := http.NewRequest(http.MethodPost, "/v1/transport/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Receive(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, mockDispatcher.events, 1)
	assert.Equal(t, dto.EventCallback, mockDispatcher.events[0].Kind)
	assert.Equal(t, "rate_5", mockDispatcher.events[0].Callback)
}

func TestEventsHandlerReceiveInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockDispatcher := &dispatcherMock{}
	handler := NewEventsHandler(mockDispatcher)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/v1/transport/events", bytes.NewBufferString(`{"kind":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Receive(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mockDispatcher.events)
}

func TestEventsHandlerDispatchErrorMapsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockDispatcher := &dispatcherMock{err: appErrors.ErrQuotaExceeded}
	handler := NewEventsHandler(mockDispatcher)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := []byte(`{"kind":"callback","userId":100,"callback":"confirm_review"}`)
	req, _ := http.NewRequest(http.MethodPost, "/v1/transport/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Receive(c)
	require.Equal(t, http.StatusConflict, w.Code)
}
