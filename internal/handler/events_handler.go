package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/review-bot-api/internal/dto"
	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
	"github.com/noah-isme/review-bot-api/pkg/response"
)

type eventDispatcher interface {
	Dispatch(ctx context.Context, event dto.Event) error
}

// EventsHandler receives decoded chat events from the transport bridge.
type EventsHandler struct {
	dispatcher eventDispatcher
}

// NewEventsHandler constructs EventsHandler.
func NewEventsHandler(dispatcher eventDispatcher) *EventsHandler {
	return &EventsHandler{dispatcher: dispatcher}
}

// Receive handles one inbound event synchronously. The bridge retries
// on 5xx, so handler errors other than validation surface as 500s.
func (h *EventsHandler) Receive(c *gin.Context) {
	var event dto.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	if err := h.dispatcher.Dispatch(c.Request.Context(), event); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"status": "accepted"}, nil)
}
