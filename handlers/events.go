package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/models"
)

type EventGetter interface {
	Get(ctx context.Context, id string) (*data.MatchEvent, error)
}

type Poller interface {
	PollOnce(ctx context.Context) models.PollResult
}

type EventsHandler struct {
	store  EventGetter
	poller Poller
}

// NewEventsHandler builds the admin event routes. A nil poller means the tracker
// is not running.
func NewEventsHandler(store EventGetter, poller Poller) *EventsHandler {
	return &EventsHandler{store: store, poller: poller}
}

func (h *EventsHandler) GetEvent(w http.ResponseWriter, r *http.Request) Result {
	id := r.PathValue("id")
	if id == "" {
		return BadRequest("Event id is required")
	}

	event, err := h.store.Get(r.Context(), id)
	if err != nil {
		return InternalError(err, "get event")
	}
	if event == nil {
		return NotFound("Event not found")
	}

	return Ok(event)
}

func (h *EventsHandler) PollLiveEvents(w http.ResponseWriter, r *http.Request) Result {
	if h.poller == nil {
		return ServiceUnavailable("Live events tracker is not initialized")
	}
	if operator, ok := r.Context().Value(OperatorContextKey).(models.Operator); ok {
		slog.Info("manual live events poll", "operator", operator.Name)
	}
	return Ok(h.poller.PollOnce(r.Context()))
}
