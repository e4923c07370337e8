package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/enums"
	"github.com/kova98/footroll.api/matchers"
	"github.com/kova98/footroll.api/metrics"
	"github.com/kova98/footroll.api/models"
	"github.com/kova98/footroll.api/sources"
)

// Controller handles operator button presses. Every press is answered, whatever
// happens while handling it.
type Controller struct {
	logger    *slog.Logger
	store     EventStore
	cache     *CacheManager
	messenger Messenger
	detector  *matchers.LanguageDetector
	now       func() time.Time
}

func NewController(logger *slog.Logger, store EventStore, cache *CacheManager, messenger Messenger, detector *matchers.LanguageDetector) *Controller {
	return &Controller{
		logger:    logger,
		store:     store,
		cache:     cache,
		messenger: messenger,
		detector:  detector,
		now:       time.Now,
	}
}

func (c *Controller) HandleCallback(ctx context.Context, cb models.Callback) {
	action := ParseAction(cb.Data)
	ack := "Unknown action"

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("callback handler panicked", "panic", r, "data", cb.Data)
			ack = "Something went wrong"
		}
		if err := c.messenger.AnswerCallback(ctx, cb.ID, ack); err != nil {
			c.logger.Error("failed to answer callback", "error", err, "callback_id", cb.ID)
		}
	}()

	label := string(action.Kind)
	if action.Kind == enums.ActionUnknown {
		label = "unknown"
	}
	metrics.CallbackActions.WithLabelValues(label).Inc()

	ack = c.handle(ctx, action, cb)
}

func (c *Controller) handle(ctx context.Context, action Action, cb models.Callback) string {
	if action.Kind == enums.ActionUnknown {
		return "Unknown action"
	}

	event, err := c.store.Get(ctx, action.EventID)
	if err != nil {
		c.logger.Error("failed to load event", "error", err, "event_id", action.EventID)
		return "Storage error"
	}
	if event == nil {
		return "Event not found"
	}
	if event.Status.IsTerminal() {
		return "Already " + strings.ToLower(string(event.Status))
	}

	ref := messageRef(*event, cb)
	provider := action.Kind.Provider()

	switch action.Kind {
	case enums.ActionSearchVideo, enums.ActionSearchPost:
		return c.search(ctx, *event, ref, provider)
	case enums.ActionMoreVideo, enums.ActionMorePost:
		return c.more(ctx, *event, ref, provider, action.Page())
	case enums.ActionPickVideo, enums.ActionPickPost:
		return c.pick(ctx, *event, provider, action.ResultID)
	case enums.ActionBack:
		return c.back(ctx, *event, ref)
	case enums.ActionSkip:
		return c.skip(ctx, *event)
	case enums.ActionUnknown:
	}

	return "Unknown action"
}

func (c *Controller) search(ctx context.Context, event data.MatchEvent, ref models.SentMessage, provider enums.Provider) string {
	event, cache, err := c.cache.GetOrRefresh(ctx, event, provider)
	if err != nil {
		return searchFailure(err)
	}

	if len(cache.Results) == 0 {
		text, keyboard, err := renderEmpty(event, provider)
		if err != nil {
			c.logger.Error("failed to render empty results", "error", err, "event_id", event.ID)
			return "Render error"
		}
		c.edit(ctx, ref, text, keyboard)
		return "Nothing found"
	}

	return c.showPage(ctx, event, ref, provider, cache, 0)
}

func (c *Controller) more(ctx context.Context, event data.MatchEvent, ref models.SentMessage, provider enums.Provider, page int) string {
	cache := event.Cache(provider)
	if cache == nil {
		return c.search(ctx, event, ref, provider)
	}

	if page*PageSize >= len(cache.Results) {
		var err error
		event, cache, err = c.cache.Extend(ctx, event, provider)
		if errors.Is(err, ErrNoMoreResults) {
			return "No more results"
		}
		if err != nil {
			return searchFailure(err)
		}
		if page*PageSize >= len(cache.Results) {
			c.showPage(ctx, event, ref, provider, cache, page)
			return "No more results"
		}
	}

	return c.showPage(ctx, event, ref, provider, cache, page)
}

func (c *Controller) showPage(ctx context.Context, event data.MatchEvent, ref models.SentMessage, provider enums.Provider, cache *data.ProviderCache, page int) string {
	text, keyboard, err := renderResults(event, provider, cache, page, c.detector, c.now())
	if err != nil {
		c.logger.Error("failed to render results", "error", err, "event_id", event.ID)
		return "Render error"
	}
	if !c.edit(ctx, ref, text, keyboard) {
		return "Could not update message"
	}
	return fmt.Sprintf("%s: %d found", provider.Label(), len(cache.Results))
}

func (c *Controller) pick(ctx context.Context, event data.MatchEvent, provider enums.Provider, resultID string) string {
	result, ok := event.Cache(provider).Find(resultID)
	if !ok {
		c.logger.Info("picked result not in cache", "event_id", event.ID, "result_id", resultID)
		return "Not found in cache"
	}

	approval := data.Approval{
		Source:     provider,
		ExternalID: result.ExternalID,
		URL:        result.URL,
		Title:      result.Title,
		ApprovedAt: c.now().UTC(),
	}
	updated, err := c.store.Upsert(ctx, data.MatchEvent{
		DedupeKey: event.DedupeKey,
		Status:    enums.EventStatusApproved,
		Approved:  &approval,
	})
	if err != nil {
		c.logger.Error("failed to approve event", "error", err, "event_id", event.ID)
		return "Storage error"
	}

	text, err := renderApproved(updated, approval)
	if err != nil {
		c.logger.Error("failed to render approval", "error", err, "event_id", event.ID)
		return "Approved"
	}
	if _, err := c.messenger.Send(ctx, text, nil); err != nil {
		c.logger.Error("failed to send approval", "error", err, "event_id", event.ID)
		return "Approved, confirmation failed"
	}

	c.logger.Info("event approved", "event_id", event.ID, "source", provider, "external_id", result.ExternalID)
	return "Approved"
}

func (c *Controller) back(ctx context.Context, event data.MatchEvent, ref models.SentMessage) string {
	if event.OriginalText == "" {
		return "Original message unavailable"
	}
	if !c.edit(ctx, ref, event.OriginalText, InitialKeyboard(event.ID)) {
		return "Could not update message"
	}
	return "Back"
}

func (c *Controller) skip(ctx context.Context, event data.MatchEvent) string {
	_, err := c.store.Upsert(ctx, data.MatchEvent{DedupeKey: event.DedupeKey, Status: enums.EventStatusSkipped})
	if err != nil {
		c.logger.Error("failed to skip event", "error", err, "event_id", event.ID)
		return "Storage error"
	}
	return "Skipped"
}

func (c *Controller) edit(ctx context.Context, ref models.SentMessage, text string, keyboard models.Keyboard) bool {
	if ref.MessageID == 0 {
		c.logger.Warn("no message to edit", "chat_id", ref.ChatID)
		return false
	}
	if err := c.messenger.Edit(ctx, ref, text, keyboard); err != nil {
		c.logger.Error("failed to edit message", "error", err, "message_id", ref.MessageID)
		return false
	}
	return true
}

// messageRef prefers the message recorded on the event and falls back to the
// message the button was pressed on.
func messageRef(event data.MatchEvent, cb models.Callback) models.SentMessage {
	if event.MessageID != 0 {
		return models.SentMessage{ChatID: event.ChatID, MessageID: event.MessageID}
	}
	return models.SentMessage{ChatID: cb.ChatID, MessageID: cb.MessageID}
}

func searchFailure(err error) string {
	if errors.Is(err, sources.ErrMissingAPIKey) {
		return "Search is not configured"
	}
	return "Search error"
}
