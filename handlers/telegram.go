package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kova98/footroll.api/models"
	"github.com/kova98/footroll.api/notifiers"
)

const (
	secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"
	callbackTimeout   = 30 * time.Second
)

type CallbackHandler interface {
	HandleCallback(ctx context.Context, cb models.Callback)
}

type WebhookResponse struct {
	Handled bool `json:"handled"`
}

type TelegramHandler struct {
	callbacks CallbackHandler
	secret    string
}

// NewTelegramHandler builds the webhook intake. A nil callbacks handler means the
// tracker is not running.
func NewTelegramHandler(callbacks CallbackHandler, secret string) *TelegramHandler {
	return &TelegramHandler{callbacks: callbacks, secret: secret}
}

func (h *TelegramHandler) Webhook(w http.ResponseWriter, r *http.Request) Result {
	if h.callbacks == nil {
		return ServiceUnavailable("Live events tracker is not initialized")
	}
	if h.secret != "" {
		got := r.Header.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			return Unauthorized("Invalid secret token")
		}
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		return BadRequest("Invalid update.")
	}

	cb, ok := notifiers.CallbackFromUpdate(update)
	if !ok {
		slog.Debug("ignoring telegram update", "update_id", update.UpdateID)
		return Ok(WebhookResponse{Handled: false})
	}

	// The callback is answered even when Telegram drops the connection first.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), callbackTimeout)
	defer cancel()
	h.callbacks.HandleCallback(ctx, cb)

	return Ok(WebhookResponse{Handled: true})
}
