package notifiers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kova98/footroll.api/models"
)

// Telegram posts HTML messages with inline keyboards to a single chat.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

func NewTelegram(logger *slog.Logger, client *http.Client, token string, chatID int64) (*Telegram, error) {
	return NewTelegramWithEndpoint(logger, client, token, tgbotapi.APIEndpoint, chatID)
}

// NewTelegramWithEndpoint validates the token with getMe against the given API endpoint.
func NewTelegramWithEndpoint(logger *slog.Logger, client *http.Client, token, endpoint string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	logger.Info("telegram bot authorized", "username", api.Self.UserName)

	return &Telegram{api: api, chatID: chatID, logger: logger}, nil
}

func (t *Telegram) Send(ctx context.Context, text string, keyboard models.Keyboard) (models.SentMessage, error) {
	if err := ctx.Err(); err != nil {
		return models.SentMessage{}, err
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup := toMarkup(keyboard); markup != nil {
		msg.ReplyMarkup = *markup
	}

	sent, err := t.api.Send(msg)
	if err != nil {
		return models.SentMessage{}, fmt.Errorf("send telegram message: %w", err)
	}

	return models.SentMessage{ChatID: sent.Chat.ID, MessageID: sent.MessageID}, nil
}

// Edit replaces text and keyboard of a posted message. A nil keyboard removes it.
func (t *Telegram) Edit(ctx context.Context, ref models.SentMessage, text string, keyboard models.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = toMarkup(keyboard)

	if _, err := t.api.Request(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			t.logger.Debug("telegram message not modified", "message_id", ref.MessageID)
			return nil
		}
		return fmt.Errorf("edit telegram message: %w", err)
	}

	return nil
}

func (t *Telegram) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := t.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer telegram callback: %w", err)
	}

	return nil
}

// CallbackFromUpdate extracts the button press of an update, if any.
func CallbackFromUpdate(update tgbotapi.Update) (models.Callback, bool) {
	q := update.CallbackQuery
	if q == nil {
		return models.Callback{}, false
	}

	cb := models.Callback{ID: q.ID, Data: q.Data}
	if q.Message != nil {
		cb.MessageID = q.Message.MessageID
		if q.Message.Chat != nil {
			cb.ChatID = q.Message.Chat.ID
		}
	}
	return cb, true
}

func toMarkup(keyboard models.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(keyboard) == 0 {
		return nil
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Action))
		}
		if len(buttons) > 0 {
			rows = append(rows, buttons)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}
