// Package telegram sends operator alerts to a Telegram chat.
package telegram

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram rejects messages longer than this many characters.
const maxMessageLen = 4096

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Alerter posts short text alerts to a single chat.
type Alerter struct {
	api    telegramAPI
	chatID int64
	log    *slog.Logger
}

// New creates an Alerter with the given bot token. It contacts the Telegram
// API to validate the token.
func New(token string, chatID int64, log *slog.Logger) (*Alerter, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Alerter{api: api, chatID: chatID, log: log}, nil
}

// Alert sends text to the configured chat. Delivery failures are logged and
// otherwise ignored.
func (a *Alerter) Alert(text string) {
	msg := tgbotapi.NewMessage(a.chatID, truncate(text))
	msg.DisableWebPagePreview = true
	if _, err := a.api.Send(msg); err != nil {
		a.log.Error("send alert", "chat_id", a.chatID, "error", err)
	}
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxMessageLen-1]) + "…"
}
