// internal/infra/telegram/channel.go
package telegram

import (
	"context"
	"fmt"

	"gopkg.in/telebot.v3"

	"wellbeing_alert_bot/internal/domain/delivery"
	"wellbeing_alert_bot/internal/domain/roster"
)

// TelebotChannel implements the delivery channel using the
// gopkg.in/telebot.v3 library. This keeps the scheduler decoupled from the
// specific bot library.
type TelebotChannel struct {
	bot *telebot.Bot
}

var _ delivery.Channel = (*TelebotChannel)(nil)

func NewTelebotChannel(b *telebot.Bot) *TelebotChannel {
	return &TelebotChannel{bot: b}
}

func (t *TelebotChannel) ID() string { return "telegram" }

// Send delivers one message to the recipient's direct chat.
func (t *TelebotChannel) Send(_ context.Context, rcpt roster.Recipient, subject, body string) error {
	if !rcpt.TelegramID.Valid {
		return delivery.ErrNoAddress
	}
	recipient := &telebot.User{ID: rcpt.TelegramID.Int64}
	text := subject + "\n\n" + body
	if _, err := t.bot.Send(recipient, text, &telebot.SendOptions{}); err != nil {
		return fmt.Errorf("telegram send to chat %d: %w", rcpt.TelegramID.Int64, err)
	}
	return nil
}
