// internal/domain/delivery/channel.go
package delivery

import (
	"context"
	"errors"

	"wellbeing_alert_bot/internal/domain/roster"
)

// ErrNoAddress reports that a recipient carries no address this channel
// can use (no email for the email channel, no chat ID for Telegram). The
// scheduler treats it as a skip, not a delivery failure.
var ErrNoAddress = errors.New("recipient has no address for this channel")

// Channel abstracts one delivery mechanism (email, Telegram, console).
// The scheduler treats all channels uniformly.
type Channel interface {
	// ID is the stable identifier recorded against a pending notification
	// once delivery through this channel completes.
	ID() string
	Send(ctx context.Context, rcpt roster.Recipient, subject, body string) error
}

// Feedback is the in-app signal surface: immediate UI feedback on delivery
// outcomes, independent of whether delivery actually happened. It is the
// only observable failure surface of the notification pipeline.
type Feedback interface {
	Success(msg string)
	Failure(msg string)
}
