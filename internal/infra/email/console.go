// internal/infra/email/console.go
package email

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"wellbeing_alert_bot/internal/domain/delivery"
	"wellbeing_alert_bot/internal/domain/roster"
)

// SentMessage is one message captured by the console channel.
type SentMessage struct {
	Recipient roster.Recipient
	Subject   string
	Body      string
}

// ConsoleChannel writes messages to the log instead of delivering them and
// records them for inspection. It stands in for real channels in the
// development profile and in tests.
type ConsoleChannel struct {
	mu    sync.Mutex
	entry *logrus.Entry
	sent  []SentMessage
}

var _ delivery.Channel = (*ConsoleChannel)(nil)

func NewConsoleChannel(entry *logrus.Entry) *ConsoleChannel {
	return &ConsoleChannel{entry: entry}
}

func (c *ConsoleChannel) ID() string { return "console" }

func (c *ConsoleChannel) Send(_ context.Context, rcpt roster.Recipient, subject, body string) error {
	c.mu.Lock()
	c.sent = append(c.sent, SentMessage{Recipient: rcpt, Subject: subject, Body: body})
	c.mu.Unlock()

	if c.entry != nil {
		c.entry.WithFields(logrus.Fields{
			"recipient": rcpt.Name,
			"subject":   subject,
		}).Info(body)
	}
	return nil
}

// Sent returns a copy of everything sent so far.
func (c *ConsoleChannel) Sent() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SentMessage, len(c.sent))
	copy(out, c.sent)
	return out
}
