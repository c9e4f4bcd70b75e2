// internal/infra/email/sendgrid.go
package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"wellbeing_alert_bot/internal/domain/delivery"
	"wellbeing_alert_bot/internal/domain/roster"
)

// SendGridChannel delivers alert messages over the SendGrid v3 mail API.
type SendGridChannel struct {
	client     *sendgrid.Client
	from       *sgmail.Email
	subjPrefix string
}

var _ delivery.Channel = (*SendGridChannel)(nil)

func NewSendGridChannel(apiKey, appName, fromEmail string) *SendGridChannel {
	return &SendGridChannel{
		client:     sendgrid.NewSendClient(apiKey),
		from:       sgmail.NewEmail(appName, fromEmail),
		subjPrefix: "[" + appName + "] ",
	}
}

func (c *SendGridChannel) ID() string { return "email" }

func (c *SendGridChannel) Send(ctx context.Context, rcpt roster.Recipient, subject, body string) error {
	if !rcpt.Email.Valid || rcpt.Email.String == "" {
		return delivery.ErrNoAddress
	}

	p := sgmail.NewPersonalization()
	p.Subject = c.subjPrefix + subject
	p.AddTos(sgmail.NewEmail(rcpt.Name, rcpt.Email.String))

	m := sgmail.NewV3Mail()
	m.SetFrom(c.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", body))

	resp, err := c.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", rcpt.Email.String, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send to %s: status %d: %s", rcpt.Email.String, resp.StatusCode, resp.Body)
	}
	return nil
}
