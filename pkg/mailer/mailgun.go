package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

// Mailgun sends transactional mail through the Mailgun HTTP API. APIBase
// overrides the default US endpoint, e.g. "https://api.eu.mailgun.net/v3".
type Mailgun struct {
	Domain  string
	APIKey  string
	Sender  string
	APIBase string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender}
}

// Send mails one message to a single recipient. html is optional.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	if to == "" {
		return errors.New("mailgun: empty recipient")
	}
	client := mg.NewMailgun(m.Domain, m.APIKey)
	if m.APIBase != "" {
		client.SetAPIBase(m.APIBase)
	}

	msg := client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if _, _, err := client.Send(c, msg); err != nil {
		return fmt.Errorf("mailgun send %q: %w", subject, err)
	}
	return nil
}
