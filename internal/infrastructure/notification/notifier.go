// Package notification delivers user notifications by email.
package notification

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/internal/application"
	mailtpl "github.com/oksasatya/go-hexagonal-users/pkg/mailer/templates"
)

// Sender is satisfied by mailer.Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// EmailNotifier renders the notification template and mails it.
type EmailNotifier struct {
	sender Sender
	logger *logrus.Logger
}

var _ application.NotificationSending = (*EmailNotifier)(nil)

func NewEmailNotifier(sender Sender, logger *logrus.Logger) *EmailNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EmailNotifier{sender: sender, logger: logger}
}

func (n *EmailNotifier) Send(ctx context.Context, note application.Notification) error {
	subject, text, html, err := mailtpl.Render(note.Template, note.Data)
	if err != nil {
		return fmt.Errorf("render %s: %w", note.Template, err)
	}
	if err := n.sender.Send(ctx, note.To, subject, text, html); err != nil {
		return err
	}
	n.logger.WithFields(logrus.Fields{"to": note.To, "template": note.Template}).Info("notification sent")
	return nil
}

// LogNotifier only logs notifications. It stands in when mail sending is
// disabled.
type LogNotifier struct {
	logger *logrus.Logger
}

var _ application.NotificationSending = (*LogNotifier)(nil)

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, note application.Notification) error {
	n.logger.WithFields(logrus.Fields{"to": note.To, "template": note.Template}).Info("notification skipped; mail sending disabled")
	return nil
}
