package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yungbote/educator-assistant-backend/internal/platform/sendgrid"
)

var errMailerDisabled = errors.New("email delivery is not configured")

// Mailer delivers plain-text email. Enabled is false for the no-op mailer.
type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, to, subject, body string) error
}

type sendGridMailer struct {
	client sendgrid.Client
}

func NewSendGridMailer(client sendgrid.Client) Mailer {
	if client == nil {
		return NopMailer{}
	}
	return &sendGridMailer{client: client}
}

func (m *sendGridMailer) Enabled() bool { return true }

func (m *sendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("recipient email required")
	}
	_, err := m.client.Send(ctx, sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: to}},
		Subject:    subject,
		Text:       body,
		Categories: []string{"educator-assistant"},
	})
	return err
}

type NopMailer struct{}

func (NopMailer) Enabled() bool { return false }

func (NopMailer) Send(ctx context.Context, to, subject, body string) error { return errMailerDisabled }
