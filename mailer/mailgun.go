package mailer

import (
	"context"
	"fmt"
	"log"

	"github.com/mailgun/mailgun-go/v4"
)

// TemplateSender sends a single templated email. Implemented by the Mailgun
// client in production and by fakes in tests and invite-dry-run setups.
type TemplateSender interface {
	SendTemplate(ctx context.Context, toEmail, subject string, variables map[string]string) error
}

// MailgunSender delivers templated emails through the Mailgun messages API
type MailgunSender struct {
	mg       *mailgun.MailgunImpl
	sender   string
	template string
}

// NewMailgunSender creates a Mailgun-backed sender for the given domain
func NewMailgunSender(domain, apiKey, sender, template string) *MailgunSender {
	return &MailgunSender{
		mg:       mailgun.NewMailgun(domain, apiKey),
		sender:   sender,
		template: template,
	}
}

// SendTemplate sends one templated message to a single recipient
func (s *MailgunSender) SendTemplate(ctx context.Context, toEmail, subject string, variables map[string]string) error {
	message := s.mg.NewMessage(s.sender, subject, "", toEmail)
	message.SetTemplate(s.template)
	for key, value := range variables {
		if err := message.AddTemplateVariable(key, value); err != nil {
			return fmt.Errorf("failed to add template variable %s: %w", key, err)
		}
	}

	_, id, err := s.mg.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", toEmail, err)
	}
	log.Printf("mailgun: sent invitation to %s (message id %s)", toEmail, id)
	return nil
}
