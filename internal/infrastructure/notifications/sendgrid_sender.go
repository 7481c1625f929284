package notifications

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/pkg/config"
)

// SendGridSender delivers notification emails through the SendGrid v3 API
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

var _ providers.EmailSender = (*SendGridSender)(nil)

// NewSendGridSender creates a new SendGrid sender
func NewSendGridSender(cfg config.NotificationsConfig) (*SendGridSender, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY must be set")
	}

	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}, nil
}

// Send sends one email
func (s *SendGridSender) Send(ctx context.Context, msg providers.EmailMessage) error {
	message := buildMail(s.fromEmail, s.fromName, msg)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func buildMail(fromEmail, fromName string, msg providers.EmailMessage) *mail.SGMailV3 {
	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	return mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)
}
