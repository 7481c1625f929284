package providers

import "context"

// EmailMessage is one outbound notification email
type EmailMessage struct {
	ToEmail   string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

// EmailSender delivers notification emails
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}
