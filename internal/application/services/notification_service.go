package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/pkg/config"
)

// notifiedEvents are the event types turned into emails
var notifiedEvents = []entities.EventType{
	entities.EventTypeQuoteSubmitted,
	entities.EventTypeQuotePaid,
	entities.EventTypeQuoteFollowUp,
	entities.EventTypeContactReceived,
}

// NotificationService turns domain events into emails for the sales inbox
// and the client
type NotificationService struct {
	eventBus   providers.EventBus
	sender     providers.EmailSender
	salesInbox string
	siteName   string
	wg         sync.WaitGroup
}

// NewNotificationService creates a new notification service
func NewNotificationService(eventBus providers.EventBus, sender providers.EmailSender, cfg config.NotificationsConfig) *NotificationService {
	siteName := cfg.FromName
	if siteName == "" {
		siteName = "the team"
	}
	return &NotificationService{
		eventBus:   eventBus,
		sender:     sender,
		salesInbox: cfg.SalesInbox,
		siteName:   siteName,
	}
}

// Start subscribes to the notified events and handles them until ctx is done
func (n *NotificationService) Start(ctx context.Context) error {
	for _, eventType := range notifiedEvents {
		ch, err := n.eventBus.Subscribe(ctx, providers.GetEventChannel(eventType))
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
		}
		n.wg.Add(1)
		go n.consume(ctx, ch)
	}
	log.Info().Int("channels", len(notifiedEvents)).Msg("notification service started")
	return nil
}

// Wait blocks until every consumer started by Start has returned
func (n *NotificationService) Wait() {
	n.wg.Wait()
}

func (n *NotificationService) consume(ctx context.Context, ch <-chan *entities.DomainEvent) {
	defer n.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := n.Handle(ctx, event); err != nil {
				log.Error().Err(err).Str("event", string(event.Type)).Str("aggregate_id", event.AggregateID).Msg("failed to send notification")
			}
		}
	}
}

// Handle sends the emails for one event. A failed email does not stop the
// others; the first error is returned.
func (n *NotificationService) Handle(ctx context.Context, event *entities.DomainEvent) error {
	var firstErr error
	for _, msg := range n.messagesFor(event) {
		if msg.ToEmail == "" {
			continue
		}
		if err := n.sender.Send(ctx, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (n *NotificationService) messagesFor(event *entities.DomainEvent) []providers.EmailMessage {
	d := event.Data
	switch event.Type {
	case entities.EventTypeQuoteSubmitted:
		return []providers.EmailMessage{
			n.message(n.salesInbox, "", fmt.Sprintf("New quote request %s from %s", d["reference"], d["name"]),
				leadSummary(d)),
			n.message(d["email"], d["name"], fmt.Sprintf("We received your quote request %s", d["reference"]),
				fmt.Sprintf("Hi %s,\n\nThanks for reaching out. Your request for %s is logged as %s and we will reply within two business days.\n\n%s",
					firstName(d["name"]), serviceLabel(d), d["reference"], n.siteName)),
		}
	case entities.EventTypeQuotePaid:
		return []providers.EmailMessage{
			n.message(n.salesInbox, "", fmt.Sprintf("Payment received for %s", d["reference"]),
				fmt.Sprintf("Payment %s of %s %s settled for quote %s (%s).", d["payment_reference"], d["amount"], d["currency"], d["reference"], d["name"])),
			n.message(d["email"], d["name"], fmt.Sprintf("Payment confirmed for %s", d["reference"]),
				fmt.Sprintf("Hi %s,\n\nWe received your payment of %s %s for %s. Your project lead will be in touch to schedule kickoff.\n\n%s",
					firstName(d["name"]), d["amount"], d["currency"], d["reference"], n.siteName)),
		}
	case entities.EventTypeQuoteFollowUp:
		return []providers.EmailMessage{
			n.message(d["email"], d["name"], fmt.Sprintf("Following up on your quote request %s", d["reference"]),
				fmt.Sprintf("Hi %s,\n\nWe are still working through your request for %s (%s). Reply to this email if anything has changed or you would like to talk it through.\n\n%s",
					firstName(d["name"]), serviceLabel(d), d["reference"], n.siteName)),
		}
	case entities.EventTypeContactReceived:
		return []providers.EmailMessage{
			n.message(n.salesInbox, "", fmt.Sprintf("New contact message: %s", fallback(d["subject"], "(no subject)")),
				fmt.Sprintf("From: %s <%s>\n\n%s", d["name"], d["email"], d["message"])),
		}
	}
	return nil
}

func (n *NotificationService) message(to, toName, subject, body string) providers.EmailMessage {
	return providers.EmailMessage{
		ToEmail:   to,
		ToName:    toName,
		Subject:   subject,
		PlainText: body,
		HTML:      "<p>" + strings.ReplaceAll(html.EscapeString(body), "\n", "<br>") + "</p>",
	}
}

func leadSummary(d map[string]string) string {
	var b strings.Builder
	for _, row := range [][2]string{
		{"Reference", d["reference"]},
		{"Name", d["name"]},
		{"Email", d["email"]},
		{"Phone", d["phone"]},
		{"Company", d["company"]},
		{"Service", serviceLabel(d)},
		{"Budget", d["budget"]},
	} {
		if row[1] != "" {
			fmt.Fprintf(&b, "%s: %s\n", row[0], row[1])
		}
	}
	return b.String()
}

func serviceLabel(d map[string]string) string {
	if d["service_type"] != "" {
		return d["service_type"]
	}
	return fallback(d["service_category"], "your project")
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return "there"
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
