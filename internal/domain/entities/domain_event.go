package entities

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of a domain event
type EventType string

const (
	EventTypeQuoteSubmitted  EventType = "quote.submitted"
	EventTypeQuotePaid       EventType = "quote.paid"
	EventTypeQuoteFollowUp   EventType = "quote.follow_up"
	EventTypeContactReceived EventType = "contact.received"
)

// DomainEvent is published on the event bus after a state change commits
type DomainEvent struct {
	ID          string            `json:"id"`
	Type        EventType         `json:"type"`
	AggregateID string            `json:"aggregate_id"`
	Timestamp   time.Time         `json:"timestamp"`
	Data        map[string]string `json:"data"`
}

// NewDomainEvent creates a new event for the given aggregate
func NewDomainEvent(eventType EventType, aggregateID string, data map[string]string) *DomainEvent {
	if data == nil {
		data = map[string]string{}
	}
	return &DomainEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		Timestamp:   time.Now().UTC(),
		Data:        data,
	}
}

// NewQuoteEvent builds a quote event carrying the fields notifications need
func NewQuoteEvent(eventType EventType, q *QuoteRequest) *DomainEvent {
	return NewDomainEvent(eventType, q.ID, map[string]string{
		"reference":        q.Reference,
		"name":             q.Name,
		"email":            q.Email,
		"phone":            q.Phone,
		"company":          q.Company,
		"service_category": q.ServiceCategory,
		"service_type":     q.ServiceType,
		"budget":           q.Budget,
		"status":           string(q.Status),
	})
}
