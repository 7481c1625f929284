package events

import (
	"context"
	"sync"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
)

// LocalEventBus delivers events inside the process. It backs single-node
// deployments without Redis and tests.
type LocalEventBus struct {
	fanout *fanout
	once   sync.Once
	done   chan struct{}
}

// NewLocalEventBus creates a new in-process event bus
func NewLocalEventBus() *LocalEventBus {
	return &LocalEventBus{
		fanout: newFanout(),
		done:   make(chan struct{}),
	}
}

var _ providers.EventBus = (*LocalEventBus)(nil)

// Publish delivers event to current subscribers of channel
func (b *LocalEventBus) Publish(ctx context.Context, channel string, event *entities.DomainEvent) error {
	b.fanout.broadcast(channel, event)
	return nil
}

// Subscribe subscribes to events on a channel
func (b *LocalEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.DomainEvent, error) {
	ch := b.fanout.add(channel)
	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		b.fanout.remove(channel, ch)
	}()
	return ch, nil
}

// Unsubscribe drops every subscriber of a channel
func (b *LocalEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.fanout.removeAll(channel)
	return nil
}

// Close ends all subscriptions
func (b *LocalEventBus) Close() error {
	b.once.Do(func() { close(b.done) })
	return nil
}
