package services_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/agencysite/backend/internal/adapters/cache"
	"github.com/zatekoja/agencysite/backend/internal/adapters/events"
	"github.com/zatekoja/agencysite/backend/internal/application/services"
	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/pkg/config"
)

var schedulerConfig = config.SchedulerConfig{Enabled: true, FollowUpCron: "0 9 * * *", FollowUpAfter: 72 * time.Hour}

func TestFollowUpScheduler_RunOncePublishesEachQuoteOnce(t *testing.T) {
	repo := new(MockQuoteRepository)
	repo.On("List", mock.Anything, mock.Anything).Return([]*entities.QuoteRequest{
		{ID: "q-1", Reference: "CQ-101", Email: "a@example.com", Status: entities.QuoteStatusPending},
		{ID: "q-2", Reference: "CQ-102", Email: "b@example.com", Status: entities.QuoteStatusPending},
	}, nil)

	bus := events.NewLocalEventBus()
	defer bus.Close()
	ch, err := bus.Subscribe(context.Background(), providers.GetEventChannel(entities.EventTypeQuoteFollowUp))
	require.NoError(t, err)

	scheduler, err := services.NewFollowUpScheduler(services.NewQuoteService(repo, nil), bus, cache.NewMemoryAdapter(), schedulerConfig)
	require.NoError(t, err)

	sent, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case event := <-ch:
			got[event.Data["reference"]] = true
		case <-time.After(time.Second):
			t.Fatal("missing follow-up event")
		}
	}
	assert.True(t, got["CQ-101"])
	assert.True(t, got["CQ-102"])

	sent, err = scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}

type refusingBus struct {
	*events.LocalEventBus
}

func (refusingBus) Publish(ctx context.Context, channel string, event *entities.DomainEvent) error {
	return errors.New("redis: connection refused")
}

type stickyMarkerCache struct {
	*cache.MemoryAdapter
}

func (stickyMarkerCache) Delete(ctx context.Context, key string) error {
	return errors.New("redis: i/o timeout")
}

func TestFollowUpScheduler_PublishFailureReleasesMarker(t *testing.T) {
	repo := new(MockQuoteRepository)
	repo.On("List", mock.Anything, mock.Anything).Return([]*entities.QuoteRequest{
		{ID: "q-1", Reference: "CQ-101", Email: "a@example.com", Status: entities.QuoteStatusPending},
	}, nil)
	quotes := services.NewQuoteService(repo, nil)

	markers := cache.NewMemoryAdapter()
	failing, err := services.NewFollowUpScheduler(quotes, refusingBus{events.NewLocalEventBus()}, markers, schedulerConfig)
	require.NoError(t, err)
	_, err = failing.RunOnce(context.Background())
	require.Error(t, err)

	bus := events.NewLocalEventBus()
	defer bus.Close()
	retry, err := services.NewFollowUpScheduler(quotes, bus, markers, schedulerConfig)
	require.NoError(t, err)
	sent, err := retry.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent, "marker was cleared so the next run retries")
}

func TestFollowUpScheduler_LogsMarkerThatCouldNotBeCleared(t *testing.T) {
	var buf bytes.Buffer
	original := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = original })

	repo := new(MockQuoteRepository)
	repo.On("List", mock.Anything, mock.Anything).Return([]*entities.QuoteRequest{
		{ID: "q-1", Reference: "CQ-101", Email: "a@example.com", Status: entities.QuoteStatusPending},
	}, nil)

	scheduler, err := services.NewFollowUpScheduler(services.NewQuoteService(repo, nil),
		refusingBus{events.NewLocalEventBus()}, stickyMarkerCache{cache.NewMemoryAdapter()}, schedulerConfig)
	require.NoError(t, err)

	_, err = scheduler.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, buf.String(), "failed to clear follow-up marker")
	assert.Contains(t, buf.String(), `"quote_id":"q-1"`)
	assert.Contains(t, buf.String(), "i/o timeout")
}

func TestFollowUpScheduler_RejectsBadCron(t *testing.T) {
	cfg := schedulerConfig
	cfg.FollowUpCron = "every morning"
	_, err := services.NewFollowUpScheduler(nil, events.NewLocalEventBus(), cache.NewMemoryAdapter(), cfg)
	assert.Error(t, err)
}

func TestFollowUpScheduler_StartStop(t *testing.T) {
	scheduler, err := services.NewFollowUpScheduler(nil, events.NewLocalEventBus(), cache.NewMemoryAdapter(), schedulerConfig)
	require.NoError(t, err)
	scheduler.Start()
	select {
	case <-scheduler.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
