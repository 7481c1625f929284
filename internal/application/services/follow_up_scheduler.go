package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/pkg/config"
)

const (
	followUpKeyPrefix = "quote:followup:"
	followUpMarkerTTL = 30 * 24 * time.Hour
)

// StaleQuoteLister lists quotes nobody has picked up yet
type StaleQuoteLister interface {
	ListStale(ctx context.Context, olderThan time.Duration) ([]*entities.QuoteRequest, error)
}

// FollowUpScheduler periodically publishes a follow-up event for pending
// quotes older than the configured age. Each quote is followed up once.
type FollowUpScheduler struct {
	cron     *cron.Cron
	quotes   StaleQuoteLister
	eventBus providers.EventBus
	cache    providers.CacheProvider
	after    time.Duration
}

// NewFollowUpScheduler creates the scheduler and registers the job on
// cfg.FollowUpCron. It does not start running until Start is called.
func NewFollowUpScheduler(quotes StaleQuoteLister, eventBus providers.EventBus, cache providers.CacheProvider, cfg config.SchedulerConfig) (*FollowUpScheduler, error) {
	s := &FollowUpScheduler{
		cron:     cron.New(cron.WithLocation(time.UTC), cron.WithLogger(cronLogger{})),
		quotes:   quotes,
		eventBus: eventBus,
		cache:    cache,
		after:    cfg.FollowUpAfter,
	}

	if _, err := s.cron.AddFunc(cfg.FollowUpCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("quote follow-up run failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid FOLLOW_UP_CRON %q: %w", cfg.FollowUpCron, err)
	}
	return s, nil
}

// Start runs the scheduler in the background
func (s *FollowUpScheduler) Start() {
	s.cron.Start()
	log.Info().Dur("after", s.after).Msg("quote follow-up scheduler started")
}

// Stop stops the scheduler. The returned context is done once a running job
// has finished.
func (s *FollowUpScheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce publishes follow-ups for the current stale quotes and returns how
// many were sent
func (s *FollowUpScheduler) RunOnce(ctx context.Context) (int, error) {
	stale, err := s.quotes.ListStale(ctx, s.after)
	if err != nil {
		return 0, fmt.Errorf("listing stale quotes: %w", err)
	}

	sent := 0
	for _, q := range stale {
		n, err := s.cache.Increment(ctx, followUpKeyPrefix+q.ID, int(followUpMarkerTTL.Seconds()))
		if err != nil {
			return sent, fmt.Errorf("marking follow-up for %s: %w", q.Reference, err)
		}
		if n > 1 {
			continue
		}

		event := entities.NewQuoteEvent(entities.EventTypeQuoteFollowUp, q)
		if err := s.eventBus.Publish(ctx, providers.GetEventChannel(event.Type), event); err != nil {
			if delErr := s.cache.Delete(ctx, followUpKeyPrefix+q.ID); delErr != nil {
				log.Warn().Err(delErr).Str("quote_id", q.ID).Msg("failed to clear follow-up marker; quote skipped until it expires")
			}
			return sent, fmt.Errorf("publishing follow-up for %s: %w", q.Reference, err)
		}
		sent++
	}

	log.Info().Int("stale", len(stale)).Int("sent", sent).Msg("quote follow-up run complete")
	return sent, nil
}

// cronLogger routes cron's own messages to zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
