package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
)

// recentQuoteLimit is the number of quotes shown on the dashboard
const recentQuoteLimit = 10

// DashboardService builds the admin overview
type DashboardService struct {
	quotes   repositories.QuoteRepository
	projects repositories.ProjectRepository
	payments repositories.PaymentRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(quotes repositories.QuoteRepository, projects repositories.ProjectRepository, payments repositories.PaymentRepository) *DashboardService {
	return &DashboardService{quotes: quotes, projects: projects, payments: payments}
}

// Summary gathers the dashboard aggregates concurrently. The first failing
// query cancels the others.
func (s *DashboardService) Summary(ctx context.Context) (*entities.DashboardSummary, error) {
	summary := &entities.DashboardSummary{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.quotes.CountByStatus(gCtx)
		if err != nil {
			return fmt.Errorf("counting quotes: %w", err)
		}
		summary.QuotesByStatus = counts
		return nil
	})
	g.Go(func() error {
		recent, err := s.quotes.List(gCtx, repositories.QuoteFilter{Limit: recentQuoteLimit})
		if err != nil {
			return fmt.Errorf("listing recent quotes: %w", err)
		}
		summary.RecentQuotes = recent
		return nil
	})
	g.Go(func() error {
		counts, err := s.projects.CountByStatus(gCtx)
		if err != nil {
			return fmt.Errorf("counting projects: %w", err)
		}
		summary.ProjectsByStatus = counts
		return nil
	})
	g.Go(func() error {
		totals, err := s.payments.Totals(gCtx)
		if err != nil {
			return fmt.Errorf("totalling payments: %w", err)
		}
		summary.Payments = totals
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if summary.RecentQuotes == nil {
		summary.RecentQuotes = []*entities.QuoteRequest{}
	}
	return summary, nil
}
