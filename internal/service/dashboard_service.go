package service

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

const dashboardRecent = 5

// DashboardService joins metrics and tickets for the landing page.
type DashboardService struct {
	metrics *MetricsService
	tickets *TicketService
}

// NewDashboardService constructs the service.
func NewDashboardService(metrics *MetricsService, tickets *TicketService) *DashboardService {
	return &DashboardService{metrics: metrics, tickets: tickets}
}

// Load fetches metrics and the ticket list in parallel.
func (s *DashboardService) Load(ctx context.Context) (*domain.Dashboard, error) {
	var (
		metrics domain.Metrics
		tickets []domain.Ticket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		metrics, err = s.metrics.Get(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tickets, err = s.tickets.List(gctx, domain.TicketFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recent := make([]domain.Ticket, len(tickets))
	copy(recent, tickets)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	if len(recent) > dashboardRecent {
		recent = recent[:dashboardRecent]
	}
	return &domain.Dashboard{
		Metrics:      metrics,
		StatusCounts: domain.CountByStatus(tickets),
		Recent:       recent,
		Total:        len(tickets),
	}, nil
}
