package service

import (
	"context"
	"math"
	"net/http"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/fallback"
)

// MetricsService reads aggregate quality metrics.
type MetricsService struct {
	client  Executor
	policy  *fallback.Policy
	sim     *fallback.Simulator
	offline bool
}

// NewMetricsService constructs the service.
func NewMetricsService(deps Dependencies) *MetricsService {
	return &MetricsService{
		client:  deps.client(),
		policy:  deps.Policy,
		sim:     deps.simulator(),
		offline: deps.Offline,
	}
}

// Get returns a fresh snapshot.
func (s *MetricsService) Get(ctx context.Context) (domain.Metrics, error) {
	if s.offline {
		return s.sim.Metrics(), nil
	}
	var resp dto.MetricsResponse
	if err := s.client.Do(ctx, http.MethodGet, "/metrics", nil, &resp); err != nil {
		return fallback.Recover(s.policy, fallback.MetricsGet, err, domain.Metrics{}, s.sim.Metrics)
	}
	return MapMetrics(resp), nil
}

// MapMetrics converts backend statistics into the snapshot. Pre-aggregated
// fields win over the raw statistics they are derived from.
func MapMetrics(r dto.MetricsResponse) domain.Metrics {
	m := domain.Metrics{
		Auto:                        percent(r.AutoResolutionRate.Value),
		SLA:                         slaFromResponseTime(r.AvgResponseTime.Value),
		CSAT:                        r.CSAT.Ptr(),
		RoutingErrorRate:            r.RoutingErrorRate.Ptr(),
		AvgResolutionTimeByCategory: r.AvgResolutionTimeByCategory,
	}
	if r.AccuracyMetrics != nil {
		m.Accuracy = percent(r.AccuracyMetrics.AvgConfidence.Value)
	}
	if r.TotalTickets != nil && r.ClosedTickets != nil {
		m.Backlog = max(0, *r.TotalTickets-*r.ClosedTickets)
	}

	if r.Auto.Valid {
		m.Auto = r.Auto.Value
	}
	if r.Accuracy.Valid {
		m.Accuracy = r.Accuracy.Value
	}
	if r.SLA.Valid {
		m.SLA = r.SLA.Value
	}
	if r.Backlog != nil {
		m.Backlog = *r.Backlog
	}

	if r.RoutingErrors != nil {
		m.RoutingErrors = &domain.RoutingErrors{
			ManualReview:       r.RoutingErrors.ManualReview,
			LowConfidence:      r.RoutingErrors.LowConfidence,
			NeedsClarification: r.RoutingErrors.NeedsClarification,
		}
	}
	if len(r.Trends) > 0 {
		m.Trends = make(map[string]domain.TrendPoint, len(r.Trends))
		for day, p := range r.Trends {
			m.Trends[day] = domain.TrendPoint{Total: p.Total, Closed: p.Closed}
		}
	}
	return m
}

// percent scales fractions in (0, 1] to percentages.
func percent(v float64) float64 {
	if v > 0 && v <= 1 {
		v *= 100
	}
	return math.Round(v*10) / 10
}

func slaFromResponseTime(avg float64) float64 {
	sla := math.Min(99, 100-avg*10)
	return math.Max(0, sla)
}
