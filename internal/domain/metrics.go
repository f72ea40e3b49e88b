package domain

// RoutingErrors breaks down misrouted tickets.
type RoutingErrors struct {
	ManualReview       *int `json:"manual_review,omitempty"`
	LowConfidence      *int `json:"low_confidence,omitempty"`
	NeedsClarification *int `json:"needs_clarification,omitempty"`
}

// TrendPoint is one day of ticket volume.
type TrendPoint struct {
	Total  int `json:"total"`
	Closed int `json:"closed"`
}

// Metrics is a read-only aggregate snapshot, recomputed on every fetch.
type Metrics struct {
	Auto                        float64               `json:"auto"`
	Accuracy                    float64               `json:"accuracy"`
	SLA                         float64               `json:"sla"`
	Backlog                     int                   `json:"backlog"`
	CSAT                        *float64              `json:"csat,omitempty"`
	RoutingErrorRate            *float64              `json:"routing_error_rate,omitempty"`
	RoutingErrors               *RoutingErrors        `json:"routing_errors,omitempty"`
	AvgResolutionTimeByCategory map[string]float64    `json:"avg_resolution_time_by_category,omitempty"`
	Trends                      map[string]TrendPoint `json:"trends,omitempty"`
	Simulated                   bool                  `json:"simulated,omitempty"`
}

// StatusCount is the number of tickets in one display bucket.
type StatusCount struct {
	Status TicketStatus `json:"status"`
	Count  int          `json:"count"`
}

// Dashboard joins the metrics snapshot with the user's ticket list.
type Dashboard struct {
	Metrics      Metrics       `json:"metrics"`
	StatusCounts []StatusCount `json:"status_counts"`
	Recent       []Ticket      `json:"recent"`
	Total        int           `json:"total"`
}

// CountByStatus groups tickets into display buckets in canonical order;
// unknown statuses follow in order of first appearance.
func CountByStatus(tickets []Ticket) []StatusCount {
	order := []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusWaiting, TicketStatusClosed}
	counts := make(map[TicketStatus]int, len(order))
	for _, t := range tickets {
		if _, ok := counts[t.Status]; !ok && !isKnownStatus(t.Status) {
			order = append(order, t.Status)
		}
		counts[t.Status]++
	}
	out := make([]StatusCount, 0, len(order))
	for _, st := range order {
		out = append(out, StatusCount{Status: st, Count: counts[st]})
	}
	return out
}

func isKnownStatus(st TicketStatus) bool {
	switch st {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaiting, TicketStatusClosed:
		return true
	}
	return false
}
