package dto

// MetricsResponse is the GET /metrics answer. Stats-style fields and
// already-aggregated fields are both accepted.
type MetricsResponse struct {
	AutoResolutionRate FlexFloat `json:"auto_resolution_rate"`
	AccuracyMetrics    *struct {
		AvgConfidence FlexFloat `json:"avg_confidence"`
	} `json:"accuracy_metrics"`
	AvgResponseTime FlexFloat `json:"avg_response_time"`
	TotalTickets    *int      `json:"total_tickets"`
	ClosedTickets   *int      `json:"closed_tickets"`

	Auto     FlexFloat `json:"auto"`
	Accuracy FlexFloat `json:"accuracy"`
	SLA      FlexFloat `json:"sla"`
	Backlog  *int      `json:"backlog"`

	CSAT             FlexFloat `json:"csat"`
	RoutingErrorRate FlexFloat `json:"routing_error_rate"`
	RoutingErrors    *struct {
		ManualReview       *int `json:"manual_review"`
		LowConfidence      *int `json:"low_confidence"`
		NeedsClarification *int `json:"needs_clarification"`
	} `json:"routing_errors"`
	AvgResolutionTimeByCategory map[string]float64 `json:"avg_resolution_time_by_category"`
	Trends                      map[string]struct {
		Total  int `json:"total"`
		Closed int `json:"closed"`
	} `json:"trends"`
}
