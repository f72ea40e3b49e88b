package domain

import "time"

// TicketStatus is the display bucket shown to users.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusWaiting    TicketStatus = "Waiting"
	TicketStatusClosed     TicketStatus = "Closed"
)

// Generation identifies which backend schema a record was decoded from.
type Generation string

const (
	GenerationLegacy  Generation = "legacy"
	GenerationCurrent Generation = "current"
)

// Ticket is the unified view-model over both backend schema generations.
type Ticket struct {
	ID                 string       `json:"id"`
	UserID             string       `json:"user_id"`
	Subject            string       `json:"subject"`
	ProblemDescription string       `json:"problem_description"`
	Status             TicketStatus `json:"status"`
	Category           string       `json:"category"`
	Priority           string       `json:"priority"`
	ProblemType        string       `json:"problem_type"`
	Queue              string       `json:"queue"`
	AIConfidence       *float64     `json:"ai_confidence,omitempty"`
	NeedsClarification bool         `json:"needs_clarification"`
	AutoClosed         bool         `json:"auto_closed"`
	IsEscalated        bool         `json:"is_escalated"`
	SLADeadline        *time.Time   `json:"sla_deadline,omitempty"`
	CSATScore          *int         `json:"csat_score,omitempty"`
	CSATComment        string       `json:"csat_comment,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
	ClosedAt           *time.Time   `json:"closed_at,omitempty"`
	Generation         Generation   `json:"generation"`
}

// TicketFilter narrows ticket listings.
type TicketFilter struct {
	Statuses   []TicketStatus
	Categories []string
	Priorities []string
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
	Skip       int
	Limit      int
}

// TicketUpdate carries the mutable ticket fields; nil means unchanged.
type TicketUpdate struct {
	Status               *TicketStatus
	Priority             *string
	CategoryID           *string
	AssignedDepartmentID *string
	AssignedOperatorID   *string
}

// SubmissionOutcome classifies the routing result of a submitted ticket.
type SubmissionOutcome string

const (
	SubmissionSuccess SubmissionOutcome = "success"
	SubmissionWarning SubmissionOutcome = "warning"
)

// SubmissionResult is what the user sees after submitting a problem description.
type SubmissionResult struct {
	Status             SubmissionOutcome `json:"status"`
	Message            string            `json:"message"`
	NeedsClarification bool              `json:"needs_clarification"`
	ConfidenceWarning  string            `json:"confidence_warning,omitempty"`
	Queue              string            `json:"queue,omitempty"`
	Simulated          bool              `json:"simulated,omitempty"`
	Ticket             *Ticket           `json:"ticket,omitempty"`
}
