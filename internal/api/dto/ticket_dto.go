package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// LegacyTicket is the first backend generation: numeric id, display-ready
// status strings and flat classification fields.
type LegacyTicket struct {
	ID                 FlexID    `json:"id"`
	UserID             FlexID    `json:"user_id"`
	Subject            string    `json:"subject"`
	ProblemDescription string    `json:"problem_description"`
	Status             string    `json:"status"`
	Category           string    `json:"category"`
	Priority           string    `json:"priority"`
	ProblemType        string    `json:"problem_type"`
	Queue              string    `json:"queue"`
	NeedsClarification *bool     `json:"needs_clarification"`
	Confidence         FlexFloat `json:"confidence"`
	AutoClosed         bool      `json:"auto_closed"`
	SLADeadline        FlexTime  `json:"sla_deadline"`
	CSATScore          *int      `json:"csat_score"`
	CSATComment        string    `json:"csat_comment"`
	CreatedAt          FlexTime  `json:"created_at"`
	UpdatedAt          FlexTime  `json:"updated_at"`
	ClosedAt           FlexTime  `json:"closed_at"`
}

// CurrentTicket is the second backend generation (TicketResponse): UUID ids,
// category/department references and AI confidence.
type CurrentTicket struct {
	ID                   FlexID    `json:"id"`
	Source               string    `json:"source"`
	UserID               FlexID    `json:"user_id"`
	Subject              *string   `json:"subject"`
	Body                 string    `json:"body"`
	Language             string    `json:"language"`
	CategoryID           FlexID    `json:"category_id"`
	CategoryName         string    `json:"category_name"`
	Priority             *string   `json:"priority"`
	IssueType            *string   `json:"issue_type"`
	AIConfidence         FlexFloat `json:"ai_confidence"`
	AssignedDepartmentID FlexID    `json:"assigned_department_id"`
	DepartmentName       string    `json:"department_name"`
	AssignedOperatorID   FlexID    `json:"assigned_operator_id"`
	Status               string    `json:"status"`
	AutoResolved         bool      `json:"auto_resolved"`
	CreatedAt            FlexTime  `json:"created_at"`
	UpdatedAt            FlexTime  `json:"updated_at"`
	ClosedAt             FlexTime  `json:"closed_at"`
	SLADeadline          FlexTime  `json:"sla_deadline"`
	IsEscalated          bool      `json:"is_escalated"`
}

// TicketPayload is the tagged union over both generations. Exactly one of
// Legacy and Current is set after decoding.
type TicketPayload struct {
	Generation domain.Generation
	Legacy     *LegacyTicket
	Current    *CurrentTicket
}

// currentMarkers are fields that only the current generation emits.
var currentMarkers = []string{"body", "category_id", "assigned_department_id", "ai_confidence", "issue_type", "auto_resolved"}

// UnmarshalJSON decides the generation once, then decodes into the matching shape.
func (p *TicketPayload) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("ticket payload: %w", err)
	}

	if detectGeneration(fields) == domain.GenerationCurrent {
		var cur CurrentTicket
		if err := json.Unmarshal(b, &cur); err != nil {
			return fmt.Errorf("current ticket payload: %w", err)
		}
		*p = TicketPayload{Generation: domain.GenerationCurrent, Current: &cur}
		return nil
	}

	var legacy LegacyTicket
	if err := json.Unmarshal(b, &legacy); err != nil {
		return fmt.Errorf("legacy ticket payload: %w", err)
	}
	*p = TicketPayload{Generation: domain.GenerationLegacy, Legacy: &legacy}
	return nil
}

// TicketList decodes a ticket array one record at a time. Records that do
// not decode are counted in Skipped and left out.
type TicketList struct {
	Items   []TicketPayload
	Skipped int
}

func (l *TicketList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("ticket list: %w", err)
	}
	l.Items = make([]TicketPayload, 0, len(raw))
	l.Skipped = 0
	for _, item := range raw {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			l.Skipped++
			continue
		}
		var p TicketPayload
		if err := json.Unmarshal(item, &p); err != nil {
			l.Skipped++
			continue
		}
		l.Items = append(l.Items, p)
	}
	return nil
}

func detectGeneration(fields map[string]json.RawMessage) domain.Generation {
	for _, key := range currentMarkers {
		if _, ok := fields[key]; ok {
			return domain.GenerationCurrent
		}
	}
	if raw, ok := fields["id"]; ok {
		var id FlexID
		if err := json.Unmarshal(raw, &id); err == nil && id != "" && !id.IsNumeric() {
			return domain.GenerationCurrent
		}
	}
	return domain.GenerationLegacy
}

// TicketCreateRequest is the current-generation create payload (POST /tickets/create).
type TicketCreateRequest struct {
	Source   string  `json:"source"`
	UserID   string  `json:"user_id"`
	Subject  *string `json:"subject,omitempty"`
	Body     string  `json:"body"`
	Language string  `json:"language"`
}

// LegacySubmitRequest is the first-generation payload (POST /submit_ticket).
type LegacySubmitRequest struct {
	UserID             string `json:"user_id"`
	Subject            string `json:"subject,omitempty"`
	ProblemDescription string `json:"problem_description"`
}

// LegacySubmitResponse is what /submit_ticket answers with.
type LegacySubmitResponse struct {
	Status             string    `json:"status"`
	Message            string    `json:"message"`
	Queue              string    `json:"queue"`
	NeedsClarification bool      `json:"needs_clarification"`
	ConfidenceWarning  string    `json:"confidence_warning"`
	Confidence         FlexFloat `json:"confidence"`
	TicketID           FlexID    `json:"ticket_id"`
}

// TicketUpdateRequest is the PUT /tickets/{id} payload.
type TicketUpdateRequest struct {
	Status               *string `json:"status,omitempty"`
	Priority             *string `json:"priority,omitempty"`
	CategoryID           *string `json:"category_id,omitempty"`
	AssignedDepartmentID *string `json:"assigned_department_id,omitempty"`
	AssignedOperatorID   *string `json:"assigned_operator_id,omitempty"`
}

// FeedbackRequest is the POST /tickets/{id}/feedback payload.
type FeedbackRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

// LegacyCSATRequest is the POST /tickets/{id}/csat payload.
type LegacyCSATRequest struct {
	Score   int     `json:"score"`
	Comment *string `json:"comment,omitempty"`
}

// HistoryPayload tolerates both history shapes.
type HistoryPayload struct {
	ID          FlexID   `json:"id"`
	TicketID    FlexID   `json:"ticket_id"`
	UserID      FlexID   `json:"user_id"`
	UserName    string   `json:"user_name"`
	ChangedBy   string   `json:"changed_by"`
	Action      string   `json:"action"`
	OldValue    *string  `json:"old_value"`
	NewValue    *string  `json:"new_value"`
	Description *string  `json:"description"`
	CreatedAt   FlexTime `json:"created_at"`
}
