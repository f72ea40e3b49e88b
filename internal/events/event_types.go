package events

import (
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketSubmitted     EventType = "ticket_submitted"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventCommentAdded        EventType = "comment_added"
	EventFeedbackSubmitted   EventType = "feedback_submitted"
	EventNotificationsPolled EventType = "notifications_polled"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Email  string      `json:"email,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a facade-level event emitted by adapters and the poller.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id,omitempty"`
	Actor     Actor     `json:"actor"`
	Offline   bool      `json:"offline,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketSubmittedPayload payload.
type TicketSubmittedPayload struct {
	Outcome            domain.SubmissionOutcome `json:"outcome"`
	Message            string                   `json:"message"`
	Queue              string                   `json:"queue,omitempty"`
	NeedsClarification bool                     `json:"needs_clarification"`
	Simulated          bool                     `json:"simulated,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OperatorID   string `json:"operator_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	BodyPreview string `json:"body_preview"`
}

// FeedbackSubmittedPayload payload.
type FeedbackSubmittedPayload struct {
	Score int `json:"score"`
}

// NotificationsPolledPayload payload.
type NotificationsPolledPayload struct {
	Unread int `json:"unread"`
	// New holds notifications not seen by the previous poll.
	New []domain.Notification `json:"new,omitempty"`
}
