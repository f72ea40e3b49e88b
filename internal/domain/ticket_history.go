package domain

import "time"

// HistoryEntry is an immutable audit trail entry for a ticket.
type HistoryEntry struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	Action      string    `json:"action"`
	ChangedBy   string    `json:"changed_by"`
	OldValue    string    `json:"old_value,omitempty"`
	NewValue    string    `json:"new_value,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
