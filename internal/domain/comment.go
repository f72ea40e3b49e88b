package domain

import "time"

// Comment is one append-only message in a ticket thread.
type Comment struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	Author      string    `json:"author"`
	AuthorRole  Role      `json:"author_type"`
	Text        string    `json:"text"`
	IsAutoReply bool      `json:"is_auto_reply"`
	CreatedAt   time.Time `json:"created_at"`
}
