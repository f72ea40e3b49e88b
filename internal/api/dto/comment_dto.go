package dto

// CommentPayload tolerates both comment shapes: current (comment_text,
// user_role) and legacy (text, author, author_type).
type CommentPayload struct {
	ID          FlexID   `json:"id"`
	TicketID    FlexID   `json:"ticket_id"`
	UserID      FlexID   `json:"user_id"`
	UserName    string   `json:"user_name"`
	UserEmail   string   `json:"user_email"`
	UserRole    string   `json:"user_role"`
	CommentText string   `json:"comment_text"`
	Author      string   `json:"author"`
	AuthorType  string   `json:"author_type"`
	Text        string   `json:"text"`
	IsAutoReply bool     `json:"is_auto_reply"`
	CreatedAt   FlexTime `json:"created_at"`
}

// CommentCreateRequest is the current-generation payload.
type CommentCreateRequest struct {
	CommentText string `json:"comment_text"`
	IsAutoReply bool   `json:"is_auto_reply"`
}

// LegacyCommentCreateRequest is the first-generation payload.
type LegacyCommentCreateRequest struct {
	Text       string `json:"text"`
	Author     string `json:"author"`
	AuthorType string `json:"author_type"`
}
