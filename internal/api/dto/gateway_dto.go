package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// Gateway request and response bodies served to the presentation layer.

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Position string `json:"position"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse exposes the session without its secrets.
type SessionResponse struct {
	Email    string             `json:"email"`
	UserID   string             `json:"user_id,omitempty"`
	Name     string             `json:"name,omitempty"`
	Role     string             `json:"role,omitempty"`
	Mode     domain.SessionMode `json:"mode,omitempty"`
	LoggedIn bool               `json:"logged_in"`
	SavedAt  time.Time          `json:"saved_at"`
}

// NewSessionResponse strips token and password hash from sess.
func NewSessionResponse(sess *domain.Session, loggedIn bool) SessionResponse {
	if sess == nil {
		return SessionResponse{LoggedIn: false}
	}
	return SessionResponse{
		Email:    sess.Email,
		UserID:   sess.UserID,
		Name:     sess.Name,
		Role:     sess.Role,
		Mode:     sess.Mode,
		LoggedIn: loggedIn,
		SavedAt:  sess.SavedAt,
	}
}

// SubmitTicketRequest is the body of POST /api/tickets.
type SubmitTicketRequest struct {
	Text string `json:"text"`
}

// UpdateTicketGatewayRequest is the body of PUT /api/tickets/:id.
type UpdateTicketGatewayRequest struct {
	Status               *string `json:"status"`
	Priority             *string `json:"priority"`
	CategoryID           *string `json:"category_id"`
	AssignedDepartmentID *string `json:"assigned_department_id"`
	AssignedOperatorID   *string `json:"assigned_operator_id"`
}

// StatusRequest is the body of PATCH /api/tickets/:id/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// CommentRequest is the body of POST /api/tickets/:id/comments.
type CommentRequest struct {
	Text string `json:"text"`
}

// CSATRequest is the body of POST /api/tickets/:id/csat.
type CSATRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// TemplateRequest is the body of template writes.
type TemplateRequest struct {
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
	Content    string `json:"content"`
	IsActive   *bool  `json:"is_active"`
}

// SearchRequest is the body of POST /api/searches.
type SearchRequest struct {
	Query string `json:"query"`
}
