package domain

import "time"

// Role is the normalized author/user role.
type Role string

const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
	RoleSystem   Role = "system"
	RoleAdmin    Role = "admin"
)

// SessionMode tells whether the session came from the backend or the offline demo path.
type SessionMode string

const (
	SessionModeBackend SessionMode = "backend"
	SessionModeOffline SessionMode = "offline"
)

// Session is the locally persisted identity record.
type Session struct {
	Email        string      `json:"email"`
	PasswordHash string      `json:"password_hash,omitempty"`
	Token        string      `json:"token,omitempty"`
	UserID       string      `json:"userId,omitempty"`
	Name         string      `json:"name,omitempty"`
	Role         string      `json:"role,omitempty"`
	Mode         SessionMode `json:"mode,omitempty"`
	SavedAt      time.Time   `json:"saved_at"`
}

// HasToken reports whether the session carries a bearer token.
func (s *Session) HasToken() bool {
	return s != nil && s.Token != ""
}

// CurrentUser is the profile returned by GET /auth/me.
type CurrentUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Phone    string `json:"phone,omitempty"`
	Position string `json:"position,omitempty"`
	IsActive bool   `json:"is_active"`
}
