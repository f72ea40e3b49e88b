package auth

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

const sessionKey = "auth_session"

// SessionSource is the part of the session store the guard needs.
type SessionSource interface {
	IsLoggedIn(ctx context.Context) bool
	Session(ctx context.Context) *domain.Session
}

// SessionGuard protects gateway routes that require a logged-in user.
type SessionGuard struct {
	sessions SessionSource
}

// NewSessionGuard constructs middleware.
func NewSessionGuard(sessions SessionSource) *SessionGuard {
	return &SessionGuard{sessions: sessions}
}

// Handle rejects the request with a redirect hint to the entry page when no
// valid session exists.
func (g *SessionGuard) Handle(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if !g.sessions.IsLoggedIn(ctx) {
		return apperrors.NewDomainError("UNAUTHORIZED", "login required", http.StatusUnauthorized,
			map[string]any{"redirect": "/"})
	}
	c.Locals(sessionKey, g.sessions.Session(ctx))
	return c.Next()
}

// SessionFromContext retrieves the session loaded by the guard.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	sess, ok := val.(*domain.Session)
	return sess, ok && sess != nil
}

// RequireOperator rejects sessions whose role is not operator or admin.
func RequireOperator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := SessionFromContext(c)
		if !ok || !IsOperator(NormalizeRole(sess.Role)) {
			return apperrors.NewForbidden("operator or admin role required")
		}
		return c.Next()
	}
}
