package auth

import (
	"strings"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// NormalizeRole maps the role vocabulary of both backend generations onto the
// four roles the client distinguishes. Unknown roles are treated as users.
func NormalizeRole(raw string) domain.Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "administrator":
		return domain.RoleAdmin
	case "operator", "employee", "agent", "staff", "team_lead":
		return domain.RoleOperator
	case "system", "ai", "bot":
		return domain.RoleSystem
	default:
		return domain.RoleUser
	}
}

// IsOperator reports whether the role is staff: an operator or an admin.
// Staff may write reply templates and assign tickets.
func IsOperator(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleOperator
}
