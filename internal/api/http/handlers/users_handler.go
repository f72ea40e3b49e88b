package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// UsersHandler exposes the account endpoints of the single local profile.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	sess, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Position: req.Position,
	})
	var partial *service.RegisteredNotLoggedInError
	if errors.As(err, &partial) {
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"data":    dto.SessionResponse{Email: partial.Email, LoggedIn: false},
			"warning": "account created, please log in",
		})
	}
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewSessionResponse(sess, true),
	})
}

// Login handles POST /api/auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	sess, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(sess, true)})
}

// Logout handles POST /api/auth/logout. It always succeeds locally.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, err := h.auth.Me(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": user})
}

// Session handles GET /api/auth/session, the unguarded login-state probe.
func (h *UsersHandler) Session(c *fiber.Ctx) error {
	ctx := c.UserContext()
	loggedIn := h.auth.IsLoggedIn(ctx)
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(h.auth.Session(ctx), loggedIn)})
}
