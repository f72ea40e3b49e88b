package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/session"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// SearchesHandler exposes the locally kept search history and saved searches.
type SearchesHandler struct {
	sessions *session.Store
}

// NewSearchesHandler constructs handler.
func NewSearchesHandler(sessions *session.Store) *SearchesHandler {
	return &SearchesHandler{sessions: sessions}
}

// List GET /api/searches returns history and saved queries together.
func (h *SearchesHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	return c.JSON(fiber.Map{"data": fiber.Map{
		"history": nonNil(h.sessions.SearchHistory(ctx)),
		"saved":   nonNil(h.sessions.SavedSearches(ctx)),
	}})
}

// Save POST /api/searches.
func (h *SearchesHandler) Save(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	saved, err := h.sessions.SaveSearch(c.UserContext(), req.Query)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": nonNil(saved)})
}

// Suggest GET /api/searches/suggest?q=.
func (h *SearchesHandler) Suggest(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": nonNil(h.sessions.Suggest(c.UserContext(), c.Query("q")))})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
