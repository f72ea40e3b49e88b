package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// TemplatesHandler serves reply templates. Writes are mounted behind the
// operator role check.
type TemplatesHandler struct {
	templates *service.TemplateService
}

// NewTemplatesHandler constructs handler.
func NewTemplatesHandler(templates *service.TemplateService) *TemplatesHandler {
	return &TemplatesHandler{templates: templates}
}

// List GET /api/templates?category=.
func (h *TemplatesHandler) List(c *fiber.Ctx) error {
	items, err := h.templates.List(c.UserContext(), c.Query("category"))
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.Template{}
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/templates/:id.
func (h *TemplatesHandler) Get(c *fiber.Ctx) error {
	tpl, err := h.templates.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tpl})
}

// Create POST /api/templates.
func (h *TemplatesHandler) Create(c *fiber.Ctx) error {
	in, err := parseTemplate(c)
	if err != nil {
		return err
	}
	tpl, err := h.templates.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": tpl})
}

// Update PUT /api/templates/:id.
func (h *TemplatesHandler) Update(c *fiber.Ctx) error {
	in, err := parseTemplate(c)
	if err != nil {
		return err
	}
	tpl, err := h.templates.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tpl})
}

// Delete DELETE /api/templates/:id.
func (h *TemplatesHandler) Delete(c *fiber.Ctx) error {
	if err := h.templates.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseTemplate(c *fiber.Ctx) (domain.TemplateInput, error) {
	var req dto.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.TemplateInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	return domain.TemplateInput{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		Content:    req.Content,
		IsActive:   req.IsActive,
	}, nil
}
