package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/fallback"
	"github.com/spec-kit/helpdesk-portal/internal/observability"
	"github.com/spec-kit/helpdesk-portal/internal/service"
)

// SystemHandler reports integrations and the gateway's own operating state.
type SystemHandler struct {
	integrations *service.IntegrationService
	policy       *fallback.Policy
	metrics      *observability.Metrics
}

// NewSystemHandler constructs handler.
func NewSystemHandler(integrations *service.IntegrationService, policy *fallback.Policy, metrics *observability.Metrics) *SystemHandler {
	return &SystemHandler{integrations: integrations, policy: policy, metrics: metrics}
}

// Integrations GET /api/integrations.
func (h *SystemHandler) Integrations(c *fiber.Ctx) error {
	items, err := h.integrations.List(c.UserContext())
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.Integration{}
	}
	return c.JSON(fiber.Map{"data": items})
}

// Fallbacks GET /api/system/fallbacks lists the effective fallback table.
func (h *SystemHandler) Fallbacks(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.policy.Entries()})
}

// Stats GET /api/system/stats returns the in-memory request counters.
func (h *SystemHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
