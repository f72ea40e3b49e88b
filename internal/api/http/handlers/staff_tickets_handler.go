package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// StaffTicketsHandler serves the operator-only ticket routing endpoints.
type StaffTicketsHandler struct {
	assignments *service.AssignmentService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(assignments *service.AssignmentService) *StaffTicketsHandler {
	return &StaffTicketsHandler{assignments: assignments}
}

type assignRequest struct {
	OperatorID   string `json:"operator_id"`
	DepartmentID string `json:"department_id"`
}

// SelfAssign POST /api/staff/tickets/:id/take.
func (h *StaffTicketsHandler) SelfAssign(c *fiber.Ctx) error {
	ticket, err := h.assignments.SelfAssign(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// Assign PUT /api/staff/tickets/:id/assign. Exactly one of operator_id and
// department_id must be set.
func (h *StaffTicketsHandler) Assign(c *fiber.Ctx) error {
	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	op, dept := strings.TrimSpace(req.OperatorID), strings.TrimSpace(req.DepartmentID)
	if (op == "") == (dept == "") {
		return apperrors.NewValidationError("set exactly one of operator_id and department_id", nil)
	}

	var (
		ticket *domain.Ticket
		err    error
	)
	if op != "" {
		ticket, err = h.assignments.AssignToOperator(c.UserContext(), c.Params("id"), op)
	} else {
		ticket, err = h.assignments.AssignToDepartment(c.UserContext(), c.Params("id"), dept)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}
