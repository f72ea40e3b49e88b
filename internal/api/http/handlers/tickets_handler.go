package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/export"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// TicketsHandler manages the ticket endpoints of the logged-in user.
type TicketsHandler struct {
	tickets  *service.TicketService
	comments *service.CommentService
	history  *service.HistoryService
	feedback *service.FeedbackService
	now      func() time.Time
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(svc *service.Services) *TicketsHandler {
	return &TicketsHandler{
		tickets:  svc.Tickets,
		comments: svc.Comments,
		history:  svc.History,
		feedback: svc.Feedback,
		now:      time.Now,
	}
}

// Submit POST /api/tickets.
func (h *TicketsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.tickets.Submit(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": result})
}

// List GET /api/tickets. A non-empty q goes through search so it lands in
// the search history.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter, err := parseTicketFilter(c)
	if err != nil {
		return err
	}
	var tickets []domain.Ticket
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		tickets, err = h.tickets.Search(c.UserContext(), q, filter)
	} else {
		tickets, err = h.tickets.List(c.UserContext(), filter)
	}
	if err != nil {
		return err
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return c.JSON(fiber.Map{"data": tickets})
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// Update PUT /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketGatewayRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	upd := domain.TicketUpdate{
		Priority:             req.Priority,
		CategoryID:           req.CategoryID,
		AssignedDepartmentID: req.AssignedDepartmentID,
		AssignedOperatorID:   req.AssignedOperatorID,
	}
	if req.Status != nil {
		st, ok := service.ParseDisplayStatus(*req.Status)
		if !ok {
			return apperrors.NewValidationError("unknown status", map[string]any{"status": *req.Status})
		}
		upd.Status = &st
	}
	ticket, err := h.tickets.Update(c.UserContext(), c.Params("id"), upd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// UpdateStatus PATCH /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// Delete DELETE /api/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.tickets.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ExportCSV GET /api/tickets/export.csv, honoring the list filters.
func (h *TicketsHandler) ExportCSV(c *fiber.Ctx) error {
	filter, err := parseTicketFilter(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.TicketsCSV(&buf, tickets); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(export.CSVFilename(h.now()))
	return c.Send(buf.Bytes())
}

// Comments GET /api/tickets/:id/comments.
func (h *TicketsHandler) Comments(c *fiber.Ctx) error {
	comments, err := h.comments.List(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return c.JSON(fiber.Map{"data": comments})
}

// AddComment POST /api/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.comments.Add(c.UserContext(), c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": comment})
}

// History GET /api/tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	entries, err := h.history.List(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return c.JSON(fiber.Map{"data": entries})
}

// SubmitCSAT POST /api/tickets/:id/csat.
func (h *TicketsHandler) SubmitCSAT(c *fiber.Ctx) error {
	var req dto.CSATRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.feedback.SubmitCSAT(c.UserContext(), c.Params("id"), req.Score, req.Comment); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// parseTicketFilter reads status, category and priority (comma separated or
// repeated), from/to dates and skip/limit paging.
func parseTicketFilter(c *fiber.Ctx) (domain.TicketFilter, error) {
	var filter domain.TicketFilter
	for _, raw := range queryList(c, "status") {
		st, ok := service.ParseDisplayStatus(raw)
		if !ok {
			return filter, apperrors.NewValidationError("unknown status", map[string]any{"status": raw})
		}
		filter.Statuses = append(filter.Statuses, st)
	}
	filter.Categories = queryList(c, "category")
	filter.Priorities = queryList(c, "priority")

	for _, bound := range []struct {
		key string
		dst **time.Time
	}{{"from", &filter.DateFrom}, {"to", &filter.DateTo}} {
		raw := strings.TrimSpace(c.Query(bound.key))
		if raw == "" {
			continue
		}
		t := dto.ParseTime(raw)
		if t.IsZero() {
			return filter, apperrors.NewValidationError("invalid date", map[string]any{bound.key: raw})
		}
		*bound.dst = &t
	}

	var err error
	if filter.Skip, err = queryInt(c, "skip"); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		return filter, err
	}
	return filter, nil
}

func queryList(c *fiber.Ctx, key string) []string {
	var out []string
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		if string(k) != key {
			return
		}
		for _, part := range strings.Split(string(v), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	})
	return out
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.NewValidationError("invalid "+key, map[string]any{key: raw})
	}
	return v, nil
}
