package handlers

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/export"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// MetricsHandler serves the analytics snapshot, the dashboard and the PDF report.
type MetricsHandler struct {
	metrics   *service.MetricsService
	tickets   *service.TicketService
	dashboard *service.DashboardService
	now       func() time.Time
}

// NewMetricsHandler constructs handler.
func NewMetricsHandler(svc *service.Services) *MetricsHandler {
	return &MetricsHandler{
		metrics:   svc.Metrics,
		tickets:   svc.Tickets,
		dashboard: svc.Dashboard,
		now:       time.Now,
	}
}

// Metrics GET /api/metrics.
func (h *MetricsHandler) Metrics(c *fiber.Ctx) error {
	m, err := h.metrics.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": m})
}

// Dashboard GET /api/dashboard.
func (h *MetricsHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.dashboard.Load(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": d})
}

// ReportPDF GET /api/metrics/report.pdf.
func (h *MetricsHandler) ReportPDF(c *fiber.Ctx) error {
	var (
		m       domain.Metrics
		tickets []domain.Ticket
	)
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() (err error) {
		m, err = h.metrics.Get(ctx)
		return err
	})
	g.Go(func() (err error) {
		tickets, err = h.tickets.List(ctx, domain.TicketFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	now := h.now()
	var buf bytes.Buffer
	if err := export.MetricsPDF(&buf, m, tickets, now); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Attachment(export.PDFFilename(now))
	return c.Send(buf.Bytes())
}
