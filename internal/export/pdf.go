package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

const (
	pdfMargin     = 20.0
	pdfLineHeight = 7.0
)

// MetricsPDF renders the metrics report: title, creation date, main metrics,
// optional CSAT and routing error lines and a ticket status breakdown.
func MetricsPDF(w io.Writer, m domain.Metrics, tickets []domain.Ticket, now time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle("Helpdesk metrics report", true)
	pdf.SetCreationDate(now)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	heading := func(size float64, text string) {
		pdf.SetFont("Helvetica", "B", size)
		pdf.MultiCell(0, size*0.5, tr(text), "", "L", false)
		pdf.Ln(3)
	}
	line := func(text string) {
		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, pdfLineHeight, tr(text), "", "L", false)
	}

	heading(20, "Helpdesk metrics report")
	line("Created: " + now.Format("02 January 2006, 15:04"))
	if m.Simulated {
		line("Backend unavailable: values are simulated.")
	}
	pdf.Ln(5)

	heading(16, "Main metrics")
	line(fmt.Sprintf("Automatic resolutions: %s%%", formatNumber(m.Auto)))
	line(fmt.Sprintf("Classification accuracy: %s%%", formatNumber(m.Accuracy)))
	line(fmt.Sprintf("Response time (SLA): %s%%", formatNumber(m.SLA)))
	line(fmt.Sprintf("Backlog: %d", m.Backlog))
	if m.CSAT != nil {
		line(fmt.Sprintf("Customer satisfaction (CSAT): %.1f%%", *m.CSAT))
	}
	if m.RoutingErrorRate != nil {
		line(fmt.Sprintf("Routing errors: %.1f%%", *m.RoutingErrorRate))
	}

	if len(tickets) > 0 {
		pdf.Ln(5)
		heading(16, "Ticket statistics")
		for _, sc := range domain.CountByStatus(tickets) {
			if sc.Count == 0 {
				continue
			}
			line(fmt.Sprintf("%s: %d", sc.Status, sc.Count))
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// PDFFilename is the download name for a report made at now.
func PDFFilename(now time.Time) string {
	return fmt.Sprintf("metrics-report-%s.pdf", now.Format(time.DateOnly))
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
