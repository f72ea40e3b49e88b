// Package export renders ticket lists and metrics into downloadable files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

const (
	csvBOM        = "\ufeff"
	csvDateLayout = "2006-01-02 15:04"
)

var csvHeader = []string{"ID", "Subject", "Status", "Category", "Priority", "Created", "Closed"}

// TicketsCSV writes tickets as a BOM-prefixed CSV with every data field quoted.
func TicketsCSV(w io.Writer, tickets []domain.Ticket) error {
	var b strings.Builder
	b.WriteString(csvBOM)
	b.WriteString(strings.Join(csvHeader, ","))
	for _, t := range tickets {
		b.WriteByte('\n')
		row := []string{
			t.ID,
			t.Subject,
			string(t.Status),
			t.Category,
			t.Priority,
			formatCSVTime(t.CreatedAt),
			formatCSVTimePtr(t.ClosedAt),
		}
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(cell))
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// CSVFilename is the download name for an export made at now.
func CSVFilename(now time.Time) string {
	return fmt.Sprintf("tickets-%s.csv", now.Format(time.DateOnly))
}

func quote(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

func formatCSVTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(csvDateLayout)
}

func formatCSVTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatCSVTime(*t)
}
