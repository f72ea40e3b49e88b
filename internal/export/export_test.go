package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

func TestTicketsCSV(t *testing.T) {
	created := time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC)
	closed := created.Add(26 * time.Hour)
	tickets := []domain.Ticket{
		{ID: "1", Subject: `Printer "HP", floor 2`, Status: domain.TicketStatusClosed, Category: "Hardware", Priority: "high", CreatedAt: created, ClosedAt: &closed},
		{ID: "abc", Subject: "VPN", Status: domain.TicketStatusOpen, CreatedAt: created},
	}
	var buf bytes.Buffer
	if err := TicketsCSV(&buf, tickets); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\ufeff") {
		t.Fatal("missing BOM")
	}
	lines := strings.Split(strings.TrimPrefix(out, "\ufeff"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if lines[0] != "ID,Subject,Status,Category,Priority,Created,Closed" {
		t.Errorf("unexpected header %q", lines[0])
	}
	want1 := `"1","Printer ""HP"", floor 2","Closed","Hardware","high","2024-03-05 09:07","2024-03-06 11:07"`
	if lines[1] != want1 {
		t.Errorf("row 1:\n got %s\nwant %s", lines[1], want1)
	}
	want2 := `"abc","VPN","Open","","","2024-03-05 09:07",""`
	if lines[2] != want2 {
		t.Errorf("row 2:\n got %s\nwant %s", lines[2], want2)
	}
}

func TestTicketsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := TicketsCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\ufeffID,Subject,Status,Category,Priority,Created,Closed" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestMetricsPDF(t *testing.T) {
	csat := 87.5
	var buf bytes.Buffer
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	err := MetricsPDF(&buf, domain.Metrics{Auto: 80, Accuracy: 91.2, SLA: 97, Backlog: 12, CSAT: &csat},
		[]domain.Ticket{{Status: domain.TicketStatusOpen}, {Status: domain.TicketStatusClosed}}, now)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	if got := PDFFilename(now); got != "metrics-report-2024-03-05.pdf" {
		t.Errorf("unexpected filename %q", got)
	}
	if got := CSVFilename(now); got != "tickets-2024-03-05.csv" {
		t.Errorf("unexpected filename %q", got)
	}
}
