package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

func TestDisplayStatus(t *testing.T) {
	cases := map[string]domain.TicketStatus{
		"new":           domain.TicketStatusOpen,
		"in_work":       domain.TicketStatusInProgress,
		"waiting":       domain.TicketStatusWaiting,
		"auto_resolved": domain.TicketStatusClosed,
		"closed":        domain.TicketStatusClosed,
		"Open":          domain.TicketStatusOpen,
		"In Progress":   domain.TicketStatusInProgress,
		"Waiting":       domain.TicketStatusWaiting,
		"Closed":        domain.TicketStatusClosed,
		"escalated":     domain.TicketStatus("escalated"),
	}
	for in, want := range cases {
		if got := DisplayStatus(in); got != want {
			t.Errorf("DisplayStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNeedsClarificationThreshold(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	cases := []struct {
		conf *float64
		want bool
	}{
		{nil, false},
		{f(0.69), true},
		{f(0.7), false},
		{f(0.95), false},
		{f(0), true},
	}
	for _, tc := range cases {
		if got := NeedsClarification(tc.conf, 0.7); got != tc.want {
			t.Errorf("NeedsClarification(%v) = %v, want %v", tc.conf, got, tc.want)
		}
	}
}

func TestListDecodesBothGenerations(t *testing.T) {
	h := newHarness(t, config.BackendConfig{CategoryNames: map[string]string{"c-1": "Access"}}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tickets" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `[
			{"id": 7, "subject": "VPN", "problem_description": "vpn down", "status": "In Progress", "category": null, "priority": null, "created_at": "2024-05-01T10:00:00"},
			{"id": "2b1f7c1e-8a55-4c1b-9f43-6a7e5d2c1a00", "body": "cannot log in", "status": "auto_resolved", "ai_confidence": 0.91, "category_id": "c-1", "subject": null, "priority": null, "issue_type": null, "created_at": "2024-05-02T08:30:00Z"},
			{"id": 8, "subject": "mail", "status": "new", "ai_confidence": 0.42}
		]`)
	})
	h.login(t)

	got, err := h.svc.Tickets.List(context.Background(), domain.TicketFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tickets, got %d", len(got))
	}

	legacy := got[0]
	if legacy.ID != "7" || legacy.Generation != domain.GenerationLegacy {
		t.Errorf("legacy ticket decoded wrong: %+v", legacy)
	}
	if legacy.Status != domain.TicketStatusInProgress {
		t.Errorf("legacy status = %q", legacy.Status)
	}
	if legacy.Category != "" || legacy.Priority != "" || legacy.Queue != "" || legacy.ProblemType != "" {
		t.Errorf("absent legacy fields must be empty strings: %+v", legacy)
	}

	current := got[1]
	if current.Generation != domain.GenerationCurrent || current.ID != "2b1f7c1e-8a55-4c1b-9f43-6a7e5d2c1a00" {
		t.Errorf("current ticket decoded wrong: %+v", current)
	}
	if current.Status != domain.TicketStatusClosed || !current.AutoClosed {
		t.Errorf("auto_resolved must display as closed and auto-closed: %+v", current)
	}
	if current.Category != "Access" {
		t.Errorf("category id should resolve through the directory, got %q", current.Category)
	}
	if current.NeedsClarification {
		t.Errorf("0.91 confidence must not need clarification")
	}
	if current.CreatedAt.IsZero() {
		t.Errorf("created_at not parsed")
	}

	numericCurrent := got[2]
	if numericCurrent.Generation != domain.GenerationCurrent || numericCurrent.ID != "8" {
		t.Errorf("ai_confidence marks the current schema: %+v", numericCurrent)
	}
	if numericCurrent.Status != domain.TicketStatusOpen || !numericCurrent.NeedsClarification {
		t.Errorf("unexpected mapping: %+v", numericCurrent)
	}
}

func TestListSkipsUndecodableRecords(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[
			{"id": 7, "subject": "VPN", "status": "In Progress"},
			{"id": 9, "subject": "broken", "status": "Closed", "csat_score": 4.5},
			null,
			{"id": "c", "body": "printer jam", "status": "new"}
		]`)
	})
	h.login(t)

	got, err := h.svc.Tickets.List(context.Background(), domain.TicketFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "7" || got[1].ID != "c" {
		t.Fatalf("expected tickets 7 and c, got %+v", got)
	}
}

func TestListFiltersLocally(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "waiting" || q.Get("search") != "printer" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, `[
			{"id": "a", "body": "printer jam", "status": "waiting"},
			{"id": "b", "body": "printer toner", "status": "new"},
			{"id": "c", "body": "laptop", "status": "waiting"}
		]`)
	})
	h.login(t)

	got, err := h.svc.Tickets.Search(context.Background(), "printer", domain.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusWaiting},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only ticket a, got %+v", got)
	}
	if hist := h.sessions.SearchHistory(context.Background()); len(hist) != 1 || hist[0] != "printer" {
		t.Fatalf("search should be recorded, got %v", hist)
	}
}

func TestListSoftEmptyOnBackendError(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"detail":"db down"}`)
	})
	h.login(t)
	got, err := h.svc.Tickets.List(context.Background(), domain.TicketFilter{})
	if err != nil {
		t.Fatalf("expected soft-empty, got %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}

func TestGetTicketHardFails(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"Ticket not found"}`)
	})
	_, err := h.svc.Tickets.Get(context.Background(), "missing")
	var se *apperrors.StatusError
	if !errors.As(err, &se) || se.Status != http.StatusNotFound || se.Message != "Ticket not found" {
		t.Fatalf("expected 404 status error, got %v", err)
	}
}

func TestSubmitCurrentGeneration(t *testing.T) {
	h := newHarness(t, config.BackendConfig{DepartmentNames: map[string]string{"d-1": "IT"}}, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tickets/create" {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer opaque-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		body := decodeBody(t, r)
		if body["user_id"] != "u-1" || body["source"] != "portal" || body["language"] != "ru" || body["body"] != "CRM shows error 500" {
			t.Errorf("unexpected body %v", body)
		}
		writeJSON(w, http.StatusOK, `{"id":"6c9d","body":"CRM shows error 500","status":"new","ai_confidence":0.55,"assigned_department_id":"d-1","priority":null}`)
	})
	h.login(t)

	res, err := h.svc.Tickets.Submit(context.Background(), "  CRM shows error 500 ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Status != domain.SubmissionWarning || res.Queue != "IT" {
		t.Errorf("unexpected result %+v", res)
	}
	if !res.NeedsClarification || res.ConfidenceWarning == "" {
		t.Errorf("0.55 confidence must ask for clarification: %+v", res)
	}
	if res.Ticket == nil || res.Ticket.ID != "6c9d" || res.Ticket.Priority != "" {
		t.Errorf("unexpected ticket %+v", res.Ticket)
	}
}

func TestSubmitLegacyGeneration(t *testing.T) {
	h := newHarness(t, config.BackendConfig{Generation: "legacy"}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/submit_ticket" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body := decodeBody(t, r)
		if body["problem_description"] != "reset my password" {
			t.Errorf("unexpected body %v", body)
		}
		writeJSON(w, http.StatusOK, `{"status":"success","message":"Closed by AI","queue":"IT","needs_clarification":false,"ticket_id":15}`)
	})
	h.login(t)

	res, err := h.svc.Tickets.Submit(context.Background(), "reset my password")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Status != domain.SubmissionSuccess || res.Message != "Closed by AI" || res.NeedsClarification {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Ticket == nil || res.Ticket.ID != "15" {
		t.Errorf("expected ticket id 15, got %+v", res.Ticket)
	}
}

func TestSubmitValidatesBeforeNetwork(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, failOnCall(t))
	h.login(t)
	_, err := h.svc.Tickets.Submit(context.Background(), "   ")
	de := apperrors.ToDomainError(err)
	if de == nil || de.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitWithoutSessionIsUnauthorized(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, failOnCall(t))
	_, err := h.svc.Tickets.Submit(context.Background(), "help")
	de := apperrors.ToDomainError(err)
	if de == nil || de.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestUpdateStatusMapsToBackendTokens(t *testing.T) {
	cases := []struct {
		generation string
		method     string
		want       string
	}{
		{"current", http.MethodPut, "in_work"},
		{"legacy", http.MethodPatch, "In Progress"},
	}
	for _, tc := range cases {
		t.Run(tc.generation, func(t *testing.T) {
			h := newHarness(t, config.BackendConfig{Generation: tc.generation}, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != tc.method || r.URL.Path != "/tickets/42" {
					t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
				}
				body := decodeBody(t, r)
				if body["status"] != tc.want {
					t.Errorf("status sent = %v, want %s", body["status"], tc.want)
				}
				writeJSON(w, http.StatusOK, `{"id":42,"status":"`+tc.want+`","subject":"s"}`)
			})
			h.login(t)
			got, err := h.svc.Tickets.UpdateStatus(context.Background(), "42", "in progress")
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if got.Status != domain.TicketStatusInProgress {
				t.Fatalf("status = %q", got.Status)
			}
		})
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, failOnCall(t))
	if _, err := h.svc.Tickets.UpdateStatus(context.Background(), "1", "archived"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDeletePropagatesErrors(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method %s", r.Method)
		}
		writeJSON(w, http.StatusNotFound, `{"detail":"Ticket not found"}`)
	})
	if err := h.svc.Tickets.Delete(context.Background(), "x"); !apperrors.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404, got %v", err)
	}
}
