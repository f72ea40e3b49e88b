package service

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

func TestHistorySoftEmpty(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, status, `{"detail":"nope"}`)
		})
		got, err := h.svc.History.List(context.Background(), "1")
		if err != nil {
			t.Fatalf("status %d: expected no error, got %v", status, err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("status %d: expected empty list, got %#v", status, got)
		}
	}
}

func TestCommentsBothShapes(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[
			{"id":"c1","ticket_id":"t","user_name":"Olga","user_role":"employee","comment_text":"On it","is_auto_reply":false},
			{"id":2,"author":"bot","author_type":"system","text":"Auto reply","is_auto_reply":true}
		]`)
	})
	got, err := h.svc.Comments.List(context.Background(), "t")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(got))
	}
	if got[0].Author != "Olga" || got[0].AuthorRole != domain.RoleOperator || got[0].Text != "On it" {
		t.Errorf("unexpected current comment %+v", got[0])
	}
	if got[1].ID != "2" || got[1].AuthorRole != domain.RoleSystem || got[1].TicketID != "t" || !got[1].IsAutoReply {
		t.Errorf("unexpected legacy comment %+v", got[1])
	}
}

func TestCommentAddHardFails(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `oops`)
	})
	h.login(t)
	_, err := h.svc.Comments.Add(context.Background(), "t", "hello")
	if !apperrors.IsStatus(err, http.StatusInternalServerError) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestFeedbackRoutes(t *testing.T) {
	cases := map[string]string{"current": "/tickets/9/feedback", "legacy": "/tickets/9/csat"}
	for gen, path := range cases {
		t.Run(gen, func(t *testing.T) {
			h := newHarness(t, config.BackendConfig{Generation: gen}, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != path {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(http.StatusOK)
			})
			if err := h.svc.Feedback.SubmitCSAT(context.Background(), "9", 5, "great"); err != nil {
				t.Fatal(err)
			}
		})
	}
	h := newHarness(t, config.BackendConfig{}, failOnCall(t))
	if err := h.svc.Feedback.SubmitCSAT(context.Background(), "9", 6, ""); err == nil {
		t.Fatal("score 6 must be rejected")
	}
}

func TestTemplatesFallBackToStock(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"Not Found"}`)
	})
	got, err := h.svc.Templates.List(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected stock templates, got %+v", got)
	}
}

func TestTemplatesCurrentShape(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("category_name") != "Billing" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, `[{"id":"t1","name":"Refund","category_id":"c9","category_name":"Billing","content":"We refunded you","is_active":false}]`)
	})
	got, err := h.svc.Templates.List(context.Background(), "Billing")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Content != "We refunded you" || got[0].Category != "Billing" || got[0].IsActive {
		t.Fatalf("unexpected templates %+v", got)
	}
}

func TestNotificationsUseSessionUser(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("user_id") != "u-1" {
			t.Errorf("missing user id: %s", r.URL.RawQuery)
		}
		switch r.URL.Path {
		case "/notifications":
			writeJSON(w, http.StatusOK, `[{"id":"n1","user_id":"u-1","notification_type":"status_changed","title":"T","message":"M","is_read":false}]`)
		case "/notifications/unread/count":
			writeJSON(w, http.StatusOK, `{"count":1}`)
		}
	})
	h.login(t)
	ctx := context.Background()
	list, err := h.svc.Notifications.List(ctx, true)
	if err != nil || len(list) != 1 || list[0].Type != "status_changed" {
		t.Fatalf("unexpected list %+v (%v)", list, err)
	}
	count, err := h.svc.Notifications.UnreadCount(ctx)
	if err != nil || count != 1 {
		t.Fatalf("unexpected count %d (%v)", count, err)
	}

	first, err := h.svc.Notifications.Poll(ctx)
	if err != nil || len(first.New) != 1 {
		t.Fatalf("first poll should report the notification: %+v (%v)", first, err)
	}
	second, _ := h.svc.Notifications.Poll(ctx)
	if len(second.New) != 0 || second.Unread != 1 {
		t.Fatalf("second poll should not repeat: %+v", second)
	}
}

func TestPollForgetsReadNotificationsAndResetsPerUser(t *testing.T) {
	var body atomic.Pointer[string]
	set := func(v string) { body.Store(&v) }
	set(`[{"id":"n1","is_read":false},{"id":"n2","is_read":false}]`)
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, *body.Load())
	})
	h.login(t)
	ctx := context.Background()

	if got, _ := h.svc.Notifications.Poll(ctx); len(got.New) != 2 {
		t.Fatalf("expected both notifications as new, got %+v", got)
	}
	set(`[{"id":"n2","is_read":false}]`)
	if got, _ := h.svc.Notifications.Poll(ctx); len(got.New) != 0 || got.Unread != 1 {
		t.Fatalf("expected nothing new, got %+v", got)
	}
	set(`[{"id":"n1","is_read":false},{"id":"n2","is_read":false}]`)
	got, _ := h.svc.Notifications.Poll(ctx)
	if len(got.New) != 1 || got.New[0].ID != "n1" {
		t.Fatalf("n1 was dropped from the seen set and should be new again, got %+v", got)
	}

	if err := h.sessions.SaveSession(ctx, domain.Session{
		Email:  "other@example.com",
		Token:  "other-token",
		UserID: "u-2",
		Mode:   domain.SessionModeBackend,
	}); err != nil {
		t.Fatal(err)
	}
	if got, _ := h.svc.Notifications.Poll(ctx); len(got.New) != 2 {
		t.Fatalf("a different user should see every unread notification as new, got %+v", got)
	}
}
