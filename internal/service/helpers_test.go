package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spec-kit/helpdesk-portal/internal/apiclient"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/fallback"
	"github.com/spec-kit/helpdesk-portal/internal/persistence"
	"github.com/spec-kit/helpdesk-portal/internal/session"
)

type harness struct {
	svc      *Services
	sessions *session.Store
	server   *httptest.Server
}

func newHarness(t *testing.T, backend config.BackendConfig, handler http.HandlerFunc) *harness {
	t.Helper()
	store := session.NewStore(persistence.NewMemoryKV(), session.Options{
		Tokens:     auth.NewTokenManager("test-secret", 60),
		BcryptCost: 4,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Tokens: store})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	policy, err := fallback.NewPolicy(nil, nil, nil)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	svc := New(Dependencies{
		Client:     client,
		Sessions:   store,
		Policy:     policy,
		Simulator:  fallback.NewSeededSimulator(1, 1),
		Dispatcher: events.NewInMemoryDispatcher(),
		Backend:    backend,
	})
	return &harness{svc: svc, sessions: store, server: srv}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := h.sessions.SaveSession(ctx, domain.Session{
		Email:  "user@example.com",
		Token:  "opaque-token",
		UserID: "u-1",
		Mode:   domain.SessionModeBackend,
	}); err != nil {
		t.Fatal(err)
	}
	if err := h.sessions.SetLoggedIn(ctx, true); err != nil {
		t.Fatal(err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(r.Body).Decode(&out); err != nil {
		t.Errorf("decode request body: %v", err)
	}
	return out
}

func failOnCall(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusTeapot)
	}
}
