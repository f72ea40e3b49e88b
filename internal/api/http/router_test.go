package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/bootstrap"
	"github.com/spec-kit/helpdesk-portal/internal/config"
)

func newOfflineApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		App:     config.AppConfig{Name: "helpdesk-portal", Version: "test", Offline: true},
		Backend: config.BackendConfig{BaseURL: "http://127.0.0.1:1", Generation: "current", ClarifyThreshold: 0.7},
		Storage: config.StorageConfig{Driver: "memory"},
		Auth:    config.AuthConfig{DemoSecret: "test", DemoTokenTTLMinutes: 60, BcryptCost: 4},
	}
	rt, err := bootstrap.Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	t.Cleanup(rt.Close)
	return NewApp(ServerConfig{
		App:         cfg.App,
		Metrics:     rt.Metrics,
		Services:    rt.Services,
		Sessions:    rt.Sessions,
		Policy:      rt.Policy,
		StoragePing: rt.Storage.Ping,
	})
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(raw) > 0 && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthRoutes(t *testing.T) {
	app := newOfflineApp(t)

	resp, body := do(t, app, http.MethodGet, "/health/live", "")
	if resp.StatusCode != http.StatusOK || body["status"] != "alive" {
		t.Fatalf("live: %d %v", resp.StatusCode, body)
	}
	resp, body = do(t, app, http.MethodGet, "/health/ready", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ready: %d %v", resp.StatusCode, body)
	}
	deps, _ := body["dependencies"].(map[string]any)
	if deps["storage"] != "ok" || deps["backend"] != "skipped" {
		t.Fatalf("unexpected dependency report %v", deps)
	}
}

func TestProtectedRoutesRedirectWhenLoggedOut(t *testing.T) {
	app := newOfflineApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/tickets", "")
	if resp.StatusCode != http.StatusUnauthorized || errorCode(body) != "UNAUTHORIZED" {
		t.Fatalf("expected 401, got %d %v", resp.StatusCode, body)
	}
	details, _ := body["error"].(map[string]any)["details"].(map[string]any)
	if details["redirect"] != "/" {
		t.Fatalf("expected redirect hint, got %v", details)
	}

	resp, body = do(t, app, http.MethodGet, "/api/auth/session", "")
	data, _ := body["data"].(map[string]any)
	if resp.StatusCode != http.StatusOK || data["logged_in"] != false {
		t.Fatalf("session check: %d %v", resp.StatusCode, body)
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	app := newOfflineApp(t)
	resp, body := do(t, app, http.MethodGet, "/nope", "")
	if resp.StatusCode != http.StatusNotFound || errorCode(body) != "NOT_FOUND" {
		t.Fatalf("expected 404, got %d %v", resp.StatusCode, body)
	}
}

func TestOfflineFlowThroughGateway(t *testing.T) {
	app := newOfflineApp(t)

	resp, body := do(t, app, http.MethodPost, "/api/auth/register",
		`{"email":"demo@example.com","password":"secret","name":"Demo"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: %d %v", resp.StatusCode, body)
	}
	data, _ := body["data"].(map[string]any)
	if data["logged_in"] != true || data["email"] != "demo@example.com" {
		t.Fatalf("unexpected session %v", data)
	}
	if _, leaked := data["token"]; leaked {
		t.Fatal("token must not be exposed")
	}

	resp, body = do(t, app, http.MethodPost, "/api/tickets", `{"text":"Не могу войти в почту"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: %d %v", resp.StatusCode, body)
	}
	result, _ := body["data"].(map[string]any)
	if result["status"] != "success" || result["simulated"] != true {
		t.Fatalf("unexpected submission %v", result)
	}

	resp, body = do(t, app, http.MethodGet, "/api/notifications/unread/count", "")
	count, _ := body["data"].(map[string]any)["count"].(float64)
	if resp.StatusCode != http.StatusOK || count != 1 {
		t.Fatalf("unread count: %d %v", resp.StatusCode, body)
	}

	resp, body = do(t, app, http.MethodGet, "/api/tickets", "")
	if list, ok := body["data"].([]any); resp.StatusCode != http.StatusOK || !ok || len(list) != 0 {
		t.Fatalf("offline list should soft-empty: %d %v", resp.StatusCode, body)
	}

	resp, body = do(t, app, http.MethodPost, "/api/templates", `{"name":"x","content":"y"}`)
	if resp.StatusCode != http.StatusForbidden || errorCode(body) != "FORBIDDEN" {
		t.Fatalf("template write as user: %d %v", resp.StatusCode, body)
	}

	resp, _ = do(t, app, http.MethodPost, "/api/auth/logout", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
	resp, _ = do(t, app, http.MethodGet, "/api/tickets", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestTicketQueryValidation(t *testing.T) {
	app := newOfflineApp(t)
	do(t, app, http.MethodPost, "/api/auth/register", `{"email":"demo@example.com","password":"secret","name":"Demo"}`)

	for _, path := range []string{
		"/api/tickets?status=Bogus",
		"/api/tickets?from=yesterday",
		"/api/tickets?limit=-1",
	} {
		resp, body := do(t, app, http.MethodGet, path, "")
		if resp.StatusCode != http.StatusBadRequest || errorCode(body) != "VALIDATION_FAILED" {
			t.Fatalf("%s: expected 400, got %d %v", path, resp.StatusCode, body)
		}
	}
}

func TestExportAndReportDownloads(t *testing.T) {
	app := newOfflineApp(t)
	do(t, app, http.MethodPost, "/api/auth/register", `{"email":"demo@example.com","password":"secret","name":"Demo"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/tickets/export.csv", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv") {
		t.Fatalf("csv: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.HasPrefix(string(raw), "\ufeffID,Subject,Status") {
		t.Fatalf("unexpected csv %q", raw)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "tickets-") {
		t.Fatalf("missing attachment name: %q", resp.Header.Get("Content-Disposition"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/metrics/report.pdf", nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ = io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(string(raw), "%PDF") {
		t.Fatalf("pdf: %d %q", resp.StatusCode, raw[:min(len(raw), 16)])
	}
}

func TestFallbackTableIsExposed(t *testing.T) {
	app := newOfflineApp(t)
	do(t, app, http.MethodPost, "/api/auth/register", `{"email":"demo@example.com","password":"secret","name":"Demo"}`)

	resp, body := do(t, app, http.MethodGet, "/api/system/fallbacks", "")
	entries, _ := body["data"].([]any)
	if resp.StatusCode != http.StatusOK || len(entries) == 0 {
		t.Fatalf("fallbacks: %d %v", resp.StatusCode, body)
	}
	found := false
	for _, e := range entries {
		m, _ := e.(map[string]any)
		if m["endpoint"] == "tickets.update" {
			found = m["mode"] == "hard_fail"
		}
	}
	if !found {
		t.Fatalf("tickets.update should be hard_fail: %v", entries)
	}
}
