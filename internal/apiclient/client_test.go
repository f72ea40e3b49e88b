package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{BaseURL: server.URL, Tokens: staticToken(token)})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestDoBuildsRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.EscapedPath() != "/tickets/abc%2F1" {
			t.Errorf("unexpected path %q", r.URL.EscapedPath())
		}
		if got := r.URL.Query().Get("status"); got != "new,in_work" {
			t.Errorf("unexpected status query %q", got)
		}
		if r.URL.Query().Has("skip") {
			t.Error("nil query values must be skipped")
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Errorf("missing bearer header, got %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		if err := json.Unmarshal(body, &payload); err != nil || payload["status"] != "closed" {
			t.Errorf("unexpected body %s", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "abc/1"})
	}, "tok-1")

	var out struct {
		ID string `json:"id"`
	}
	err := client.Put(context.Background(), "/tickets/{ticket_id}", &RequestOptions{
		PathParams: map[string]string{"ticket_id": "abc/1"},
		Query:      map[string]any{"status": []string{"new", "in_work"}, "skip": nil},
		Body:       map[string]string{"status": "closed"},
	}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if out.ID != "abc/1" {
		t.Errorf("expected decoded id, got %q", out.ID)
	}
}

func TestNoTokenNoHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected no auth header, got %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusOK)
	}, "")
	if err := client.Get(context.Background(), "/auth/me", nil, nil); err != nil {
		t.Fatal(err)
	}
}

func TestEmptyBodyReturnsEmptyObject(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, "")

	raw, err := client.DoRaw(context.Background(), http.MethodDelete, "/tickets/1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "{}" {
		t.Errorf("expected {} sentinel, got %q", raw)
	}

	out := struct{ ID string }{ID: "kept"}
	if err := client.Delete(context.Background(), "/tickets/1", nil, &out); err != nil {
		t.Fatal(err)
	}
	if out.ID != "kept" {
		t.Errorf("empty body must leave out untouched, got %+v", out)
	}
}

func TestErrorMessagePriority(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail string", 400, `{"detail":"Email already registered"}`, "Email already registered"},
		{"detail structured", 422, `{"detail":[{"msg":"field required"}]}`, `[{"msg":"field required"}]`},
		{"json without detail", 500, `{"error":"boom"}`, "HTTP 500: Internal Server Error"},
		{"plain text", 502, "upstream exploded", "upstream exploded"},
		{"empty body", 404, "", "HTTP 404: Not Found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}, "")
			err := client.Get(context.Background(), "/x", nil, nil)
			var se *apperrors.StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected StatusError, got %T %v", err, err)
			}
			if se.Status != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, se.Status)
			}
			if se.Message != tc.want {
				t.Errorf("expected message %q, got %q", tc.want, se.Message)
			}
		})
	}
}

func TestNetworkErrorIsDistinct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := New(Config{BaseURL: url})
	if err != nil {
		t.Fatal(err)
	}
	err = client.Get(context.Background(), "/tickets", nil, nil)
	if !apperrors.IsNetwork(err) {
		t.Fatalf("expected NetworkError, got %T %v", err, err)
	}
	var se *apperrors.StatusError
	if errors.As(err, &se) {
		t.Fatal("network failure must not look like an HTTP status error")
	}
}

func TestBaseURLWithPathPrefix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/metrics" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		io.WriteString(w, `{}`)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL + "/api/v1/"})
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Get(context.Background(), "/metrics", nil, nil); err != nil {
		t.Fatal(err)
	}
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	if _, err := New(Config{BaseURL: "localhost"}); err == nil {
		t.Fatal("expected error for relative base url")
	}
}

func TestUnfilledPathParam(t *testing.T) {
	client, err := New(Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Get(context.Background(), "/tickets/{ticket_id}", nil, nil); err == nil {
		t.Fatal("expected error for unfilled placeholder")
	}
}
