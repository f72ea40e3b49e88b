package service

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/fallback"
	"github.com/spec-kit/helpdesk-portal/internal/persistence"
	"github.com/spec-kit/helpdesk-portal/internal/session"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

func TestRegisterThenLogin(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/register":
			body := decodeBody(t, r)
			if body["role"] != "client" || body["name"] != "Ann" {
				t.Errorf("unexpected register body %v", body)
			}
			writeJSON(w, http.StatusCreated, `{"id":"u-9","email":"ann@example.com","name":"Ann","role":"client"}`)
		case "/auth/login":
			writeJSON(w, http.StatusOK, `{"access_token":"tok-9","token_type":"bearer","user_id":"u-9","email":"ann@example.com","name":"Ann","role":"employee"}`)
		case "/auth/me":
			if r.Header.Get("Authorization") != "Bearer tok-9" {
				t.Errorf("me without token")
			}
			writeJSON(w, http.StatusOK, `{"id":"u-9","email":"ann@example.com","name":"Ann","role":"employee","phone":null}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	sess, err := h.svc.Auth.Register(ctx, RegisterInput{Email: "ann@example.com", Password: "pw", Name: "Ann"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.Token != "tok-9" || sess.UserID != "u-9" || sess.Role != string(domain.RoleOperator) {
		t.Fatalf("unexpected session %+v", sess)
	}
	if !h.svc.Auth.IsLoggedIn(ctx) {
		t.Fatal("expected logged in")
	}
	me, err := h.svc.Auth.Me(ctx)
	if err != nil || me.ID != "u-9" || me.Role != "operator" || !me.IsActive {
		t.Fatalf("unexpected me %+v err %v", me, err)
	}
}

func TestRegisterLoginFailureLeavesNoSession(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/register":
			writeJSON(w, http.StatusCreated, `{"id":"u-1","email":"bob@example.com","name":"Bob"}`)
		case "/auth/login":
			writeJSON(w, http.StatusUnauthorized, `{"detail":"Invalid credentials"}`)
		}
	})
	ctx := context.Background()

	_, err := h.svc.Auth.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "pw", Name: "Bob"})
	var notLogged *RegisteredNotLoggedInError
	if !errors.As(err, &notLogged) {
		t.Fatalf("expected RegisteredNotLoggedInError, got %v", err)
	}
	if !apperrors.IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("cause should be the login failure, got %v", err)
	}
	if h.sessions.Session(ctx) != nil || h.sessions.IsLoggedIn(ctx) {
		t.Fatal("no session may be established")
	}
}

func TestRegisterLoginFailureDropsEarlierSession(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/register":
			writeJSON(w, http.StatusCreated, `{"id":"u-2","email":"bob@example.com","name":"Bob"}`)
		case "/auth/login":
			writeJSON(w, http.StatusServiceUnavailable, `{"detail":"maintenance"}`)
		}
	})
	h.login(t)
	ctx := context.Background()

	_, err := h.svc.Auth.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "pw", Name: "Bob"})
	var notLogged *RegisteredNotLoggedInError
	if !errors.As(err, &notLogged) {
		t.Fatalf("expected RegisteredNotLoggedInError, got %v", err)
	}
	if h.sessions.IsLoggedIn(ctx) {
		t.Fatal("earlier session must not stay logged in")
	}
	if sess := h.sessions.Session(ctx); sess != nil {
		t.Fatalf("earlier session must be cleared, got %+v", sess)
	}
}

func TestRegisterFailureIsNotWrapped(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"detail":"Email already registered"}`)
	})
	_, err := h.svc.Auth.Register(context.Background(), RegisterInput{Email: "bob@example.com", Password: "pw", Name: "Bob"})
	var notLogged *RegisteredNotLoggedInError
	if errors.As(err, &notLogged) {
		t.Fatal("registration failure must be distinct")
	}
	if !apperrors.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthValidationBeforeNetwork(t *testing.T) {
	h := newHarness(t, config.BackendConfig{}, failOnCall(t))
	ctx := context.Background()
	inputs := []RegisterInput{
		{Email: "", Password: "pw", Name: "A"},
		{Email: "not-an-email", Password: "pw", Name: "A"},
		{Email: "a@b.c", Password: "", Name: "A"},
		{Email: "a@b.c", Password: "pw", Name: "  "},
	}
	for _, in := range inputs {
		_, err := h.svc.Auth.Register(ctx, in)
		if de := apperrors.ToDomainError(err); de == nil || de.Code != "VALIDATION_FAILED" {
			t.Errorf("%+v: expected validation error, got %v", in, err)
		}
	}
	if _, err := h.svc.Auth.Login(ctx, "a@b.c", ""); err == nil {
		t.Error("expected validation error for empty password")
	}
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	var calls atomic.Int32
	h := newHarness(t, config.BackendConfig{}, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Token not found"}`)
	})
	h.login(t)
	ctx := context.Background()
	if err := h.svc.Auth.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected one backend logout call, got %d", calls.Load())
	}
	if h.sessions.Session(ctx) != nil || h.sessions.IsLoggedIn(ctx) {
		t.Fatal("local state must be cleared")
	}
}

func TestOfflineAuthAndSubmission(t *testing.T) {
	store := session.NewStore(persistence.NewMemoryKV(), session.Options{
		Tokens:     auth.NewTokenManager("offline", 60),
		BcryptCost: 4,
	})
	policy, _ := fallback.NewPolicy(nil, nil, nil)
	svc := New(Dependencies{
		Sessions:   store,
		Policy:     policy,
		Simulator:  fallback.NewSeededSimulator(5, 5),
		Dispatcher: events.NewInMemoryDispatcher(),
		Offline:    true,
	})
	ctx := context.Background()

	if _, err := svc.Auth.Register(ctx, RegisterInput{Email: "demo@example.com", Password: "secret", Name: "Demo"}); err != nil {
		t.Fatalf("offline register: %v", err)
	}
	if !svc.Auth.IsLoggedIn(ctx) {
		t.Fatal("expected logged in after offline register")
	}

	res, err := svc.Tickets.Submit(ctx, "Не могу войти в почту")
	if err != nil {
		t.Fatalf("offline submit: %v", err)
	}
	if res.Status != domain.SubmissionSuccess || !res.Simulated || res.Ticket == nil || !res.Ticket.AutoClosed {
		t.Fatalf("unexpected simulated result %+v", res)
	}

	count, err := svc.Notifications.UnreadCount(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected one local notification, got %d (%v)", count, err)
	}
	if err := svc.Notifications.MarkAllRead(ctx); err != nil {
		t.Fatal(err)
	}
	if count, _ := svc.Notifications.UnreadCount(ctx); count != 0 {
		t.Fatalf("expected all read, got %d", count)
	}

	if err := svc.Auth.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if svc.Auth.IsLoggedIn(ctx) {
		t.Fatal("expected logged out")
	}
	if _, err := svc.Auth.Login(ctx, "demo@example.com", "wrong"); err == nil {
		t.Fatal("expected wrong password to fail")
	}
	if _, err := svc.Auth.Login(ctx, "demo@example.com", "secret"); err != nil {
		t.Fatalf("offline login: %v", err)
	}
	me, err := svc.Auth.Me(ctx)
	if err != nil || me.Email != "demo@example.com" {
		t.Fatalf("unexpected me %+v (%v)", me, err)
	}
}
