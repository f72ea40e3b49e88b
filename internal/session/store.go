// Package session persists the client's identity, login flag and auxiliary
// local state (search history, saved searches, notification log) behind a
// persistence.KV backend.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/persistence"
)

// Storage keys. Kept compatible with the browser client's localStorage layout.
const (
	KeySession         = "user"
	KeyLogged          = "logged"
	KeySearchHistory   = "ticket_search_history"
	KeySavedSearches   = "saved_searches"
	KeyNotificationLog = "notification_log"
)

var (
	// ErrNoSession is returned by operations that require an existing session record.
	ErrNoSession = errors.New("no session stored")
	// ErrInvalidCredentials is returned by the offline login path.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Store is the session context injected into the data-access layer.
type Store struct {
	kv         persistence.KV
	tokens     *auth.TokenManager
	bcryptCost int
	logLimit   int
	logger     *zap.Logger
	now        func() time.Time
}

// Options configures a Store.
type Options struct {
	Tokens     *auth.TokenManager
	BcryptCost int
	LogLimit   int
	Logger     *zap.Logger
}

// NewStore creates a Store over kv.
func NewStore(kv persistence.KV, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := opts.LogLimit
	if limit <= 0 {
		limit = 50
	}
	return &Store{
		kv:         kv,
		tokens:     opts.Tokens,
		bcryptCost: opts.BcryptCost,
		logLimit:   limit,
		logger:     logger.Named("session"),
		now:        time.Now,
	}
}

// SaveSession persists sess. Fields left empty are taken from the stored
// record when it belongs to the same identity.
func (s *Store) SaveSession(ctx context.Context, sess domain.Session) error {
	if prior := s.Session(ctx); prior != nil && (sess.Email == "" || strings.EqualFold(sess.Email, prior.Email)) {
		mergeSession(&sess, prior)
	}
	if sess.Email == "" {
		return errors.New("session identity is required")
	}
	sess.SavedAt = s.now().UTC()
	return s.writeJSON(ctx, KeySession, sess)
}

func mergeSession(dst *domain.Session, prior *domain.Session) {
	if dst.Email == "" {
		dst.Email = prior.Email
	}
	if dst.PasswordHash == "" {
		dst.PasswordHash = prior.PasswordHash
	}
	if dst.Token == "" {
		dst.Token = prior.Token
	}
	if dst.UserID == "" {
		dst.UserID = prior.UserID
	}
	if dst.Name == "" {
		dst.Name = prior.Name
	}
	if dst.Role == "" {
		dst.Role = prior.Role
	}
	if dst.Mode == "" {
		dst.Mode = prior.Mode
	}
}

// SaveToken merges token and identity fields into an existing session.
// It returns ErrNoSession when nothing is stored yet.
func (s *Store) SaveToken(ctx context.Context, token, userID, name, role string) error {
	prior := s.Session(ctx)
	if prior == nil {
		return ErrNoSession
	}
	return s.SaveSession(ctx, domain.Session{
		Email:  prior.Email,
		Token:  token,
		UserID: userID,
		Name:   name,
		Role:   role,
	})
}

// Session returns the stored record, or nil when it is absent or unparseable.
func (s *Store) Session(ctx context.Context) *domain.Session {
	if s == nil {
		return nil
	}
	var sess domain.Session
	if !s.readJSON(ctx, KeySession, &sess) {
		return nil
	}
	if sess.Email == "" && sess.Token == "" {
		return nil
	}
	return &sess
}

// Token returns the bearer token of the current session, if any.
func (s *Store) Token(ctx context.Context) (string, error) {
	if sess := s.Session(ctx); sess != nil {
		return sess.Token, nil
	}
	return "", nil
}

// SetLoggedIn persists the login flag.
func (s *Store) SetLoggedIn(ctx context.Context, flag bool) error {
	val := "0"
	if flag {
		val = "1"
	}
	return s.kv.Set(ctx, KeyLogged, val)
}

// IsLoggedIn reports whether the flag is set and a session with a usable token
// exists. The flag alone never makes a user logged in.
func (s *Store) IsLoggedIn(ctx context.Context) bool {
	flag, err := s.kv.Get(ctx, KeyLogged)
	if err != nil || flag != "1" {
		return false
	}
	sess := s.Session(ctx)
	if !sess.HasToken() {
		return false
	}
	if sess.Mode == domain.SessionModeOffline {
		if s.tokens == nil {
			return false
		}
		_, err := s.tokens.ParseToken(sess.Token)
		return err == nil
	}
	return auth.TokenUsable(sess.Token, s.now())
}

// Clear removes the session record and the login flag. Safe to call repeatedly.
func (s *Store) Clear(ctx context.Context) error {
	return errors.Join(
		s.kv.Delete(ctx, KeySession),
		s.kv.Delete(ctx, KeyLogged),
	)
}

// RegisterOffline creates a local demo account and logs it in.
func (s *Store) RegisterOffline(ctx context.Context, email, password, name string) (*domain.Session, error) {
	if s.tokens == nil {
		return nil, errors.New("offline mode not configured")
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	userID := uuid.NewString()
	token, _, err := s.tokens.GenerateToken(userID, email, name, string(domain.RoleUser))
	if err != nil {
		return nil, fmt.Errorf("mint offline token: %w", err)
	}
	// A fresh registration replaces whatever was stored before.
	if err := s.Clear(ctx); err != nil {
		return nil, err
	}
	sess := domain.Session{
		Email:        email,
		PasswordHash: hash,
		Token:        token,
		UserID:       userID,
		Name:         name,
		Role:         string(domain.RoleUser),
		Mode:         domain.SessionModeOffline,
	}
	if err := s.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.SetLoggedIn(ctx, true); err != nil {
		return nil, err
	}
	return s.Session(ctx), nil
}

// LoginOffline verifies credentials against the locally registered demo
// account and issues a fresh local token.
func (s *Store) LoginOffline(ctx context.Context, email, password string) (*domain.Session, error) {
	if s.tokens == nil {
		return nil, errors.New("offline mode not configured")
	}
	sess := s.Session(ctx)
	if sess == nil || sess.Mode != domain.SessionModeOffline || sess.PasswordHash == "" ||
		!strings.EqualFold(sess.Email, email) {
		return nil, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(sess.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, _, err := s.tokens.GenerateToken(sess.UserID, sess.Email, sess.Name, sess.Role)
	if err != nil {
		return nil, fmt.Errorf("mint offline token: %w", err)
	}
	if err := s.SaveToken(ctx, token, sess.UserID, sess.Name, sess.Role); err != nil {
		return nil, err
	}
	if err := s.SetLoggedIn(ctx, true); err != nil {
		return nil, err
	}
	return s.Session(ctx), nil
}

// LogoutOffline drops the token and flag but keeps the demo account so the
// user can log in again.
func (s *Store) LogoutOffline(ctx context.Context) error {
	sess := s.Session(ctx)
	if sess == nil {
		return s.Clear(ctx)
	}
	sess.Token = ""
	if err := s.writeJSON(ctx, KeySession, sess); err != nil {
		return err
	}
	return s.SetLoggedIn(ctx, false)
}

func (s *Store) readJSON(ctx context.Context, key string, out any) bool {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			s.logger.Warn("read local state", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Warn("discarding unparseable local state", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) writeJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, string(data))
}
