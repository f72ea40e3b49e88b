package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/apiclient"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/session"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// RegisterInput is what a new user provides.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Position string
}

// RegisteredNotLoggedInError reports that the account was created but the
// follow-up login failed, so no session was established.
type RegisteredNotLoggedInError struct {
	Email string
	Err   error
}

func (e *RegisteredNotLoggedInError) Error() string {
	return fmt.Sprintf("account %s registered but login failed: %v", e.Email, e.Err)
}

func (e *RegisteredNotLoggedInError) Unwrap() error {
	return e.Err
}

// AuthService coordinates registration, login and logout against the backend
// or, in offline mode, against the local demo account.
type AuthService struct {
	client   Executor
	sessions *session.Store
	logger   *zap.Logger
	offline  bool
}

// NewAuthService builds the service.
func NewAuthService(deps Dependencies) *AuthService {
	return &AuthService{
		client:   deps.client(),
		sessions: deps.Sessions,
		logger:   deps.logger().Named("auth"),
		offline:  deps.Offline,
	}
}

// Register creates an account and then logs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}

	if s.offline {
		return s.sessions.RegisterOffline(ctx, in.Email, in.Password, in.Name)
	}

	req := dto.UserRegisterRequest{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		Role:     "client",
	}
	if in.Phone != "" {
		req.Phone = &in.Phone
	}
	if in.Position != "" {
		req.Position = &in.Position
	}
	var created dto.UserResponse
	if err := s.client.Do(ctx, http.MethodPost, "/auth/register", &apiclient.RequestOptions{Body: req}, &created); err != nil {
		return nil, err
	}
	s.logger.Info("account registered", zap.String("email", in.Email), zap.String("user_id", string(created.ID)))

	sess, err := s.Login(ctx, in.Email, in.Password)
	if err != nil {
		// The new account is not signed in, so no earlier session may stay active.
		if clearErr := s.sessions.Clear(ctx); clearErr != nil {
			s.logger.Warn("clear session after failed login", zap.Error(clearErr))
		}
		return nil, &RegisteredNotLoggedInError{Email: in.Email, Err: err}
	}
	return sess, nil
}

// Login authenticates and persists the session and logged-in flag.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	if s.offline {
		sess, err := s.sessions.LoginOffline(ctx, email, password)
		if errors.Is(err, session.ErrInvalidCredentials) {
			return nil, apperrors.NewUnauthorized(err.Error())
		}
		return sess, err
	}

	var tok dto.TokenResponse
	err := s.client.Do(ctx, http.MethodPost, "/auth/login", &apiclient.RequestOptions{
		Body: dto.UserLoginRequest{Email: email, Password: password},
	}, &tok)
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, apperrors.NewDomainError("UPSTREAM_ERROR", "login response carried no token", http.StatusBadGateway, nil)
	}

	sess := domain.Session{
		Email:  firstNonEmpty(tok.Email, email),
		Token:  tok.AccessToken,
		UserID: string(tok.UserID),
		Name:   tok.Name,
		Role:   string(auth.NormalizeRole(tok.Role)),
		Mode:   domain.SessionModeBackend,
	}
	if prior := s.sessions.Session(ctx); prior != nil && !strings.EqualFold(prior.Email, sess.Email) {
		if err := s.sessions.Clear(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.sessions.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.sessions.SetLoggedIn(ctx, true); err != nil {
		return nil, err
	}
	s.logger.Info("logged in", zap.String("email", sess.Email), zap.String("role", sess.Role))
	return s.sessions.Session(ctx), nil
}

// Me returns the profile of the logged-in user.
func (s *AuthService) Me(ctx context.Context) (*domain.CurrentUser, error) {
	sess, err := currentSession(ctx, s.sessions)
	if err != nil {
		return nil, err
	}
	if s.offline || sess.Mode == domain.SessionModeOffline {
		return &domain.CurrentUser{
			ID:       sess.UserID,
			Email:    sess.Email,
			Name:     sess.Name,
			Role:     sess.Role,
			IsActive: true,
		}, nil
	}

	var me dto.UserResponse
	if err := s.client.Do(ctx, http.MethodGet, "/auth/me", nil, &me); err != nil {
		return nil, err
	}
	user := &domain.CurrentUser{
		ID:       string(me.ID),
		Email:    me.Email,
		Name:     me.Name,
		Role:     string(auth.NormalizeRole(me.Role)),
		Phone:    deref(me.Phone),
		Position: deref(me.Position),
		IsActive: me.IsActive == nil || *me.IsActive,
	}
	return user, nil
}

// Logout tells the backend (best effort) and clears local state.
func (s *AuthService) Logout(ctx context.Context) error {
	sess := s.sessions.Session(ctx)
	if s.offline || (sess != nil && sess.Mode == domain.SessionModeOffline) {
		return s.sessions.LogoutOffline(ctx)
	}
	if sess.HasToken() {
		if err := s.client.Do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
			s.logger.Warn("backend logout failed", zap.Error(err))
		}
	}
	return s.sessions.Clear(ctx)
}

// IsLoggedIn reports the redesigned login state.
func (s *AuthService) IsLoggedIn(ctx context.Context) bool {
	return s.sessions.IsLoggedIn(ctx)
}

func validateCredentials(email, password string) error {
	if email == "" {
		return apperrors.NewValidationError("email is required", map[string]any{"field": "email"})
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperrors.NewValidationError("email is invalid", map[string]any{"field": "email"})
	}
	if password == "" {
		return apperrors.NewValidationError("password is required", map[string]any{"field": "password"})
	}
	return nil
}

// Session returns the stored session, or nil.
func (s *AuthService) Session(ctx context.Context) *domain.Session {
	return s.sessions.Session(ctx)
}
