package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/apiclient"
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/fallback"
	"github.com/spec-kit/helpdesk-portal/internal/session"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// Executor is the slice of the HTTP request executor the adapters use.
type Executor interface {
	Do(ctx context.Context, method, path string, opts *apiclient.RequestOptions, out any) error
}

// Dependencies bundles what every adapter needs.
type Dependencies struct {
	Client     Executor
	Sessions   *session.Store
	Policy     *fallback.Policy
	Simulator  *fallback.Simulator
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Backend    config.BackendConfig
	// Offline routes auth and submission to local demo implementations.
	Offline bool
}

func (d Dependencies) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// client returns the executor, or one that reports the backend as
// unreachable when the facade runs without a backend.
func (d Dependencies) client() Executor {
	if d.Client == nil {
		return offlineExecutor{}
	}
	return d.Client
}

type offlineExecutor struct{}

func (offlineExecutor) Do(_ context.Context, method, path string, _ *apiclient.RequestOptions, _ any) error {
	return &apperrors.NetworkError{Method: method, Path: path, Err: errOffline}
}

var errOffline = errors.New("offline mode, no backend configured")

func (d Dependencies) simulator() *fallback.Simulator {
	if d.Simulator == nil {
		return fallback.NewSimulator()
	}
	return d.Simulator
}

func (d Dependencies) generation() domain.Generation {
	if d.Backend.Generation == string(domain.GenerationLegacy) {
		return domain.GenerationLegacy
	}
	return domain.GenerationCurrent
}

func (d Dependencies) threshold() float64 {
	if d.Backend.ClarifyThreshold <= 0 {
		return defaultClarifyThreshold
	}
	return d.Backend.ClarifyThreshold
}

// currentSession returns the stored session or an UNAUTHORIZED error.
func currentSession(ctx context.Context, sessions *session.Store) (*domain.Session, error) {
	if sessions == nil {
		return nil, apperrors.NewUnauthorized("not logged in")
	}
	sess := sessions.Session(ctx)
	if sess == nil {
		return nil, apperrors.NewUnauthorized("not logged in")
	}
	return sess, nil
}

func publish(ctx context.Context, d events.Dispatcher, logger *zap.Logger, ev events.Event) {
	if d == nil {
		return
	}
	if err := d.Publish(ctx, ev); err != nil {
		logger.Warn("event handler failed", zap.String("event", string(ev.Type)), zap.Error(err))
	}
}

func sessionActor(sess *domain.Session) events.Actor {
	if sess == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: sess.UserID, Email: sess.Email, Role: domain.Role(sess.Role)}
}

// Services groups every adapter behind one value for the outer surfaces.
type Services struct {
	Auth          *AuthService
	Tickets       *TicketService
	Assignments   *AssignmentService
	Comments      *CommentService
	History       *HistoryService
	Feedback      *FeedbackService
	Templates     *TemplateService
	Integrations  *IntegrationService
	Notifications *NotificationService
	Metrics       *MetricsService
	Dashboard     *DashboardService
}

// New wires all adapters over deps.
func New(deps Dependencies) *Services {
	tickets := NewTicketService(deps)
	metrics := NewMetricsService(deps)
	notifications := NewNotificationService(deps)
	notifications.RegisterHandlers()
	return &Services{
		Auth:          NewAuthService(deps),
		Tickets:       tickets,
		Assignments:   NewAssignmentService(deps, tickets),
		Comments:      NewCommentService(deps),
		History:       NewHistoryService(deps),
		Feedback:      NewFeedbackService(deps),
		Templates:     NewTemplateService(deps),
		Integrations:  NewIntegrationService(deps),
		Notifications: notifications,
		Metrics:       metrics,
		Dashboard:     NewDashboardService(metrics, tickets),
	}
}
