package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/apiclient"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/fallback"
	"github.com/spec-kit/helpdesk-portal/internal/session"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// NotificationService reads backend notifications and, in offline mode, the
// locally simulated notification log fed by facade events.
type NotificationService struct {
	client     Executor
	sessions   *session.Store
	policy     *fallback.Policy
	dispatcher events.Dispatcher
	logger     *zap.Logger
	offline    bool

	mu       sync.Mutex
	seen     map[string]struct{}
	seenUser string
}

// NewNotificationService creates the service.
func NewNotificationService(deps Dependencies) *NotificationService {
	return &NotificationService{
		client:     deps.client(),
		sessions:   deps.Sessions,
		policy:     deps.Policy,
		dispatcher: deps.Dispatcher,
		logger:     deps.logger().Named("notifications"),
		offline:    deps.Offline,
		seen:       make(map[string]struct{}),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketSubmitted, n.handleTicketSubmitted)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
	n.dispatcher.Subscribe(events.EventFeedbackSubmitted, n.handleFeedbackSubmitted)
	n.dispatcher.Subscribe(events.EventNotificationsPolled, n.handleNotificationsPolled)
}

func (n *NotificationService) handleTicketSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketSubmitted", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	payload, _ := event.Payload.(events.TicketSubmittedPayload)
	title := "Ticket submitted"
	if payload.Outcome == domain.SubmissionSuccess {
		title = "Ticket closed automatically"
	}
	return n.appendLocal(ctx, event, "ticket_created", title, payload.Message)
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	payload, _ := event.Payload.(events.TicketStatusChangedPayload)
	return n.appendLocal(ctx, event, "status_changed", "Ticket status changed",
		fmt.Sprintf("Ticket %s is now %s", event.TicketID, payload.NewStatus))
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("CommentAdded", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	payload, _ := event.Payload.(events.CommentAddedPayload)
	return n.appendLocal(ctx, event, "comment_added", "New comment", payload.BodyPreview)
}

func (n *NotificationService) handleFeedbackSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("FeedbackSubmitted", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleNotificationsPolled(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.NotificationsPolledPayload)
	if len(payload.New) > 0 {
		n.logger.Info("NotificationsPolled", zap.Int("unread", payload.Unread), zap.Int("new", len(payload.New)))
	}
	return nil
}

// appendLocal records an event in the local log; only offline sessions read it.
func (n *NotificationService) appendLocal(ctx context.Context, event events.Event, kind, title, message string) error {
	if !n.offline && !event.Offline {
		return nil
	}
	if n.sessions == nil {
		return nil
	}
	_, err := n.sessions.AppendNotification(ctx, domain.Notification{
		UserID:   event.Actor.UserID,
		TicketID: event.TicketID,
		Type:     kind,
		Title:    title,
		Message:  message,
	})
	return err
}

// List returns the user's notifications, newest first.
func (n *NotificationService) List(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	if n.offline {
		return filterUnread(n.sessions.NotificationLog(ctx), unreadOnly), nil
	}
	sess, err := currentSession(ctx, n.sessions)
	if err != nil {
		return nil, err
	}
	var payloads []dto.NotificationPayload
	err = n.client.Do(ctx, http.MethodGet, "/notifications", &apiclient.RequestOptions{
		Query: map[string]any{"user_id": sess.UserID, "unread_only": unreadOnly},
	}, &payloads)
	if err != nil {
		return fallback.Recover(n.policy, fallback.NotificationsList, err, []domain.Notification{}, nil)
	}
	out := make([]domain.Notification, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, notification(p))
	}
	return out, nil
}

func filterUnread(list []domain.Notification, unreadOnly bool) []domain.Notification {
	if !unreadOnly {
		return list
	}
	out := make([]domain.Notification, 0, len(list))
	for _, item := range list {
		if !item.IsRead {
			out = append(out, item)
		}
	}
	return out
}

// UnreadCount returns how many notifications are unread.
func (n *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	if n.offline {
		return len(filterUnread(n.sessions.NotificationLog(ctx), true)), nil
	}
	sess, err := currentSession(ctx, n.sessions)
	if err != nil {
		return 0, err
	}
	var resp dto.UnreadCountResponse
	err = n.client.Do(ctx, http.MethodGet, "/notifications/unread/count", &apiclient.RequestOptions{
		Query: map[string]any{"user_id": sess.UserID},
	}, &resp)
	if err != nil {
		return fallback.Recover(n.policy, fallback.NotificationsUnreadCount, err, 0, nil)
	}
	return resp.Count, nil
}

// MarkRead flags one notification as read.
func (n *NotificationService) MarkRead(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("notification id is required", nil)
	}
	if n.offline {
		return n.sessions.MarkLogRead(ctx, id)
	}
	sess, err := currentSession(ctx, n.sessions)
	if err != nil {
		return err
	}
	return n.client.Do(ctx, http.MethodPut, "/notifications/{id}/read", &apiclient.RequestOptions{
		PathParams: map[string]string{"id": id},
		Query:      map[string]any{"user_id": sess.UserID},
	}, nil)
}

// MarkAllRead flags every notification as read.
func (n *NotificationService) MarkAllRead(ctx context.Context) error {
	if n.offline {
		return n.sessions.MarkLogRead(ctx, "")
	}
	sess, err := currentSession(ctx, n.sessions)
	if err != nil {
		return err
	}
	return n.client.Do(ctx, http.MethodPut, "/notifications/read-all", &apiclient.RequestOptions{
		Query: map[string]any{"user_id": sess.UserID},
	}, nil)
}

// Poll fetches unread notifications and publishes those not seen before.
// It is a no-op when nobody is logged in.
func (n *NotificationService) Poll(ctx context.Context) (events.NotificationsPolledPayload, error) {
	if n.sessions == nil || !n.sessions.IsLoggedIn(ctx) {
		return events.NotificationsPolledPayload{}, nil
	}
	unread, err := n.List(ctx, true)
	if err != nil {
		return events.NotificationsPolledPayload{}, err
	}

	sess := n.sessions.Session(ctx)
	user := ""
	if sess != nil {
		user = firstNonEmpty(sess.UserID, sess.Email)
	}

	// seen only tracks ids that are still unread, and starts over per user.
	n.mu.Lock()
	if user != n.seenUser {
		n.seen = make(map[string]struct{})
		n.seenUser = user
	}
	fresh := make([]domain.Notification, 0)
	current := make(map[string]struct{}, len(unread))
	for _, item := range unread {
		current[item.ID] = struct{}{}
		if _, ok := n.seen[item.ID]; !ok {
			fresh = append(fresh, item)
		}
	}
	n.seen = current
	n.mu.Unlock()

	payload := events.NotificationsPolledPayload{Unread: len(unread), New: fresh}
	publish(ctx, n.dispatcher, n.logger, events.Event{
		Type:    events.EventNotificationsPolled,
		Actor:   sessionActor(sess),
		Payload: payload,
	})
	return payload, nil
}
