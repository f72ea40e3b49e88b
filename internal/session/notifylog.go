package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// NotificationLog returns the locally simulated notifications, newest first.
func (s *Store) NotificationLog(ctx context.Context) []domain.Notification {
	var log []domain.Notification
	if !s.readJSON(ctx, KeyNotificationLog, &log) {
		return []domain.Notification{}
	}
	return log
}

// AppendNotification adds n to the front of the log, trimming it to the limit.
func (s *Store) AppendNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	log := append([]domain.Notification{n}, s.NotificationLog(ctx)...)
	if len(log) > s.logLimit {
		log = log[:s.logLimit]
	}
	return n, s.writeJSON(ctx, KeyNotificationLog, log)
}

// MarkLogRead flags one entry, or all when id is empty, as read.
func (s *Store) MarkLogRead(ctx context.Context, id string) error {
	log := s.NotificationLog(ctx)
	for i := range log {
		if id == "" || log[i].ID == id {
			log[i].IsRead = true
		}
	}
	return s.writeJSON(ctx, KeyNotificationLog, log)
}
