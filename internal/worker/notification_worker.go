package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/events"
)

// Poller fetches notifications once.
type Poller interface {
	Poll(ctx context.Context) (events.NotificationsPolledPayload, error)
}

// NotificationWorker polls notifications on a fixed interval. Overlapping
// polls are not deduplicated.
type NotificationWorker struct {
	poller   Poller
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewNotificationWorker creates a worker; intervals under a second are raised to one.
func NewNotificationWorker(poller Poller, interval time.Duration, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval < time.Second {
		interval = time.Second
	}
	return &NotificationWorker{
		poller:   poller,
		interval: interval,
		logger:   logger.Named("notification_worker"),
	}
}

// Schedule returns the cron spec used for polling.
func (w *NotificationWorker) Schedule() string {
	return fmt.Sprintf("@every %s", w.interval)
}

// Start registers the poll job and starts the cron ticker.
func (w *NotificationWorker) Start(ctx context.Context) error {
	if w.poller == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return nil
	}

	w.baseCtx, w.cancel = context.WithCancel(ctx)
	c := cron.New()
	if _, err := c.AddFunc(w.Schedule(), func() { w.RunOnce(w.baseCtx) }); err != nil {
		w.cancel()
		return fmt.Errorf("schedule notification poll: %w", err)
	}
	c.Start()
	w.cron = c
	w.logger.Info("notification polling started", zap.Duration("interval", w.interval))
	return nil
}

// RunOnce performs a single poll, bounded by the polling interval.
func (w *NotificationWorker) RunOnce(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()
	res, err := w.poller.Poll(pollCtx)
	if err != nil {
		w.logger.Warn("notification poll failed", zap.Error(err))
		return
	}
	w.logger.Debug("notification poll", zap.Int("unread", res.Unread), zap.Int("new", len(res.New)))
}

// Stop halts the ticker and waits for a running poll to finish or ctx to end.
func (w *NotificationWorker) Stop(ctx context.Context) {
	w.mu.Lock()
	c, cancel := w.cron, w.cancel
	w.cron, w.cancel = nil, nil
	w.mu.Unlock()
	if c == nil {
		return
	}
	done := c.Stop()
	cancel()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	w.logger.Info("notification polling stopped")
}
