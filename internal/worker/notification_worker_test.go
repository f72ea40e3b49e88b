package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/events"
)

type countingPoller struct {
	calls atomic.Int32
	fired chan struct{}
	err   error
}

func (p *countingPoller) Poll(context.Context) (events.NotificationsPolledPayload, error) {
	if p.calls.Add(1) == 1 && p.fired != nil {
		close(p.fired)
	}
	return events.NotificationsPolledPayload{Unread: 2}, p.err
}

func TestScheduleSpec(t *testing.T) {
	w := NewNotificationWorker(&countingPoller{}, 10*time.Second, nil)
	if got := w.Schedule(); got != "@every 10s" {
		t.Fatalf("unexpected schedule %q", got)
	}
	w = NewNotificationWorker(&countingPoller{}, 0, nil)
	if got := w.Schedule(); got != "@every 1s" {
		t.Fatalf("sub-second interval should be raised, got %q", got)
	}
}

func TestRunOnceSwallowsErrors(t *testing.T) {
	p := &countingPoller{err: errors.New("backend down")}
	w := NewNotificationWorker(p, time.Second, nil)
	w.RunOnce(context.Background())
	if p.calls.Load() != 1 {
		t.Fatalf("expected one poll, got %d", p.calls.Load())
	}
}

func TestStartPollsUntilStopped(t *testing.T) {
	p := &countingPoller{fired: make(chan struct{})}
	w := NewNotificationWorker(p, time.Second, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case <-p.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("poll never fired")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	w.Stop(ctx)
	after := p.calls.Load()
	time.Sleep(1500 * time.Millisecond)
	if p.calls.Load() != after {
		t.Fatalf("polling continued after stop")
	}
	w.Stop(ctx)
}
