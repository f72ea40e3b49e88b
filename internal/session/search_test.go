package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

func TestRecordSearchDedupesAndCaps(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if err := store.RecordSearch(ctx, fmt.Sprintf("query %d", i)); err != nil {
			t.Fatal(err)
		}
	}
	_ = store.RecordSearch(ctx, "query 24")

	history := store.SearchHistory(ctx)
	if len(history) != 20 {
		t.Fatalf("expected 20 entries, got %d", len(history))
	}
	if history[0] != "query 24" {
		t.Errorf("expected newest first, got %q", history[0])
	}
}

func TestSaveSearchKeepsLastTen(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	var saved []string
	var err error
	for i := 0; i < 12; i++ {
		saved, err = store.SaveSearch(ctx, fmt.Sprintf("s%d", i))
		if err != nil {
			t.Fatal(err)
		}
	}
	if len(saved) != 10 || saved[0] != "s2" || saved[9] != "s11" {
		t.Errorf("unexpected saved searches %v", saved)
	}
	if got := store.SearchHistory(ctx); got[0] != "s11" {
		t.Errorf("saved search should also land in history, got %v", got)
	}
}

func TestSuggest(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	for _, q := range []string{"Password reset", "VPN down", "password expired"} {
		_ = store.RecordSearch(ctx, q)
	}
	if got := store.Suggest(ctx, "pa"); len(got) != 0 {
		t.Errorf("short input should not suggest, got %v", got)
	}
	got := store.Suggest(ctx, "PASS")
	if len(got) != 2 {
		t.Errorf("expected 2 suggestions, got %v", got)
	}
}

func TestNotificationLog(t *testing.T) {
	store, _ := newTestStore()
	store.logLimit = 3
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := store.AppendNotification(ctx, domain.Notification{Title: fmt.Sprintf("n%d", i)}); err != nil {
			t.Fatal(err)
		}
	}
	log := store.NotificationLog(ctx)
	if len(log) != 3 || log[0].Title != "n4" {
		t.Fatalf("unexpected log %+v", log)
	}
	if log[0].ID == "" {
		t.Error("expected generated id")
	}
	if err := store.MarkLogRead(ctx, log[1].ID); err != nil {
		t.Fatal(err)
	}
	log = store.NotificationLog(ctx)
	if log[0].IsRead || !log[1].IsRead {
		t.Errorf("expected only second entry read: %+v", log)
	}
	if err := store.MarkLogRead(ctx, ""); err != nil {
		t.Fatal(err)
	}
	for _, n := range store.NotificationLog(ctx) {
		if !n.IsRead {
			t.Errorf("expected all read, got %+v", n)
		}
	}
}
