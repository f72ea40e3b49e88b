package persistence

import (
	"context"
	"errors"
	"testing"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "user"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	if err := kv.Set(ctx, "user", `{"email":"a@b.c"}`); err != nil {
		t.Fatal(err)
	}
	got, err := kv.Get(ctx, "user")
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"email":"a@b.c"}` {
		t.Errorf("unexpected value %q", got)
	}

	if err := kv.Set(ctx, "user", "second"); err != nil {
		t.Fatal(err)
	}
	if got, _ := kv.Get(ctx, "user"); got != "second" {
		t.Errorf("expected overwrite, got %q", got)
	}

	if err := kv.Delete(ctx, "user"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Delete(ctx, "user"); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
	if _, err := kv.Get(ctx, "user"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestFileKV(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exerciseKV(t, kv)
}

func TestFileKVKeyCannotEscapeRoot(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := kv.Set(ctx, "../../etc/passwd", "x"); err != nil {
		t.Fatal(err)
	}
	got, err := kv.Get(ctx, "../../etc/passwd")
	if err != nil || got != "x" {
		t.Fatalf("expected round trip inside root, got %q, %v", got, err)
	}
}
