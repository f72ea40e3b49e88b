package main

import (
	"context"
	"testing"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

func newListCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "list"}
	cmd.Flags().StringSlice("status", nil, "")
	cmd.Flags().StringSlice("category", nil, "")
	cmd.Flags().StringSlice("priority", nil, "")
	cmd.Flags().String("from", "", "")
	cmd.Flags().String("to", "", "")
	cmd.Flags().Int("limit", 0, "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestFilterFromFlags(t *testing.T) {
	cmd := newListCmd(t, "--status", "open,in progress", "--category", "IT", "--from", "2024-03-01", "--limit", "20")
	f, err := filterFromFlags(cmd)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(f.Statuses) != 2 || f.Statuses[0] != domain.TicketStatusOpen || f.Statuses[1] != domain.TicketStatusInProgress {
		t.Fatalf("statuses = %v", f.Statuses)
	}
	if len(f.Categories) != 1 || f.Categories[0] != "IT" || f.Limit != 20 {
		t.Fatalf("unexpected filter %+v", f)
	}
	if f.DateFrom == nil || f.DateFrom.Format("2006-01-02") != "2024-03-01" || f.DateTo != nil {
		t.Fatalf("dates = %v %v", f.DateFrom, f.DateTo)
	}
}

func TestFilterFromFlagsRejectsBadInput(t *testing.T) {
	if _, err := filterFromFlags(newListCmd(t, "--status", "archived")); err == nil {
		t.Fatal("expected unknown status error")
	}
	if _, err := filterFromFlags(newListCmd(t, "--to", "someday")); err == nil {
		t.Fatal("expected date error")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("короткий", 20); got != "короткий" {
		t.Fatalf("short string changed: %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestCommandTreeRegistered(t *testing.T) {
	for _, path := range [][]string{
		{"ticket", "submit"}, {"ticket", "comment"}, {"ticket", "csat"}, {"ticket", "assign"},
		{"template", "create"}, {"notifications", "watch"}, {"metrics", "report"},
		{"search", "suggest"}, {"fallbacks"}, {"login"},
	} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd == rootCmd {
			t.Fatalf("command %v not registered: %v", path, err)
		}
	}
}

func TestExecuteClosesRuntimeOnFailure(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	closed := 0
	build := rootCmd.PersistentPreRunE
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := build(cmd, args); err != nil {
			return err
		}
		release := rt.Storage.Close
		rt.Storage.Close = func() {
			closed++
			release()
		}
		return nil
	}
	t.Cleanup(func() { rootCmd.PersistentPreRunE = build })

	err := execute(context.Background(), []string{"--offline", "ticket", "csat", "42", "9"})
	if err == nil {
		t.Fatal("expected an out-of-range score to fail")
	}
	if closed != 1 {
		t.Fatalf("expected storage closed once, got %d", closed)
	}
	if rt != nil {
		t.Fatal("runtime should be released after the command")
	}
}
