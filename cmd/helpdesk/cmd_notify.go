package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/worker"
)

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyListCmd, notifyCountCmd, notifyReadCmd, notifyReadAllCmd, notifyWatchCmd)

	notifyListCmd.Flags().Bool("unread", false, "only unread notifications")
	notifyWatchCmd.Flags().Duration("interval", 0, "poll interval (default from NOTIFY_POLL_INTERVAL_SECONDS)")
}

var notifyCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notify"},
	Short:   "Read and watch notifications",
}

var notifyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		unread, _ := cmd.Flags().GetBool("unread")
		items, err := rt.Services.Notifications.List(cmd.Context(), unread)
		if err != nil {
			return fmt.Errorf("list notifications: %w", err)
		}
		if rootFlags.jsonOut {
			return printJSON(items)
		}
		if len(items) == 0 {
			fmt.Println("No notifications.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tREAD\tCREATED\tTITLE\tMESSAGE")
		for _, n := range items {
			fmt.Fprintf(w, "%s\t%t\t%s\t%s\t%s\n",
				n.ID, n.IsRead, n.CreatedAt.Format("2006-01-02 15:04"), n.Title, truncate(n.Message, 60))
		}
		return w.Flush()
	},
}

var notifyCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the unread notification count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := rt.Services.Notifications.UnreadCount(cmd.Context())
		if err != nil {
			return fmt.Errorf("unread count: %w", err)
		}
		fmt.Fprintln(os.Stdout, n)
		return nil
	},
}

var notifyReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark one notification read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.Services.Notifications.MarkRead(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("mark read: %w", err)
		}
		return nil
	},
}

var notifyReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification read",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.Services.Notifications.MarkAllRead(cmd.Context()); err != nil {
			return fmt.Errorf("mark all read: %w", err)
		}
		return nil
	},
}

var notifyWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for new notifications until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = rt.Config.Notification.PollInterval()
		}

		rt.Dispatcher.Subscribe(events.EventNotificationsPolled, printPolled)

		ctx := cmd.Context()
		w := worker.NewNotificationWorker(rt.Services.Notifications, interval, rt.Logger)
		w.RunOnce(ctx)
		if err := w.Start(ctx); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Watching notifications every %s, Ctrl+C to stop.\n", interval)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		w.Stop(stopCtx)
		return nil
	},
}

func printPolled(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.NotificationsPolledPayload)
	if !ok {
		return nil
	}
	for _, n := range payload.New {
		fmt.Fprintf(os.Stdout, "%s  %s: %s\n", n.CreatedAt.Format("15:04:05"), n.Title, n.Message)
	}
	return nil
}
