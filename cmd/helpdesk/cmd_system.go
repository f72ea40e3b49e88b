package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(integrationsCmd, fallbacksCmd, pingCmd)
}

var integrationsCmd = &cobra.Command{
	Use:   "integrations",
	Short: "List connected channels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := rt.Services.Integrations.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list integrations: %w", err)
		}
		if rootFlags.jsonOut {
			return printJSON(items)
		}
		if len(items) == 0 {
			fmt.Println("No integrations.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tENABLED\tSTATUS")
		for _, i := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", i.ID, i.Name, i.Type, i.Enabled, i.Status)
		}
		return w.Flush()
	},
}

var fallbacksCmd = &cobra.Command{
	Use:   "fallbacks",
	Short: "Show what each endpoint does when the backend fails",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := rt.Policy.Entries()
		if rootFlags.jsonOut {
			return printJSON(entries)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ENDPOINT\tMODE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\n", e.Endpoint, e.Mode)
		}
		return w.Flush()
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the storage backend and the helpdesk backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
		defer cancel()

		if err := rt.Storage.Ping(ctx); err != nil {
			return fmt.Errorf("%s storage: %w", rt.Storage.Name, err)
		}
		fmt.Fprintf(os.Stdout, "storage (%s): ok\n", rt.Storage.Name)
		if rt.Client == nil {
			fmt.Fprintln(os.Stdout, "backend: offline mode")
			return nil
		}
		if err := rt.CheckBackend(ctx); err != nil {
			return fmt.Errorf("backend %s: %w", rt.Client.BaseURL(), err)
		}
		fmt.Fprintf(os.Stdout, "backend (%s): ok\n", rt.Client.BaseURL())
		return nil
	},
}
