package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/bootstrap"
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/observability"
)

// rt is built once per invocation by the root pre-run hook.
var rt *bootstrap.Runtime

var rootFlags struct {
	offline    bool
	generation string
	baseURL    string
	storage    string
	jsonOut    bool
}

var rootCmd = &cobra.Command{
	Use:           "helpdesk",
	Short:         "Helpdesk client: tickets, comments, templates and metrics from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyRootFlags(cmd, cfg)

		logger, err := observability.NewLogger(cfg.Logger, "stderr")
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		rt, err = bootstrap.Build(cmd.Context(), cfg, logger)
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&rootFlags.offline, "offline", false, "use the local demo mode instead of the backend")
	pf.StringVar(&rootFlags.generation, "generation", "", "backend schema generation (current|legacy)")
	pf.StringVar(&rootFlags.baseURL, "api-url", "", "helpdesk backend base URL")
	pf.StringVar(&rootFlags.storage, "storage", "", "session storage driver (memory|file|redis|postgres)")
	pf.BoolVar(&rootFlags.jsonOut, "json", false, "print raw JSON instead of tables")
}

func applyRootFlags(cmd *cobra.Command, cfg *config.Config) {
	pf := cmd.Flags()
	if pf.Changed("offline") {
		cfg.App.Offline = rootFlags.offline
	}
	if rootFlags.generation != "" {
		cfg.Backend.Generation = strings.ToLower(rootFlags.generation)
	}
	if rootFlags.baseURL != "" {
		cfg.Backend.BaseURL = strings.TrimRight(rootFlags.baseURL, "/")
	}
	if rootFlags.storage != "" {
		cfg.Storage.Driver = strings.ToLower(rootFlags.storage)
	}
	// Quiet by default; LOG_LEVEL=debug still shows the request log.
	if cfg.Logger.Level == "info" {
		cfg.Logger.Level = "warn"
	}
}

// printJSON writes v indented to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// execute runs one command and releases the runtime whether or not it failed;
// cobra skips post-run hooks when RunE returns an error.
func execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if rt != nil {
		if err != nil {
			rt.Logger.Debug("command failed", zap.Error(err))
		}
		_ = rt.Logger.Sync()
		rt.Close()
		rt = nil
	}
	return err
}

func main() {
	if err := execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
