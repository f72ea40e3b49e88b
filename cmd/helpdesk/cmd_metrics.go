package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/export"
)

func init() {
	rootCmd.AddCommand(metricsCmd, dashboardCmd)
	metricsCmd.AddCommand(metricsReportCmd)
	metricsReportCmd.Flags().StringP("out", "o", "", "output file (default metrics-report-<date>.pdf)")
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the analytics snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := rt.Services.Metrics.Get(cmd.Context())
		if err != nil {
			return fmt.Errorf("get metrics: %w", err)
		}
		if rootFlags.jsonOut {
			return printJSON(m)
		}
		printMetrics(m)
		return nil
	},
}

var metricsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the metrics PDF report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := rt.Services.Metrics.Get(cmd.Context())
		if err != nil {
			return fmt.Errorf("get metrics: %w", err)
		}
		tickets, err := rt.Services.Tickets.List(cmd.Context(), domain.TicketFilter{})
		if err != nil {
			return fmt.Errorf("list tickets: %w", err)
		}
		now := time.Now()
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = export.PDFFilename(now)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		if err := export.MetricsPDF(f, m, tickets, now); err != nil {
			f.Close()
			return fmt.Errorf("render pdf: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Report written to %s.\n", out)
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Metrics, ticket counts and the most recent tickets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := rt.Services.Dashboard.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load dashboard: %w", err)
		}
		if rootFlags.jsonOut {
			return printJSON(d)
		}
		printMetrics(d.Metrics)

		fmt.Fprintf(os.Stdout, "\nTickets: %d\n", d.Total)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, sc := range d.StatusCounts {
			fmt.Fprintf(w, "  %s\t%d\n", sc.Status, sc.Count)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if len(d.Recent) > 0 {
			fmt.Fprintln(os.Stdout, "\nRecent:")
			for _, t := range d.Recent {
				fmt.Fprintf(os.Stdout, "  %s  %-11s  %s\n", t.CreatedAt.Format("2006-01-02"), t.Status, truncate(t.Subject, 60))
			}
		}
		return nil
	},
}

func printMetrics(m domain.Metrics) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if m.Simulated {
		fmt.Fprintln(w, "(simulated values, backend unavailable)")
	}
	fmt.Fprintf(w, "Auto-resolved\t%.1f%%\n", m.Auto)
	fmt.Fprintf(w, "Routing accuracy\t%.1f%%\n", m.Accuracy)
	fmt.Fprintf(w, "SLA\t%.1f%%\n", m.SLA)
	fmt.Fprintf(w, "Backlog\t%d\n", m.Backlog)
	if m.CSAT != nil {
		fmt.Fprintf(w, "CSAT\t%.2f\n", *m.CSAT)
	}
	if m.RoutingErrorRate != nil {
		fmt.Fprintf(w, "Routing errors\t%.1f%%\n", *m.RoutingErrorRate)
	}
	if len(m.AvgResolutionTimeByCategory) > 0 {
		cats := make([]string, 0, len(m.AvgResolutionTimeByCategory))
		for c := range m.AvgResolutionTimeByCategory {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			fmt.Fprintf(w, "Resolution time, %s\t%.1f h\n", c, m.AvgResolutionTimeByCategory[c])
		}
	}
	_ = w.Flush()
}
