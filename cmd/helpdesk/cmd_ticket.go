package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/export"
	"github.com/spec-kit/helpdesk-portal/internal/service"
)

func init() {
	rootCmd.AddCommand(ticketCmd)
	ticketCmd.AddCommand(ticketSubmitCmd, ticketListCmd, ticketShowCmd, ticketStatusCmd,
		ticketDeleteCmd, ticketExportCmd, ticketTakeCmd, ticketAssignCmd)

	for _, c := range []*cobra.Command{ticketListCmd, ticketExportCmd} {
		c.Flags().StringSlice("status", nil, "display status filter (Open, In Progress, Waiting, Closed)")
		c.Flags().StringSlice("category", nil, "category filter")
		c.Flags().StringSlice("priority", nil, "priority filter")
		c.Flags().String("from", "", "created on or after (YYYY-MM-DD)")
		c.Flags().String("to", "", "created on or before (YYYY-MM-DD)")
		c.Flags().String("query", "", "free-text search; recorded in search history")
		c.Flags().Int("limit", 0, "maximum tickets requested from the backend")
	}
	ticketExportCmd.Flags().StringP("out", "o", "", "output file (default tickets-<date>.csv)")

	ticketAssignCmd.Flags().String("operator", "", "operator id")
	ticketAssignCmd.Flags().String("department", "", "department id")
	ticketAssignCmd.MarkFlagsMutuallyExclusive("operator", "department")
	ticketAssignCmd.MarkFlagsOneRequired("operator", "department")
}

var ticketCmd = &cobra.Command{
	Use:     "ticket",
	Aliases: []string{"tickets"},
	Short:   "Submit and manage tickets",
}

var ticketSubmitCmd = &cobra.Command{
	Use:   "submit <problem description>",
	Short: "Submit a new ticket",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := rt.Services.Tickets.Submit(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("submit ticket: %w", err)
		}
		if rootFlags.jsonOut {
			return printJSON(res)
		}
		fmt.Fprintf(os.Stdout, "[%s] %s\n", res.Status, res.Message)
		if res.ConfidenceWarning != "" {
			fmt.Fprintf(os.Stdout, "warning: %s\n", res.ConfidenceWarning)
		}
		if res.NeedsClarification {
			fmt.Fprintln(os.Stdout, "The description may need clarification.")
		}
		if res.Ticket != nil && res.Ticket.ID != "" {
			fmt.Fprintf(os.Stdout, "ticket: %s\n", res.Ticket.ID)
		}
		return nil
	},
}

var ticketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your tickets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tickets, err := loadTickets(cmd)
		if err != nil {
			return err
		}
		if rootFlags.jsonOut {
			return printJSON(tickets)
		}
		if len(tickets) == 0 {
			fmt.Println("No tickets found.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tCATEGORY\tPRIORITY\tCREATED\tSUBJECT")
		for _, t := range tickets {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				t.ID, t.Status, t.Category, t.Priority,
				t.CreatedAt.Format("2006-01-02 15:04"), truncate(t.Subject, 48))
		}
		return w.Flush()
	},
}

var ticketShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one ticket with its comments and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		t, err := rt.Services.Tickets.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get ticket: %w", err)
		}
		comments, err := rt.Services.Comments.List(ctx, args[0])
		if err != nil {
			return fmt.Errorf("list comments: %w", err)
		}
		history, err := rt.Services.History.List(ctx, args[0])
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		if rootFlags.jsonOut {
			return printJSON(map[string]any{"ticket": t, "comments": comments, "history": history})
		}

		fmt.Fprintf(os.Stdout, "%s  %s\n", t.ID, t.Subject)
		fmt.Fprintf(os.Stdout, "status: %s  category: %s  priority: %s\n", t.Status, t.Category, t.Priority)
		if t.AIConfidence != nil {
			fmt.Fprintf(os.Stdout, "ai confidence: %.2f", *t.AIConfidence)
			if t.NeedsClarification {
				fmt.Fprint(os.Stdout, " (needs clarification)")
			}
			fmt.Fprintln(os.Stdout)
		}
		if t.ProblemDescription != "" {
			fmt.Fprintf(os.Stdout, "\n%s\n", t.ProblemDescription)
		}
		if len(comments) > 0 {
			fmt.Fprintln(os.Stdout, "\nComments:")
			for _, c := range comments {
				fmt.Fprintf(os.Stdout, "  %s  %s (%s): %s\n",
					c.CreatedAt.Format("2006-01-02 15:04"), c.Author, c.AuthorRole, c.Text)
			}
		}
		if len(history) > 0 {
			fmt.Fprintln(os.Stdout, "\nHistory:")
			for _, h := range history {
				line := h.Description
				if line == "" {
					line = fmt.Sprintf("%s -> %s", h.OldValue, h.NewValue)
				}
				fmt.Fprintf(os.Stdout, "  %s  %s: %s\n", h.CreatedAt.Format("2006-01-02 15:04"), h.Action, line)
			}
		}
		return nil
	},
}

var ticketStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change the display status of a ticket",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := rt.Services.Tickets.UpdateStatus(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Ticket %s is now %s.\n", t.ID, t.Status)
		return nil
	},
}

var ticketDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.Services.Tickets.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete ticket: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Ticket %s deleted.\n", args[0])
		return nil
	},
}

var ticketExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tickets as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tickets, err := loadTickets(cmd)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = export.CSVFilename(time.Now())
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		if err := export.TicketsCSV(f, tickets); err != nil {
			f.Close()
			return fmt.Errorf("write csv: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Exported %d tickets to %s.\n", len(tickets), out)
		return nil
	},
}

var ticketTakeCmd = &cobra.Command{
	Use:   "take <id>",
	Short: "Assign a ticket to yourself (operators)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := rt.Services.Assignments.SelfAssign(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("take ticket: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Ticket %s assigned to you (%s).\n", t.ID, t.Status)
		return nil
	},
}

var ticketAssignCmd = &cobra.Command{
	Use:   "assign <id>",
	Short: "Route a ticket to an operator or department (operators)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		operator, _ := cmd.Flags().GetString("operator")
		department, _ := cmd.Flags().GetString("department")
		var (
			t   *domain.Ticket
			err error
		)
		if operator != "" {
			t, err = rt.Services.Assignments.AssignToOperator(cmd.Context(), args[0], operator)
		} else {
			t, err = rt.Services.Assignments.AssignToDepartment(cmd.Context(), args[0], department)
		}
		if err != nil {
			return fmt.Errorf("assign ticket: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Ticket %s reassigned.\n", t.ID)
		return nil
	},
}

// loadTickets applies the shared list flags.
func loadTickets(cmd *cobra.Command) ([]domain.Ticket, error) {
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	query, _ := cmd.Flags().GetString("query")
	var tickets []domain.Ticket
	if strings.TrimSpace(query) != "" {
		tickets, err = rt.Services.Tickets.Search(cmd.Context(), query, filter)
	} else {
		tickets, err = rt.Services.Tickets.List(cmd.Context(), filter)
	}
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

func filterFromFlags(cmd *cobra.Command) (domain.TicketFilter, error) {
	var filter domain.TicketFilter
	statuses, _ := cmd.Flags().GetStringSlice("status")
	for _, raw := range statuses {
		st, ok := service.ParseDisplayStatus(raw)
		if !ok {
			return filter, fmt.Errorf("unknown status %q", raw)
		}
		filter.Statuses = append(filter.Statuses, st)
	}
	filter.Categories, _ = cmd.Flags().GetStringSlice("category")
	filter.Priorities, _ = cmd.Flags().GetStringSlice("priority")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	for flag, dst := range map[string]**time.Time{"from": &filter.DateFrom, "to": &filter.DateTo} {
		raw, _ := cmd.Flags().GetString(flag)
		if raw == "" {
			continue
		}
		t := dto.ParseTime(raw)
		if t.IsZero() {
			return filter, fmt.Errorf("invalid --%s date %q", flag, raw)
		}
		*dst = &t
	}
	return filter, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func atoiArg(name, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return v, nil
}
