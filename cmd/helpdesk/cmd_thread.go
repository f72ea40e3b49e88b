package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	ticketCmd.AddCommand(commentCmd, csatCmd)
	csatCmd.Flags().String("comment", "", "optional feedback text")
}

var commentCmd = &cobra.Command{
	Use:   "comment <id> <text>",
	Short: "Add a comment to a ticket",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := rt.Services.Comments.Add(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("add comment: %w", err)
		}
		if rootFlags.jsonOut {
			return printJSON(c)
		}
		fmt.Fprintf(os.Stdout, "Comment added to ticket %s.\n", args[0])
		return nil
	},
}

var csatCmd = &cobra.Command{
	Use:   "csat <id> <score 1-5>",
	Short: "Rate how a ticket was handled",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := atoiArg("score", args[1])
		if err != nil {
			return err
		}
		comment, _ := cmd.Flags().GetString("comment")
		if err := rt.Services.Feedback.SubmitCSAT(cmd.Context(), args[0], score, comment); err != nil {
			return fmt.Errorf("submit feedback: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Thanks for your feedback.")
		return nil
	},
}
