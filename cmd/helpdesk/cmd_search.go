package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.AddCommand(searchHistoryCmd, searchSavedCmd, searchSaveCmd, searchSuggestCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search history and saved searches",
}

var searchHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Recent search queries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printLines(rt.Sessions.SearchHistory(cmd.Context()), "No searches yet.")
	},
}

var searchSavedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Saved search queries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printLines(rt.Sessions.SavedSearches(cmd.Context()), "No saved searches.")
	},
}

var searchSaveCmd = &cobra.Command{
	Use:   "save <query>",
	Short: "Save a search query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		saved, err := rt.Sessions.SaveSearch(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("save search: %w", err)
		}
		fmt.Fprintf(os.Stdout, "%d saved searches.\n", len(saved))
		return nil
	},
}

var searchSuggestCmd = &cobra.Command{
	Use:   "suggest <prefix>",
	Short: "Suggest queries from the search history",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printLines(rt.Sessions.Suggest(cmd.Context(), strings.Join(args, " ")), "No suggestions.")
	},
}

func printLines(lines []string, empty string) error {
	if rootFlags.jsonOut {
		if lines == nil {
			lines = []string{}
		}
		return printJSON(lines)
	}
	if len(lines) == 0 {
		fmt.Println(empty)
		return nil
	}
	for _, l := range lines {
		fmt.Fprintln(os.Stdout, l)
	}
	return nil
}
