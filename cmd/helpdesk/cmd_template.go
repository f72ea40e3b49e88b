package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateListCmd, templateShowCmd, templateCreateCmd, templateUpdateCmd, templateDeleteCmd)

	templateListCmd.Flags().String("category", "", "category id or name")
	for _, c := range []*cobra.Command{templateCreateCmd, templateUpdateCmd} {
		c.Flags().String("name", "", "template name")
		c.Flags().String("category", "", "category id")
		c.Flags().String("content", "", "template text")
		c.Flags().Bool("active", true, "whether operators can pick the template")
	}
	_ = templateCreateCmd.MarkFlagRequired("name")
	_ = templateCreateCmd.MarkFlagRequired("content")
}

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"templates"},
	Short:   "Browse and edit reply templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reply templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		items, err := rt.Services.Templates.List(cmd.Context(), category)
		if err != nil {
			return fmt.Errorf("list templates: %w", err)
		}
		if rootFlags.jsonOut {
			return printJSON(items)
		}
		if len(items) == 0 {
			fmt.Println("No templates found.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tACTIVE")
		for _, t := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", t.ID, t.Name, t.Category, t.IsActive)
		}
		return w.Flush()
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := rt.Services.Templates.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get template: %w", err)
		}
		if rootFlags.jsonOut {
			return printJSON(t)
		}
		fmt.Fprintf(os.Stdout, "%s (%s)\n\n%s\n", t.Name, t.Category, t.Content)
		return nil
	},
}

var templateCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a template (operators)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := rt.Services.Templates.Create(cmd.Context(), templateInput(cmd))
		if err != nil {
			return fmt.Errorf("create template: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Template %s created.\n", t.ID)
		return nil
	},
}

var templateUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a template (operators)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := rt.Services.Templates.Update(cmd.Context(), args[0], templateInput(cmd))
		if err != nil {
			return fmt.Errorf("update template: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Template %s updated.\n", t.ID)
		return nil
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a template (operators)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.Services.Templates.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete template: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Template %s deleted.\n", args[0])
		return nil
	},
}

func templateInput(cmd *cobra.Command) domain.TemplateInput {
	var in domain.TemplateInput
	in.Name, _ = cmd.Flags().GetString("name")
	in.CategoryID, _ = cmd.Flags().GetString("category")
	in.Content, _ = cmd.Flags().GetString("content")
	if cmd.Flags().Changed("active") {
		active, _ := cmd.Flags().GetBool("active")
		in.IsActive = &active
	}
	return in
}
