package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shadertune/internal/keywords"
	"shadertune/internal/templates"
	"shadertune/internal/workspace"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List, show and instantiate starter shaders",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

var templatesShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a template's source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := templates.Lookup(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), t.Source())
		return nil
	},
}

var templatesNewCmd = &cobra.Command{
	Use:          "new NAME PATH",
	Short:        "Write a template to a new file",
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         runTemplatesNew,
}

func init() {
	templatesCmd.PersistentFlags().String("language", "", "only list templates for this language (msl|wgsl)")
	templatesNewCmd.Flags().Bool("force", false, "overwrite an existing file")

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesNewCmd)
}

func runTemplatesList(cmd *cobra.Command, _ []string) error {
	langFlag, err := cmd.Flags().GetString("language")
	if err != nil {
		return fmt.Errorf("failed to get language flag: %w", err)
	}
	list := templates.All()
	if langFlag != "" {
		lang, err := keywords.ParseLanguage(langFlag)
		if err != nil {
			return err
		}
		list = templates.ForLanguage(lang)
	}

	out := cmd.OutOrStdout()
	heading := color.New(color.Bold)
	name := color.New(color.FgCyan)
	groups := templates.ByCategory(list)
	first := true
	for _, c := range templates.Categories {
		group := groups[c]
		if len(group) == 0 {
			continue
		}
		if !first {
			fmt.Fprintln(out)
		}
		first = false
		heading.Fprintln(out, c.Title())
		width := 0
		for _, t := range group {
			width = max(width, len(t.Name))
		}
		for _, t := range group {
			fmt.Fprintf(out, "  %s  %-4s  %s\n", name.Sprintf("%-*s", width, t.Name), t.Language, t.Description)
		}
	}
	return nil
}

func runTemplatesNew(cmd *cobra.Command, args []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}
	t, err := templates.Lookup(args[0])
	if err != nil {
		return err
	}
	path := args[1]
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := workspace.Save(path, t.Source()); err != nil {
		return err
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s from %s\n", path, t.Title)
	}
	return nil
}
