package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shadertune/internal/workspace"
)

var treeCmd = &cobra.Command{
	Use:   "tree [directory]",
	Short: "Print the shader files under a directory",
	Long:  `Print the directory tree pruned to shader files, as the editor's file picker sees it`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		filter, err := workspace.NewFilter(cfg.Extension(), cfg.Workspace.Exclude)
		if err != nil {
			return err
		}
		nodes, err := filter.Build(root)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			if !quiet(cmd) {
				fmt.Fprintf(cmd.ErrOrStderr(), "no %s files under %s\n", cfg.Extension(), root)
			}
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), workspace.Render(nodes))
		return nil
	},
}
