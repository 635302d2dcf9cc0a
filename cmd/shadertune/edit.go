package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"shadertune/internal/compiler"
	"shadertune/internal/complete"
	"shadertune/internal/keywords"
	"shadertune/internal/observ"
	"shadertune/internal/session"
	"shadertune/internal/ui"
	"shadertune/internal/workspace"
)

var editCmd = &cobra.Command{
	Use:   "edit [file|directory]",
	Short: "Open the terminal shader editor",
	Long: `Open the terminal shader editor. A file argument opens that file and browses
its directory; a directory argument browses it with an empty buffer.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runEdit,
}

func init() {
	editCmd.Flags().String("template", "", "start from the named template instead of an empty buffer")
	editCmd.Flags().Bool("no-watch", false, "do not watch the folder for changes")
}

func runEdit(cmd *cobra.Command, args []string) error {
	templateName, err := cmd.Flags().GetString("template")
	if err != nil {
		return fmt.Errorf("failed to get template flag: %w", err)
	}
	noWatch, err := cmd.Flags().GetBool("no-watch")
	if err != nil {
		return fmt.Errorf("failed to get no-watch flag: %w", err)
	}

	folder, file := ".", ""
	if len(args) == 1 {
		info, err := os.Stat(args[0])
		switch {
		case err != nil:
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		case info.IsDir():
			folder = args[0]
		default:
			folder, file = filepath.Dir(args[0]), args[0]
		}
	}

	// the shell never starts without a working backend
	backend, err := openBackend()
	if err != nil {
		return err
	}
	filter, err := workspace.NewFilter(cfg.Extension(), cfg.Workspace.Exclude)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	feed := ui.NewStateFeed()
	coord := compiler.New(backend, compiler.Options{
		Debounce:    cfg.Editor.Debounce.Std(),
		AutoCompile: cfg.Editor.AutoCompile,
		Timeout:     cfg.Compiler.Timeout.Std(),
		Publish:     feed.Publish,
		Logger:      observ.Logger(),
	})
	engine := complete.New(keywords.ForLanguage(backend.Language()))
	sess := session.New(coord, engine, workspace.Disk{}, session.Options{Filter: filter})
	defer func() {
		feed.Close()
		sess.Close()
	}()

	if _, err := sess.OpenFolder(folder); err != nil {
		return err
	}
	switch {
	case file != "":
		if err := sess.Open(ctx, file); err != nil {
			return err
		}
	case templateName != "":
		if err := sess.NewFromTemplate(templateName); err != nil {
			return err
		}
	}

	program := tea.NewProgram(ui.NewEditor(ctx, sess, feed, backend.Language()), tea.WithAltScreen())

	if !noWatch {
		watcher, err := workspace.Watch(sess.Folder(), filter, func(nodes []workspace.Node, err error) {
			if err != nil {
				observ.Logger().Warn("folder rescan failed", "folder", sess.Folder(), "err", err)
				return
			}
			program.Send(ui.TreeMsg{Nodes: nodes})
		})
		if err != nil {
			observ.Logger().Warn("folder watch disabled", "folder", sess.Folder(), "err", err)
		} else {
			defer watcher.Close()
		}
	}

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
