package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shadertune/internal/gpu"
	"shadertune/internal/lsp"
	"shadertune/internal/observ"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the shadertune language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	// without a backend the server still offers completion
	backend, err := openBackend()
	if err != nil {
		if !errors.Is(err, gpu.ErrUnavailable) {
			return err
		}
		observ.Logger().Warn("compiling disabled", "err", err)
		backend = nil
	}

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Backend:     backend,
		Debounce:    cfg.Editor.Debounce.Std(),
		Timeout:     cfg.Compiler.Timeout.Std(),
		AutoCompile: cfg.Editor.AutoCompile,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
