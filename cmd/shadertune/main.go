package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"shadertune/internal/config"
	"shadertune/internal/gpu"
	"shadertune/internal/observ"
	"shadertune/internal/prof"
	"shadertune/internal/version"
)

var rootCmd = &cobra.Command{
	Use:               "shadertune",
	Short:             "Shader editor with live compile diagnostics",
	Long:              `shadertune edits MSL and WGSL shaders, recompiling them as you type and reporting compiler diagnostics inline`,
	SilenceErrors:     true,
	PersistentPreRunE: setupRoot,
}

var (
	// cfg is the configuration resolved by setupRoot before any command runs.
	cfg = config.Default()
	// profiler is stopped by main after the command returns.
	profiler *prof.Profiler
)

// exitError carries a process exit code without printing anything further.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to shadertune.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("backend", "", "compiler backend, overrides the config ("+strings.Join(gpu.Names(), "|")+")")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "off", "log level written to stderr (off|debug|info|warn|error)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("memprofile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("trace", "", "write a runtime trace to this file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if perr := profiler.Stop(); perr != nil {
		fmt.Fprintln(os.Stderr, "warning: failed to write profile:", perr)
	}
	if err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupRoot(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()

	level, err := flags.GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logger, err := observ.NewTextLogger(os.Stderr, level)
	if err != nil {
		return err
	}
	observ.SetLogger(logger)

	colorMode, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	colorSwitch, err := readSwitch("color", colorMode)
	if err != nil {
		return err
	}
	color.NoColor = !colorSwitch.enabled(os.Stdout)

	configPath, err := flags.GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return err
	}

	backend, err := flags.GetString("backend")
	if err != nil {
		return fmt.Errorf("failed to get backend flag: %w", err)
	}
	if backend = strings.ToLower(strings.TrimSpace(backend)); backend != "" {
		cfg.Compiler.Backend = backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	var popts prof.Options
	if popts.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	if popts.Mem, err = flags.GetString("memprofile"); err != nil {
		return fmt.Errorf("failed to get memprofile flag: %w", err)
	}
	if popts.Trace, err = flags.GetString("trace"); err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	if popts.Enabled() {
		if profiler, err = prof.Start(popts); err != nil {
			return err
		}
	}

	if cfg.Path != "" {
		observ.Logger().Debug("loaded config", "path", cfg.Path, "backend", cfg.Compiler.Backend)
	}
	return nil
}

// openBackend opens the configured backend.
func openBackend() (gpu.Backend, error) {
	b, err := gpu.Open(cfg.Compiler.Backend, gpu.Options{Command: cfg.Compiler.Command})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Compiler.Backend, err)
	}
	return b, nil
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
