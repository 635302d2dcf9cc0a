package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shadertune/internal/cache"
	"shadertune/internal/check"
	"shadertune/internal/diagfmt"
	"shadertune/internal/observ"
	"shadertune/internal/version"
	"shadertune/internal/workspace"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file|directory>...",
	Short: "Compile shader files and report diagnostics",
	Long: `Compile every shader file given, or every shader file found under the given
directories, and print the compiler diagnostics. Exits with status 1 when any
file fails to compile.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	checkCmd.Flags().Int("jobs", 0, "max parallel compiles (0=auto)")
	checkCmd.Flags().Bool("cache", false, "reuse results from the disk cache (also enabled by [cache].enabled)")
	checkCmd.Flags().String("ui", "auto", "show the progress view (auto|on|off)")
	checkCmd.Flags().Bool("timings", false, "print per-file compile timings to stderr")
	checkCmd.Flags().Int("max-diagnostics", 100, "maximum number of diagnostics to show per file (0=all)")
	checkCmd.Flags().Int("context", 1, "source lines shown above each diagnostic")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "pretty", "short", "json", "sarif":
	default:
		return fmt.Errorf("unknown format %q (expected pretty|short|json|sarif)", format)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readSwitch("ui", uiFlag)
	if err != nil {
		return err
	}
	showTimings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	maxDiagnostics, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	contextLines, err := cmd.Flags().GetInt("context")
	if err != nil {
		return fmt.Errorf("failed to get context flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	filter, err := workspace.NewFilter(cfg.Extension(), cfg.Workspace.Exclude)
	if err != nil {
		return err
	}
	files, err := check.Collect(args, filter)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !quiet(cmd) {
			fmt.Fprintf(cmd.ErrOrStderr(), "no %s files found\n", cfg.Extension())
		}
		return nil
	}

	backend, err := openBackend()
	if err != nil {
		return err
	}

	req := &check.Request{
		Files:   files,
		Backend: backend,
		Jobs:    jobs,
		Timeout: cfg.Compiler.Timeout.Std(),
	}
	if useCache || cfg.Cache.Enabled {
		dir, err := cfg.CacheDir()
		if err != nil {
			return err
		}
		if req.Cache, err = cache.Open(dir); err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
	}
	if showTimings {
		req.Timer = observ.NewTimer()
	}

	textual := format == "pretty" || format == "short"
	var res check.Result
	if textual && !quiet(cmd) && mode.enabled(os.Stdout) {
		title := fmt.Sprintf("checking %d file(s) with %s", len(files), backend.Name())
		res, err = runCheckWithUI(cmd.Context(), title, req)
	} else {
		res, err = check.Run(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	reports := make([]diagfmt.FileReport, len(res.Files))
	for i, f := range res.Files {
		reports[i] = diagfmt.FileReport{Path: f.Path, Source: f.Source, Diagnostics: f.Diagnostics, Err: f.Err}
	}
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	out := cmd.OutOrStdout()
	switch format {
	case "pretty", "short":
		opts := diagfmt.PrettyOpts{
			Color:    !color.NoColor,
			Context:  contextLines,
			PathMode: pathMode,
			Lexer:    diagfmt.LexerFor(backend.Language()),
			Max:      maxDiagnostics,
		}
		if format == "pretty" {
			diagfmt.Pretty(out, reports, opts)
		} else {
			diagfmt.Short(out, reports, opts)
		}
		if !quiet(cmd) {
			printCheckSummary(out, res)
		}
	case "json":
		err = diagfmt.JSON(out, reports, diagfmt.JSONOpts{PathMode: pathMode, Max: maxDiagnostics})
	case "sarif":
		err = diagfmt.Sarif(out, reports, diagfmt.SarifRunMeta{
			ToolName:       "shadertune",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	}
	if err != nil {
		return err
	}

	if showTimings {
		fmt.Fprint(cmd.ErrOrStderr(), req.Timer.Summary())
	}
	if res.HasErrors() {
		return &exitError{code: 1}
	}
	return nil
}

func printCheckSummary(out io.Writer, res check.Result) {
	errs, warnings := res.Counts()
	cached := 0
	for _, f := range res.Files {
		if f.Cached {
			cached++
		}
	}
	status := color.GreenString("ok")
	if errs > 0 {
		status = color.RedString("failed")
	}
	fmt.Fprintf(out, "%s: %d file(s), %d error(s), %d warning(s)", status, len(res.Files), errs, warnings)
	if cached > 0 {
		fmt.Fprintf(out, ", %d cached", cached)
	}
	fmt.Fprintln(out)
}
