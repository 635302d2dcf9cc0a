package diagfmt

import (
	"os"
	"path/filepath"

	"shadertune/internal/diag"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps short or relative paths and shortens long absolute
	// ones to their base name.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// FormatPath renders path according to mode. Relative paths are taken
// against baseDir, or the working directory when baseDir is empty.
func FormatPath(path string, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeRelative:
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return path
		}
		if rel, err := filepath.Rel(baseDir, abs); err == nil {
			return filepath.ToSlash(rel)
		}
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeAuto:
		if len(path) < 40 || !filepath.IsAbs(path) {
			return path
		}
		return filepath.Base(path)
	}
	return path
}

// FileReport is the input to every formatter: one checked file.
type FileReport struct {
	Path        string
	Source      string
	Diagnostics diag.List
	// Err is a load failure; it is rendered as an error on line 1.
	Err error
}

// items returns the diagnostics to render, load failures included.
func (r FileReport) items() diag.List {
	if r.Err == nil {
		return r.Diagnostics
	}
	out := make(diag.List, 0, len(r.Diagnostics)+1)
	out = append(out, diag.Diagnostic{Line: 1, Severity: diag.SevError, Message: "failed to load file: " + r.Err.Error()})
	return append(out, r.Diagnostics...)
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color bool
	// Context is the number of source lines shown above the reported one.
	Context  int
	PathMode PathMode
	BaseDir  string
	// Lexer is the chroma lexer used for source lines when Color is set.
	Lexer string
	// Max caps the diagnostics printed per file; zero means all.
	Max int
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode PathMode
	BaseDir  string
	Max      int // truncates output across all files
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
