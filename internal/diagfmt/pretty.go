package diagfmt

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"shadertune/internal/diag"
	"shadertune/internal/keywords"
)

// LexerFor returns the chroma lexer name for a shading language. Metal is a
// C++ dialect; WGSL has no dedicated lexer everywhere, so rust is close
// enough for keywords and literals.
func LexerFor(lang keywords.Language) string {
	if lang == keywords.LangWGSL {
		return "rust"
	}
	return "c++"
}

const tabWidth = 4

// Pretty prints each report's diagnostics in the compiler style:
//
//	path:12:5: error: message
//	   12 | float4 c = foo;
//	      |            ^
func Pretty(w io.Writer, reports []FileReport, opts PrettyOpts) {
	bold := color.New(color.Bold)
	gutter := color.New(color.FgBlue, color.Bold)
	for _, c := range []*color.Color{bold, gutter} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	for _, r := range reports {
		items := r.items().Sorted()
		if opts.Max > 0 && len(items) > opts.Max {
			items = items[:opts.Max]
		}
		if len(items) == 0 {
			continue
		}
		path := FormatPath(r.Path, opts.PathMode, opts.BaseDir)
		lines := strings.Split(r.Source, "\n")
		for _, d := range items {
			loc := fmt.Sprintf("%s:%d:", path, d.Line)
			if d.HasColumn() {
				loc = fmt.Sprintf("%s:%d:%d:", path, d.Line, d.Column)
			}
			sevColor := severityColor(d.Severity, opts.Color)
			fmt.Fprintf(w, "%s %s %s\n", bold.Sprint(loc), sevColor.Sprint(d.Severity.Label()+":"), d.Message)
			writeSnippet(w, lines, d, opts, gutter)
		}
	}
}

func severityColor(sev diag.Severity, on bool) *color.Color {
	var c *color.Color
	switch sev {
	case diag.SevError:
		c = color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		c = color.New(color.FgYellow, color.Bold)
	default:
		c = color.New(color.FgCyan, color.Bold)
	}
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func writeSnippet(w io.Writer, lines []string, d diag.Diagnostic, opts PrettyOpts, gutter *color.Color) {
	if d.Line > len(lines) || (len(lines) == 1 && lines[0] == "") {
		return
	}
	first := max(1, d.Line-max(0, opts.Context))
	width := len(fmt.Sprint(d.Line))
	for n := first; n <= d.Line; n++ {
		text := expandTabs(strings.TrimRight(lines[n-1], "\r"))
		fmt.Fprintf(w, "  %s %s\n", gutter.Sprintf("%*d |", width, n), highlight(text, opts))
	}
	if !d.HasColumn() {
		return
	}
	raw := strings.TrimRight(lines[d.Line-1], "\r")
	col := min(d.Column-1, len(raw))
	pad := runewidth.StringWidth(expandTabs(raw[:col]))
	caret := strings.Repeat(" ", pad) + "^"
	if opts.Color {
		caret = severityColor(d.Severity, true).Sprint(caret)
	}
	fmt.Fprintf(w, "  %s %s\n", gutter.Sprintf("%*s |", width, ""), caret)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func highlight(line string, opts PrettyOpts) string {
	if !opts.Color || opts.Lexer == "" || line == "" {
		return line
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, line, opts.Lexer, "terminal256", "monokai"); err != nil {
		return line
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Short prints one line per diagnostic: path:line[:col]: severity: message.
func Short(w io.Writer, reports []FileReport, opts PrettyOpts) {
	for _, r := range reports {
		path := FormatPath(r.Path, opts.PathMode, opts.BaseDir)
		items := r.items()
		if opts.Max > 0 && len(items) > opts.Max {
			items = items[:opts.Max]
		}
		for _, d := range items {
			if d.HasColumn() {
				fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", path, d.Line, d.Column, d.Severity.Label(), d.Message)
				continue
			}
			fmt.Fprintf(w, "%s:%d: %s: %s\n", path, d.Line, d.Severity.Label(), d.Message)
		}
	}
}
