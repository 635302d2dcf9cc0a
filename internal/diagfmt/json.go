package diagfmt

import (
	"encoding/json"
	"io"

	"fortio.org/safecast"
)

// LocationJSON is a position in a file. Column is omitted when the compiler
// reported none.
type LocationJSON struct {
	File   string `json:"file"`
	Line   uint32 `json:"line"`
	Column uint32 `json:"column,omitempty"`
}

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Files       int              `json:"files"`
}

// BuildDiagnosticsOutput builds the JSON document without encoding it.
func BuildDiagnosticsOutput(reports []FileReport, opts JSONOpts) (DiagnosticsOutput, error) {
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0), Files: len(reports)}
	for _, r := range reports {
		path := FormatPath(r.Path, opts.PathMode, opts.BaseDir)
		for _, d := range r.items() {
			if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
				out.Count = len(out.Diagnostics)
				return out, nil
			}
			line, err := safecast.Conv[uint32](d.Line)
			if err != nil {
				return DiagnosticsOutput{}, err
			}
			col, err := safecast.Conv[uint32](d.Column)
			if err != nil {
				return DiagnosticsOutput{}, err
			}
			out.Diagnostics = append(out.Diagnostics, DiagnosticJSON{
				Severity: d.Severity.String(),
				Message:  d.Message,
				Location: LocationJSON{File: path, Line: line, Column: col},
			})
		}
	}
	out.Count = len(out.Diagnostics)
	return out, nil
}

// JSON writes the diagnostics as indented JSON.
func JSON(w io.Writer, reports []FileReport, opts JSONOpts) error {
	output, err := BuildDiagnosticsOutput(reports, opts)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
