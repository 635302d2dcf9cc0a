package diag

import "fmt"

// Diagnostic is one structured compiler message.
type Diagnostic struct {
	// Line is 1-based.
	Line int
	// Column is 1-based; zero means the compiler reported no column.
	Column   int
	Severity Severity
	Message  string
}

// HasColumn reports whether the compiler supplied a column.
func (d Diagnostic) HasColumn() bool { return d.Column > 0 }

// DisplayText renders d as "Line 12:5 - error: message".
func (d Diagnostic) DisplayText() string {
	if d.HasColumn() {
		return fmt.Sprintf("Line %d:%d - %s: %s", d.Line, d.Column, d.Severity.Label(), d.Message)
	}
	return fmt.Sprintf("Line %d - %s: %s", d.Line, d.Severity.Label(), d.Message)
}
