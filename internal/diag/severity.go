package diag

import "strings"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics. The parser never produces it.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Label is the lower-case form used in compiler-style output.
func (s Severity) Label() string {
	return strings.ToLower(s.String())
}

// MarshalText encodes the severity by its label.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.Label()), nil
}

// UnmarshalText accepts any case of info, warning or error.
func (s *Severity) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "info":
		*s = SevInfo
	case "warning":
		*s = SevWarning
	default:
		*s = SevError
	}
	return nil
}
