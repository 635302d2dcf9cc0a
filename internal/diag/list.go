package diag

import "sort"

// List is an ordered set of diagnostics from one compile. Order is parse order.
type List []Diagnostic

// HasErrors reports whether any diagnostic has Severity >= SevError.
func (l List) HasErrors() bool {
	for i := range l {
		if l[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any diagnostic has Severity >= SevWarning.
func (l List) HasWarnings() bool {
	for i := range l {
		if l[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with exactly sev.
func (l List) Count(sev Severity) int {
	n := 0
	for i := range l {
		if l[i].Severity == sev {
			n++
		}
	}
	return n
}

// Filter returns the diagnostics at or above minimum, keeping order.
func (l List) Filter(minimum Severity) List {
	out := make(List, 0, len(l))
	for _, d := range l {
		if d.Severity >= minimum {
			out = append(out, d)
		}
	}
	return out
}

// Sorted returns a copy ordered by line, column, then severity (errors first).
// The receiver is left untouched.
func (l List) Sorted() List {
	out := append(List(nil), l...)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i], out[j]
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		return di.Severity > dj.Severity
	})
	return out
}

// Clone returns an independent copy; nil stays nil.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	return append(List(nil), l...)
}
