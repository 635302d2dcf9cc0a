package lsp

import (
	"unicode"
	"unicode/utf8"

	"shadertune/internal/compiler"
	"shadertune/internal/diag"
)

const diagnosticSource = "shadertune"

// publishState forwards a settled compile of uri. States from a coordinator
// that no longer owns the document are dropped. Ranges are computed against
// the compiled text, which may be older than the document.
func (s *Server) publishState(uri string, coord *compiler.Coordinator, st compiler.State) {
	if st.Compiling {
		return
	}
	s.mu.Lock()
	doc := s.docs[uri]
	if doc == nil || doc.coord != coord {
		s.mu.Unlock()
		return
	}
	trace := s.traceLSP
	s.mu.Unlock()
	text := st.Source

	list := toLSPDiagnostics(text, st.Diagnostics, s.opts.MaxDiagnostics)
	if trace {
		s.log.Info("publish", "uri", uri, "seq", st.Seq, "diagnostics", len(list), "elapsed", st.Elapsed)
	}
	if err := s.sendPublish(uri, list); err != nil {
		s.log.Warn("failed to publish diagnostics", "uri", uri, "err", err)
	}
}

// toLSPDiagnostics converts 1-based compiler positions into 0-based UTF-16
// ranges against text. A diagnostic with a column spans the identifier at
// that column (or one character); one without spans the line's content.
func toLSPDiagnostics(text string, list diag.List, limit int) []lspDiagnostic {
	sorted := list.Sorted()
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]lspDiagnostic, 0, len(sorted))
	for _, d := range sorted {
		line := d.Line - 1
		lt := lineText(text, line)
		var start, end int
		if d.HasColumn() {
			start = runeBoundary(lt, d.Column-1)
			end = identEnd(lt, start)
		} else {
			start = len(lt) - len(trimLeftSpace(lt))
			end = len(lt)
		}
		out = append(out, lspDiagnostic{
			Range: lspRange{
				Start: position{Line: line, Character: utf16Len(lt[:start])},
				End:   position{Line: line, Character: utf16Len(lt[:end])},
			},
			Severity: lspSeverity(d.Severity),
			Source:   diagnosticSource,
			Message:  d.Message,
		})
	}
	return out
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	default:
		return 3
	}
}

// runeBoundary clamps b into s and backs it up to a rune start.
func runeBoundary(s string, b int) int {
	b = max(0, min(b, len(s)))
	for b > 0 && b < len(s) && !utf8.RuneStart(s[b]) {
		b--
	}
	return b
}

func identEnd(s string, start int) int {
	end := start
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		end += size
	}
	if end == start && start < len(s) {
		_, size := utf8.DecodeRuneInString(s[start:])
		end += size
	}
	return end
}

func trimLeftSpace(s string) string {
	for i, r := range s {
		if !unicode.IsSpace(r) {
			return s[i:]
		}
	}
	return ""
}
