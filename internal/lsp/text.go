package lsp

import (
	"strings"
	"unicode/utf8"
)

func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := offsetForPosition(text, change.Range.Start)
		end := offsetForPosition(text, change.Range.End)
		start = max(0, min(start, len(text)))
		end = max(start, min(end, len(text)))
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

// offsetForPosition maps an LSP position (UTF-16 columns) to a byte offset.
func offsetForPosition(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	i := lineStart(text, pos.Line)
	if i < 0 {
		return len(text)
	}
	units := 0
	for i < len(text) && text[i] != '\n' {
		r, size := utf8.DecodeRuneInString(text[i:])
		need := utf16Width(r)
		if units+need > pos.Character {
			break
		}
		units += need
		i += size
	}
	return i
}

// positionForOffset is the inverse of offsetForPosition.
func positionForOffset(text string, offset int) position {
	offset = max(0, min(offset, len(text)))
	before := text[:offset]
	line := strings.Count(before, "\n")
	start := strings.LastIndexByte(before, '\n') + 1
	return position{Line: line, Character: utf16Len(before[start:])}
}

// lineStart returns the byte offset of the 0-based line, or -1 past the end.
func lineStart(text string, line int) int {
	i := 0
	for n := 0; n < line; n++ {
		nl := strings.IndexByte(text[i:], '\n')
		if nl < 0 {
			return -1
		}
		i += nl + 1
	}
	return i
}

// lineText returns the 0-based line without its terminator.
func lineText(text string, line int) string {
	start := lineStart(text, line)
	if start < 0 {
		return ""
	}
	rest := text[start:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSuffix(rest, "\r")
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Width(r)
	}
	return n
}

func utf16Width(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}
