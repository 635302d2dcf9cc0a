package diag

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MetalPattern matches the Metal compiler's message format:
//
//	program_source:<line>[:<column>]: <error|warning>: <message>
//
// Capture groups are line, column, severity and message, in that order.
// A backend with a different message format needs its own pattern with the
// same four groups.
const MetalPattern = `(?i)program_source:(\d+)(?::(\d+))?:\s*(error|warning):\s*(.+)`

// NagaPattern matches the locations naga reports for WGSL:
//
//	lowering error: <line>:<col>: <message>
//	parse error: line <line>, column <col>: <message>
//
// naga has no warnings, so the severity group is always empty and every
// match is an error.
const NagaPattern = `(?:line\s+)?\b(\d+)(?::|,\s*column\s+)(\d+):\s*()(.+)`

// Parser turns raw compiler output into diagnostics.
type Parser struct {
	re *regexp.Regexp
}

var defaultParser = MustParser(MetalPattern)

// NewParser compiles pattern, which must expose the four capture groups
// described on MetalPattern. An empty severity group means error.
func NewParser(pattern string) (*Parser, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("diagnostic pattern: %w", err)
	}
	if re.NumSubexp() < 4 {
		return nil, fmt.Errorf("diagnostic pattern %q: need 4 capture groups, got %d", pattern, re.NumSubexp())
	}
	return &Parser{re: re}, nil
}

// MustParser is NewParser that panics on a bad pattern. Use it for constants.
func MustParser(pattern string) *Parser {
	p, err := NewParser(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse extracts diagnostics using MetalPattern.
func Parse(raw string) List {
	return defaultParser.Parse(raw)
}

// Parse extracts every non-overlapping match of the pattern, left to right.
// If nothing matches it returns a single error diagnostic on line 1 whose
// message is the whole input, so the result is never empty.
func (p *Parser) Parse(raw string) List {
	matches := p.re.FindAllStringSubmatchIndex(raw, -1)
	out := make(List, 0, len(matches))
	for _, m := range matches {
		line, err := strconv.Atoi(group(raw, m, 1))
		if err != nil {
			continue
		}
		if line < 1 {
			line = 1
		}
		column := 0
		if col := group(raw, m, 2); col != "" {
			if n, err := strconv.Atoi(col); err == nil && n > 0 {
				column = n
			}
		}
		sev := SevError
		if strings.EqualFold(group(raw, m, 3), "warning") {
			sev = SevWarning
		}
		out = append(out, Diagnostic{
			Line:     line,
			Column:   column,
			Severity: sev,
			Message:  strings.TrimRight(group(raw, m, 4), "\r"),
		})
	}
	if len(out) == 0 {
		return List{Fallback(raw)}
	}
	return out
}

// Fallback is the diagnostic used when raw compiler output is unrecognized.
func Fallback(raw string) Diagnostic {
	return Diagnostic{Line: 1, Severity: SevError, Message: raw}
}

func group(s string, m []int, i int) string {
	if 2*i+1 >= len(m) || m[2*i] < 0 {
		return ""
	}
	return s[m[2*i]:m[2*i+1]]
}
