// Package keywords holds the static completion databases for the supported
// shading languages. Databases are built once at package init and never
// mutated; callers share the returned slices and must treat them as read-only.
package keywords

import (
	"fmt"
	"strings"
)

// Kind classifies a completion item.
type Kind uint8

const (
	KindKeyword Kind = iota
	KindType
	KindFunction
	KindAttribute
	KindVariable
)

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindType:
		return "type"
	case KindFunction:
		return "function"
	case KindAttribute:
		return "attribute"
	case KindVariable:
		return "variable"
	}
	return "unknown"
}

// DisplayName returns the capitalized kind name used in UI listings.
func (k Kind) DisplayName() string {
	s := k.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// Item is a single completion candidate.
type Item struct {
	Text        string
	Kind        Kind
	Description string
	// Snippet is an insertion template with ordered placeholders ($0, $1, ...).
	Snippet string
}

// InsertionText returns the snippet when present, otherwise the bare text.
func (it Item) InsertionText() string {
	if it.Snippet != "" {
		return it.Snippet
	}
	return it.Text
}

// Language selects a keyword database.
type Language string

const (
	LangMetal Language = "msl"
	LangWGSL  Language = "wgsl"
)

// ParseLanguage converts a user supplied language name.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "msl", "metal":
		return LangMetal, nil
	case "wgsl":
		return LangWGSL, nil
	default:
		return "", fmt.Errorf("unknown shading language %q (expected msl|wgsl)", s)
	}
}

// Extension returns the shader file extension conventionally used for lang.
func (l Language) Extension() string {
	if l == LangWGSL {
		return ".wgsl"
	}
	return ".metal"
}

// ForLanguage returns the database for lang. Unknown languages get the Metal set.
func ForLanguage(lang Language) []Item {
	if lang == LangWGSL {
		return wgslAll
	}
	return metalAll
}

// Metal returns the Metal Shading Language database: keywords, types,
// built-in functions and attributes, in that order.
func Metal() []Item { return metalAll }

// WGSL returns the WebGPU Shading Language database.
func WGSL() []Item { return wgslAll }

func fn(text, desc, snippet string) Item {
	return Item{Text: text, Kind: KindFunction, Description: desc, Snippet: snippet}
}

func kw(text, desc string) Item { return Item{Text: text, Kind: KindKeyword, Description: desc} }

func ty(text, desc string) Item { return Item{Text: text, Kind: KindType, Description: desc} }

func attr(text, desc string) Item { return Item{Text: text, Kind: KindAttribute, Description: desc} }

func concat(parts ...[]Item) []Item {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]Item, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
