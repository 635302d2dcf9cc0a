// Package complete implements prefix completion over a static keyword database.
//
// Offsets are byte offsets into the UTF-8 text. A word character is a Unicode
// letter, a Unicode number or an underscore. Matching is an exact
// case-insensitive prefix test; there is no fuzzy matching or ranking.
package complete

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"shadertune/internal/keywords"
)

// MinPrefix is the shortest partial word that produces completions.
const MinPrefix = 2

// Engine filters a keyword database against the word before the cursor.
type Engine struct {
	db     []keywords.Item
	folded []string
}

// New returns an engine over db. The slice is kept by reference.
func New(db []keywords.Item) *Engine {
	fold := cases.Fold()
	folded := make([]string, len(db))
	for i, it := range db {
		folded[i] = fold.String(it.Text)
	}
	return &Engine{db: db, folded: folded}
}

// Database returns the items the engine completes from.
func (e *Engine) Database() []keywords.Item { return e.db }

// PartialWord returns the run of word characters that ends exactly at cursor.
// It reports false when the run is empty, contains only digits, or cursor
// lies outside text.
func PartialWord(text string, cursor int) (string, bool) {
	if cursor < 0 || cursor > len(text) {
		return "", false
	}
	start := scanBack(text, cursor)
	if start == cursor {
		return "", false
	}
	word := text[start:cursor]
	if !strings.ContainsFunc(word, func(r rune) bool { return unicode.IsLetter(r) || r == '_' }) {
		return "", false
	}
	return word, true
}

// ShouldTrigger reports whether typing at cursor should open the completion list.
func ShouldTrigger(text string, cursor int) bool {
	word, ok := PartialWord(text, cursor)
	return ok && utf8.RuneCountInString(word) >= MinPrefix
}

// WordRange returns the byte span of the word the cursor sits in or after.
// The span extends backward like PartialWord and forward over word characters.
func WordRange(text string, cursor int) (start, end int, ok bool) {
	if cursor < 0 || cursor > len(text) {
		return 0, 0, false
	}
	start = scanBack(text, cursor)
	end = cursor
	for end < len(text) {
		r, size := utf8.DecodeRuneInString(text[end:])
		if !isWordRune(r) {
			break
		}
		end += size
	}
	if start >= end {
		return 0, 0, false
	}
	return start, end, true
}

// Complete returns the database items whose text starts with the partial word
// at cursor, ignoring case, sorted ascending by text.
func (e *Engine) Complete(text string, cursor int) []keywords.Item {
	word, ok := PartialWord(text, cursor)
	if !ok || utf8.RuneCountInString(word) < MinPrefix {
		return nil
	}
	// a Caser carries state, so each call gets its own
	prefix := cases.Fold().String(word)
	var out []keywords.Item
	for i, it := range e.db {
		if strings.HasPrefix(e.folded[i], prefix) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out
}

// ShouldTrigger is the method form of the package function.
func (e *Engine) ShouldTrigger(text string, cursor int) bool { return ShouldTrigger(text, cursor) }

// WordRange is the method form of the package function.
func (e *Engine) WordRange(text string, cursor int) (start, end int, ok bool) {
	return WordRange(text, cursor)
}

func scanBack(text string, cursor int) int {
	start := cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	return start
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
