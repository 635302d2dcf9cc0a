package complete

import (
	"sort"
	"strings"
	"testing"

	"shadertune/internal/keywords"
)

func TestCompleteFloatPrefix(t *testing.T) {
	db := []keywords.Item{
		{Text: "float3", Kind: keywords.KindType},
		{Text: "kernel", Kind: keywords.KindKeyword},
		{Text: "float", Kind: keywords.KindType},
		{Text: "float2", Kind: keywords.KindType},
	}
	got := labels(New(db).Complete("flo", 3))
	want := []string{"float", "float2", "float3"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompleteIsCaseInsensitive(t *testing.T) {
	e := New(keywords.Metal())
	got := labels(e.Complete("return FLOAT4X", 14))
	want := []string{"float4x2", "float4x3", "float4x4"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompleteResultsArePrefixedSubsetSorted(t *testing.T) {
	db := keywords.Metal()
	e := New(db)
	texts := []string{"sa", "te", "float", "de", "th", "Cl", "x_fl", "a1b"}
	for _, text := range texts {
		items := e.Complete(text, len(text))
		word, _ := PartialWord(text, len(text))
		if !sort.SliceIsSorted(items, func(i, j int) bool { return items[i].Text < items[j].Text }) {
			t.Fatalf("%q: results not sorted: %v", text, labels(items))
		}
		for _, it := range items {
			if !strings.HasPrefix(strings.ToLower(it.Text), strings.ToLower(word)) {
				t.Fatalf("%q: %q does not match prefix %q", text, it.Text, word)
			}
			if !contains(db, it.Text) {
				t.Fatalf("%q: %q not in database", text, it.Text)
			}
		}
	}
}

func TestShortAndDigitPrefixes(t *testing.T) {
	e := New(keywords.Metal())
	cases := []struct {
		text   string
		cursor int
	}{
		{"", 0},
		{"f", 1},
		{"x = f", 5},
		{"12", 2},
		{"x = 12345", 9},
		{"float", 0},
		{"float ", 6},
		{"float", 9},
		{"float", -1},
	}
	for _, tc := range cases {
		if ShouldTrigger(tc.text, tc.cursor) {
			t.Fatalf("ShouldTrigger(%q, %d) = true", tc.text, tc.cursor)
		}
		if items := e.Complete(tc.text, tc.cursor); len(items) != 0 {
			t.Fatalf("Complete(%q, %d) = %v", tc.text, tc.cursor, labels(items))
		}
	}
}

func TestShouldTrigger(t *testing.T) {
	cases := []struct {
		text   string
		cursor int
		want   bool
	}{
		{"fl", 2, true},
		{"_1", 2, true},
		{"a1", 2, true},
		{"  half4 h", 7, true},
		{"  half4 h", 9, false},
		{"12ab", 2, false},
		{"12ab", 4, true},
		{"héllo", len("h"), false},
		{"héllo", len("hé"), true},
	}
	for _, tc := range cases {
		if got := ShouldTrigger(tc.text, tc.cursor); got != tc.want {
			t.Fatalf("ShouldTrigger(%q, %d) = %v, want %v", tc.text, tc.cursor, got, tc.want)
		}
	}
}

func TestPartialWordStopsAtNonWord(t *testing.T) {
	word, ok := PartialWord("float4 c = sat", len("float4 c = sat"))
	if !ok || word != "sat" {
		t.Fatalf("got %q, %v", word, ok)
	}
	if _, ok := PartialWord("a.b(", 4); ok {
		t.Fatal("expected no partial word after '('")
	}
}

func TestWordRange(t *testing.T) {
	text := "return saturate(x);"
	cases := []struct {
		cursor     int
		start, end int
		ok         bool
	}{
		{len("return sat"), 7, 15, true},
		{len("return "), 7, 15, true},
		{len("return saturate"), 7, 15, true},
		{len("return saturate("), 16, 17, true},
		{len(text), 0, 0, false},
		{len(text) + 1, 0, 0, false},
	}
	for _, tc := range cases {
		start, end, ok := WordRange(text, tc.cursor)
		if ok != tc.ok || start != tc.start || end != tc.end {
			t.Fatalf("WordRange(%d) = (%d, %d, %v), want (%d, %d, %v)", tc.cursor, start, end, ok, tc.start, tc.end, tc.ok)
		}
	}
}

func labels(items []keywords.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func contains(db []keywords.Item, text string) bool {
	for _, it := range db {
		if it.Text == text {
			return true
		}
	}
	return false
}
