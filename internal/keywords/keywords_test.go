package keywords

import (
	"strings"
	"testing"
)

func TestDatabasesHaveUniqueText(t *testing.T) {
	for name, db := range map[string][]Item{"msl": Metal(), "wgsl": WGSL()} {
		seen := make(map[string]struct{}, len(db))
		for _, it := range db {
			if it.Text == "" {
				t.Fatalf("%s: empty item text: %+v", name, it)
			}
			if _, ok := seen[it.Text]; ok {
				t.Fatalf("%s: duplicate item %q", name, it.Text)
			}
			seen[it.Text] = struct{}{}
		}
	}
}

func TestMetalCategoryOrder(t *testing.T) {
	db := Metal()
	last := KindKeyword
	for _, it := range db {
		if it.Kind < last {
			t.Fatalf("item %q (%s) appears after %s items", it.Text, it.Kind, last)
		}
		last = it.Kind
	}
	if db[0].Kind != KindKeyword || db[len(db)-1].Kind != KindAttribute {
		t.Fatalf("unexpected boundaries: first=%s last=%s", db[0].Kind, db[len(db)-1].Kind)
	}
}

func TestFunctionsCarrySnippets(t *testing.T) {
	for _, it := range Metal() {
		if it.Kind != KindFunction {
			continue
		}
		if !strings.HasPrefix(it.Snippet, it.Text+"(") {
			t.Fatalf("function %q has snippet %q", it.Text, it.Snippet)
		}
	}
	clamp := find(Metal(), "clamp")
	if clamp == nil || clamp.InsertionText() != "clamp($0, $1, $2)" {
		t.Fatalf("unexpected clamp item: %+v", clamp)
	}
	if got := find(Metal(), "float4").InsertionText(); got != "float4" {
		t.Fatalf("expected bare text for type, got %q", got)
	}
}

func TestAttributesAreBracketed(t *testing.T) {
	for _, it := range Metal() {
		if it.Kind == KindAttribute && (!strings.HasPrefix(it.Text, "[[") || !strings.HasSuffix(it.Text, "]]")) {
			t.Fatalf("attribute %q is not bracket-delimited", it.Text)
		}
	}
	if find(Metal(), "[[buffer(0)]]") == nil {
		t.Fatal("expected buffer binding attribute")
	}
}

func TestParseLanguage(t *testing.T) {
	cases := map[string]Language{"metal": LangMetal, "MSL": LangMetal, " wgsl ": LangWGSL}
	for in, want := range cases {
		got, err := ParseLanguage(in)
		if err != nil || got != want {
			t.Fatalf("ParseLanguage(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseLanguage("hlsl"); err == nil {
		t.Fatal("expected error for hlsl")
	}
	if LangWGSL.Extension() != ".wgsl" || LangMetal.Extension() != ".metal" {
		t.Fatal("unexpected extensions")
	}
}

func TestKindDisplayName(t *testing.T) {
	if KindFunction.DisplayName() != "Function" {
		t.Fatalf("got %q", KindFunction.DisplayName())
	}
}

func find(db []Item, text string) *Item {
	for i := range db {
		if db[i].Text == text {
			return &db[i]
		}
	}
	return nil
}
