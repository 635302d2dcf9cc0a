package templates

import (
	"errors"
	"strings"
	"testing"

	"shadertune/internal/keywords"
)

func TestEveryTemplateHasSource(t *testing.T) {
	seen := map[string]bool{}
	for _, tmpl := range All() {
		if seen[tmpl.Name] {
			t.Fatalf("duplicate template %q", tmpl.Name)
		}
		seen[tmpl.Name] = true
		src := tmpl.Source()
		if strings.TrimSpace(src) == "" {
			t.Fatalf("template %q is empty", tmpl.Name)
		}
		if tmpl.Language == keywords.LangMetal && !strings.HasPrefix(src, "#include <metal_stdlib>") {
			t.Fatalf("template %q lacks the metal_stdlib include", tmpl.Name)
		}
	}
}

func TestMetalCatalogMatchesCategories(t *testing.T) {
	groups := ByCategory(ForLanguage(keywords.LangMetal))
	want := map[Category]int{Fragment: 4, Vertex: 2, Compute: 2, Complete: 2}
	total := 0
	for cat, n := range want {
		if len(groups[cat]) != n {
			t.Fatalf("%s: got %d templates, want %d", cat, len(groups[cat]), n)
		}
		total += n
	}
	if total != 10 {
		t.Fatalf("expected 10 metal templates, got %d", total)
	}
	if Compute.Title() != "Compute Kernels" {
		t.Fatalf("unexpected title %q", Compute.Title())
	}
}

func TestLookup(t *testing.T) {
	tmpl, err := Lookup("Gaussian-Blur")
	if err != nil || tmpl.Category != Compute {
		t.Fatalf("Lookup: %+v, %v", tmpl, err)
	}

	_, err = Lookup("gausian-blur")
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Suggestion != "gaussian-blur" {
		t.Fatalf("expected suggestion, got %v", err)
	}
	if !strings.Contains(err.Error(), `did you mean "gaussian-blur"`) {
		t.Fatalf("unexpected message %q", err.Error())
	}

	_, err = Lookup("zzzzzzzzzzzzzzzzzzzz")
	if !errors.As(err, &nf) || nf.Suggestion != "" {
		t.Fatalf("expected no suggestion, got %v", err)
	}
}
