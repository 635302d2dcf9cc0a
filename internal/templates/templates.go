// Package templates provides starter shaders.
package templates

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"shadertune/internal/keywords"
)

//go:embed msl/*.metal wgsl/*.wgsl
var sources embed.FS

// Category groups templates by pipeline stage.
type Category string

const (
	Fragment Category = "fragment"
	Vertex   Category = "vertex"
	Compute  Category = "compute"
	Complete Category = "complete"
)

// Categories lists the categories in display order.
var Categories = []Category{Fragment, Vertex, Compute, Complete}

// Title is the heading used when listing a category.
func (c Category) Title() string {
	switch c {
	case Fragment:
		return "Fragment Shaders"
	case Vertex:
		return "Vertex Shaders"
	case Compute:
		return "Compute Kernels"
	case Complete:
		return "Complete Pipelines"
	}
	return string(c)
}

// Template is a named starter shader.
type Template struct {
	Name        string
	Title       string
	Description string
	Category    Category
	Language    keywords.Language
}

// Source returns the template's shader text.
func (t Template) Source() string {
	dir := string(t.Language)
	data, err := sources.ReadFile(path.Join(dir, t.Name+t.Language.Extension()))
	if err != nil {
		// every entry of catalog has an embedded file; see TestEveryTemplateHasSource
		panic(fmt.Sprintf("template %s: %v", t.Name, err))
	}
	return string(data)
}

var catalog = []Template{
	{"basic-fragment", "Basic Fragment Shader", "Simple solid color fragment shader", Fragment, keywords.LangMetal},
	{"gradient-fragment", "Gradient Fragment Shader", "Animated color gradient effect", Fragment, keywords.LangMetal},
	{"texture-fragment", "Texture Fragment Shader", "Sample and display a texture", Fragment, keywords.LangMetal},
	{"procedural-noise", "Procedural Noise", "Generate procedural noise pattern", Fragment, keywords.LangMetal},
	{"passthrough-vertex", "Passthrough Vertex Shader", "Simple vertex shader that passes data through", Vertex, keywords.LangMetal},
	{"transform-vertex", "Transform Vertex Shader", "Vertex shader with model-view-projection matrices", Vertex, keywords.LangMetal},
	{"image-processing", "Image Processing Kernel", "Basic compute kernel for image processing", Compute, keywords.LangMetal},
	{"gaussian-blur", "Gaussian Blur Kernel", "Compute kernel for Gaussian blur effect", Compute, keywords.LangMetal},
	{"basic-pipeline", "Basic Render Pipeline", "Complete vertex + fragment shader pipeline", Complete, keywords.LangMetal},
	{"textured-pipeline", "Textured Render Pipeline", "Complete pipeline with texture sampling", Complete, keywords.LangMetal},
	{"solid-fragment", "Solid Fragment (WGSL)", "Solid color fragment entry point", Fragment, keywords.LangWGSL},
	{"grayscale-compute", "Grayscale Compute (WGSL)", "Storage texture grayscale kernel", Compute, keywords.LangWGSL},
	{"textured-quad", "Textured Quad (WGSL)", "Full-screen quad with texture sampling", Complete, keywords.LangWGSL},
}

// All returns every template in catalog order.
func All() []Template {
	return append([]Template(nil), catalog...)
}

// ForLanguage returns the templates written in lang.
func ForLanguage(lang keywords.Language) []Template {
	var out []Template
	for _, t := range catalog {
		if t.Language == lang {
			out = append(out, t)
		}
	}
	return out
}

// ByCategory groups templates, keeping catalog order inside a group.
func ByCategory(list []Template) map[Category][]Template {
	out := make(map[Category][]Template, len(Categories))
	for _, t := range list {
		out[t.Category] = append(out[t.Category], t)
	}
	return out
}

// NotFoundError is returned by Lookup for an unknown name.
type NotFoundError struct {
	Name       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown template %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown template %q", e.Name)
}

// minSimilarity is the Levenshtein similarity below which no suggestion is made.
const minSimilarity = 0.5

// Lookup finds a template by name, ignoring case. On a miss the error
// carries the closest name when one is similar enough.
func Lookup(name string) (Template, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, t := range catalog {
		if t.Name == key {
			return t, nil
		}
	}
	return Template{}, &NotFoundError{Name: name, Suggestion: suggest(key)}
}

func suggest(key string) string {
	if key == "" {
		return ""
	}
	metric := metrics.NewLevenshtein()
	type scored struct {
		name  string
		score float64
	}
	cands := make([]scored, 0, len(catalog))
	for _, t := range catalog {
		cands = append(cands, scored{t.Name, strutil.Similarity(key, t.Name, metric)})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	if cands[0].score < minSimilarity {
		return ""
	}
	return cands[0].name
}
