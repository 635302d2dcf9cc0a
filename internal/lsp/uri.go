package lsp

import (
	"net/url"
	"path/filepath"
	"strings"

	"shadertune/internal/keywords"
)

func uriToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && parsed.Scheme != "file" {
		return ""
	}
	path := parsed.Path
	if parsed.Scheme == "" {
		path = uri
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// canonicalURI normalizes file URIs so that one file has one key. Other
// schemes (untitled:, etc.) are kept verbatim.
func canonicalURI(uri string) string {
	if uri == "" {
		return ""
	}
	if path := uriToPath(uri); path != "" {
		return pathToURI(path)
	}
	return uri
}

// languageOf picks the shader language from the language id, falling back to
// the file extension. ok is false for documents that are not shaders.
func languageOf(uri, languageID string) (keywords.Language, bool) {
	switch strings.ToLower(languageID) {
	case "metal", "msl":
		return keywords.LangMetal, true
	case "wgsl":
		return keywords.LangWGSL, true
	}
	switch strings.ToLower(filepath.Ext(uri)) {
	case keywords.LangMetal.Extension():
		return keywords.LangMetal, true
	case keywords.LangWGSL.Extension():
		return keywords.LangWGSL, true
	}
	return "", false
}
