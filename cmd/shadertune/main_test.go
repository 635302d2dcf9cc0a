package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command against a throwaway config. Flag values
// stick between runs, so the shared persistent flags are reset each time.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	conf := filepath.Join(t.TempDir(), "shadertune.toml")
	if err := os.WriteFile(conf, []byte("[compiler]\nbackend = \"naga\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", conf, "--color", "off", "--backend=", "--quiet=false"}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestReadSwitch(t *testing.T) {
	tests := []struct {
		in   string
		want switchMode
		ok   bool
	}{
		{"", modeAuto, true},
		{"AUTO", modeAuto, true},
		{" on ", modeOn, true},
		{"always", modeOn, true},
		{"off", modeOff, true},
		{"sometimes", "", false},
	}
	for _, tt := range tests {
		got, err := readSwitch("ui", tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("readSwitch(%q) = %q, %v", tt.in, got, err)
		}
	}
	if _, err := readSwitch("color", "maybe"); err == nil || !strings.Contains(err.Error(), "--color") {
		t.Fatalf("expected flag name in error, got %v", err)
	}
	if !modeOn.enabled(os.Stdout) || modeOff.enabled(os.Stdout) {
		t.Fatal("explicit modes must not consult the terminal")
	}
}

func TestCompleteCommandJSON(t *testing.T) {
	file := writeFile(t, filepath.Join(t.TempDir(), "a.metal"), "float4 c = flo")
	out, _, err := execute(t, "complete", "--format", "json", "--offset=-1", file)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	var payload completionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload.Prefix != "flo" || payload.Start != 11 || payload.End != 14 {
		t.Fatalf("unexpected range %+v", payload)
	}
	found := false
	for _, it := range payload.Items {
		if !strings.HasPrefix(strings.ToLower(it.Text), "flo") {
			t.Fatalf("item %q does not match prefix", it.Text)
		}
		found = found || it.Text == "float"
	}
	if !found {
		t.Fatalf("expected float among %+v", payload.Items)
	}
}

func TestLanguageForPath(t *testing.T) {
	if got := languageForPath("x/shader.WGSL"); got != "wgsl" {
		t.Fatalf("wgsl: got %s", got)
	}
	if got := languageForPath("shader.metal"); got != "msl" {
		t.Fatalf("metal: got %s", got)
	}
}

func TestTreeCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.wgsl"), "")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")
	writeFile(t, filepath.Join(dir, "sub", "c.wgsl"), "")
	out, _, err := execute(t, "tree", dir)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if !strings.Contains(out, "a.wgsl") || !strings.Contains(out, "sub/\n  c.wgsl") {
		t.Fatalf("unexpected tree:\n%s", out)
	}
	if strings.Contains(out, "notes.txt") {
		t.Fatalf("non-shader file listed:\n%s", out)
	}
}

func TestTemplatesNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solid.wgsl")
	if _, _, err := execute(t, "--quiet", "templates", "new", "solid-fragment", path); err != nil {
		t.Fatalf("templates new: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		t.Fatalf("template not written: %v", err)
	}
	if _, _, err := execute(t, "templates", "new", "solid-fragment", path); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
	if _, _, err := execute(t, "templates", "new", "solid-fragmnt", path); err == nil || !strings.Contains(err.Error(), "solid-fragment") {
		t.Fatalf("expected suggestion, got %v", err)
	}
}

func TestTemplatesListFiltersLanguage(t *testing.T) {
	out, _, err := execute(t, "templates", "list", "--language", "wgsl")
	if err != nil {
		t.Fatalf("templates list: %v", err)
	}
	if !strings.Contains(out, "textured-quad") || strings.Contains(out, "basic-fragment") {
		t.Fatalf("unexpected listing:\n%s", out)
	}
}

func TestCheckFailureExitsOne(t *testing.T) {
	file := writeFile(t, filepath.Join(t.TempDir(), "broken.wgsl"), "fn main( {\n")
	out, _, err := execute(t, "check", "--ui", "off", "--format", "short", file)
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("expected exit status 1, got %v", err)
	}
	if !strings.Contains(out, "broken.wgsl:") || !strings.Contains(out, "error") {
		t.Fatalf("expected a diagnostic line, got:\n%s", out)
	}
}

func TestVersionJSON(t *testing.T) {
	out, _, err := execute(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload["tool"] != "shadertune" || payload["version"] == "" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestUnknownBackendFlag(t *testing.T) {
	_, _, err := execute(t, "--backend", "vulkan", "tree", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Fatalf("expected backend error, got %v", err)
	}
}
