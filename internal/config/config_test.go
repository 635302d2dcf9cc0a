package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shadertune/internal/keywords"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiscoverDefaults(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Path != "" || !cfg.Editor.AutoCompile || cfg.Editor.Debounce.Std() != time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Language() != keywords.LangWGSL || cfg.Extension() != ".wgsl" {
		t.Fatalf("unexpected language defaults: %s %s", cfg.Language(), cfg.Extension())
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
[editor]
auto_compile = false
debounce = "250ms"

[compiler]
backend = "Metal"
timeout = "5s"

[workspace]
exclude = ["build/**"]

[cache]
enabled = true
`)
	nested := filepath.Join(root, "shaders", "fx")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Path != path {
		t.Fatalf("Path = %q, want %q", cfg.Path, path)
	}
	if cfg.Editor.AutoCompile || cfg.Editor.Debounce.Std() != 250*time.Millisecond {
		t.Fatalf("unexpected editor section %+v", cfg.Editor)
	}
	if cfg.Compiler.Backend != "metal" || cfg.Compiler.Timeout.Std() != 5*time.Second {
		t.Fatalf("unexpected compiler section %+v", cfg.Compiler)
	}
	if cfg.Extension() != ".metal" || len(cfg.Workspace.Exclude) != 1 {
		t.Fatalf("unexpected workspace section %+v", cfg.Workspace)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Dir != "~/.cache/shadertune" {
		t.Fatalf("cache defaults should survive partial sections: %+v", cfg.Cache)
	}
}

func TestLoadErrorsNameTheFile(t *testing.T) {
	cases := map[string]string{
		"bad backend":   "[compiler]\nbackend = \"vulkan\"\n",
		"bad duration":  "[editor]\ndebounce = \"soon\"\n",
		"zero debounce": "[editor]\ndebounce = \"0s\"\n",
		"unknown key":   "[editor]\nautocompile = true\n",
		"syntax":        "[editor\n",
	}
	for name, body := range cases {
		path := writeConfig(t, t.TempDir(), body)
		_, err := Load(path)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !strings.Contains(err.Error(), path) {
			t.Fatalf("%s: error %q does not name the file", name, err)
		}
	}
}

func TestExtensionOverrideAndCacheDir(t *testing.T) {
	cfg := Default()
	cfg.Workspace.Extension = "msl"
	if cfg.Extension() != ".msl" {
		t.Fatalf("got %q", cfg.Extension())
	}
	cfg.Cache.Dir = "/var/cache/st"
	dir, err := cfg.CacheDir()
	if err != nil || dir != "/var/cache/st" {
		t.Fatalf("CacheDir = %q, %v", dir, err)
	}
}
