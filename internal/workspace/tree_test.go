package workspace

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if strings.HasSuffix(f, "/") {
			if err := os.MkdirAll(path, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("// "+f), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBuildTreePrunesAndSorts(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"zeta.metal",
		"Alpha.metal",
		"notes.txt",
		".hidden.metal",
		".git/config.metal",
		"empty/",
		"docs/readme.md",
		"shaders/blur.metal",
		"shaders/deep/empty/",
		"Effects/glow.METAL",
	)
	nodes, err := BuildTree(root, "metal", nil)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	want := "Effects/\n  glow.METAL\nshaders/\n  blur.metal\nAlpha.metal\nzeta.metal\n"
	if got := Render(nodes); got != want {
		t.Fatalf("tree:\n%s\nwant:\n%s", got, want)
	}
	files := Files(nodes)
	if len(files) != 4 || files[0] != filepath.Join(root, "Effects", "glow.METAL") {
		t.Fatalf("unexpected files %v", files)
	}
	if nodes[1].Children[0].Rel != "shaders/blur.metal" {
		t.Fatalf("unexpected rel path %q", nodes[1].Children[0].Rel)
	}
}

func TestBuildTreeExcludes(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "build/out.wgsl", "src/a.wgsl", "src/gen/b.wgsl", "src/c_test.wgsl")
	nodes, err := BuildTree(root, ".wgsl", []string{"build", "src/gen/**", "**_test.wgsl"})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if got, want := Render(nodes), "src/\n  a.wgsl\n"; got != want {
		t.Fatalf("tree:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildTreeUnreadable(t *testing.T) {
	if _, err := BuildTree(filepath.Join(t.TempDir(), "missing"), ".metal", nil); err == nil {
		t.Fatal("expected error for missing root")
	}
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := t.TempDir()
	writeFiles(t, root, "ok/a.metal", "locked/b.metal")
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })
	nodes, err := BuildTree(root, ".metal", nil)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if got := Render(nodes); got != "ok/\n  a.metal\n" {
		t.Fatalf("unexpected tree:\n%s", got)
	}
}

func TestBuildTreeEmptyFolder(t *testing.T) {
	nodes, err := BuildTree(t.TempDir(), ".metal", nil)
	if err != nil || len(nodes) != 0 {
		t.Fatalf("expected empty tree, got %v, %v", nodes, err)
	}
}
