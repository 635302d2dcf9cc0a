package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherRebuildsOnCreate(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.metal")
	filter, err := NewFilter(".metal", nil)
	if err != nil {
		t.Fatal(err)
	}
	trees := make(chan []Node, 8)
	w, err := Watch(root, filter, func(nodes []Node, err error) {
		if err == nil {
			trees <- nodes
		}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}()

	if err := os.MkdirAll(filepath.Join(root, "fx"), 0o755); err != nil {
		t.Fatal(err)
	}
	// give the watcher a moment to pick up the new directory
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(root, "fx", "glow.metal"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case nodes := <-trees:
			if len(Files(nodes)) == 2 {
				return
			}
		case <-deadline:
			t.Fatal("watcher never reported the new file")
		}
	}
}

func TestWatchMissingRoot(t *testing.T) {
	filter, _ := NewFilter(".metal", nil)
	if _, err := Watch(filepath.Join(t.TempDir(), "missing"), filter, func([]Node, error) {}); err == nil {
		t.Fatal("expected error")
	}
}
