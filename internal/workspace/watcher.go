package workspace

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"shadertune/internal/observ"
)

// DefaultCoalesce is how long the watcher waits after the last change in a
// burst before rebuilding the tree.
const DefaultCoalesce = 100 * time.Millisecond

// Watcher rebuilds a shader tree whenever files under its root are created,
// removed or renamed.
type Watcher struct {
	root     string
	filter   *Filter
	onChange func([]Node, error)
	coalesce time.Duration
	log      *slog.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	pending *time.Timer
	closed  bool
}

// Watch starts watching root. onChange runs on a background goroutine with
// the rebuilt tree; calls never overlap and must not call Close.
func Watch(root string, filter *Filter, onChange func([]Node, error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     root,
		filter:   filter,
		onChange: onChange,
		coalesce: DefaultCoalesce,
		log:      observ.Logger().With("component", "watcher"),
		fsw:      fsw,
		done:     make(chan struct{}),
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, fileError("scan", root, err)
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// addTree watches dir and every visible, non-excluded directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			if isHidden(d.Name()) || w.filter.Excluded(w.rel(path)) {
				return fs.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil && path == dir {
			return err
		}
		return nil
	})
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				// new directories need their own watch
				_ = w.addTree(ev.Name)
			}
			w.schedule()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.coalesce, w.rebuild)
}

func (w *Watcher) rebuild() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = nil
	// held across the callback so rebuilds never overlap
	defer w.mu.Unlock()
	nodes, err := w.filter.Build(w.root)
	w.onChange(nodes, err)
}

// Close stops watching. Pending rebuilds are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	if errors.Is(err, fsnotify.ErrClosed) {
		return nil
	}
	return err
}
