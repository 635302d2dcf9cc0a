// Package session binds an editor buffer to a file, the completion engine and
// the compile coordinator. It is the state behind the terminal editor.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"shadertune/internal/compiler"
	"shadertune/internal/complete"
	"shadertune/internal/keywords"
	"shadertune/internal/observ"
	"shadertune/internal/templates"
	"shadertune/internal/workspace"
)

// ErrNoFile is returned by Save when the buffer is not bound to a file.
var ErrNoFile = errors.New("buffer is not bound to a file")

// Store loads and saves plain text files. workspace.Disk is the real one.
type Store interface {
	Load(path string) (string, error)
	Save(path, text string) error
}

// Options configures a Session.
type Options struct {
	// Filter selects files for OpenFolder. Nil uses the backend language's
	// extension with no excludes.
	Filter *workspace.Filter
}

// Session is one editor buffer. Safe for concurrent use.
type Session struct {
	coord  *compiler.Coordinator
	engine *complete.Engine
	store  Store
	filter *workspace.Filter

	mu          sync.Mutex
	text        string
	cursor      int
	path        string
	dirty       bool
	completions []keywords.Item
	folder      string
	tree        []workspace.Node
}

// New returns an empty, unbound session.
func New(coord *compiler.Coordinator, engine *complete.Engine, store Store, opts Options) *Session {
	filter := opts.Filter
	if filter == nil {
		// no excludes, so this cannot fail
		filter, _ = workspace.NewFilter(coord.Backend().Language().Extension(), nil)
	}
	return &Session{coord: coord, engine: engine, store: store, filter: filter}
}

// Edit replaces the buffer with text and puts the cursor at byte offset
// cursor. When the text grew the completion list is refreshed; a changed
// buffer schedules a debounced compile and marks a bound file dirty.
func (s *Session) Edit(text string, cursor int) {
	s.mu.Lock()
	changed := text != s.text
	grew := len(text) > len(s.text)
	s.text = text
	s.cursor = clamp(cursor, len(text))
	if changed && s.path != "" {
		s.dirty = true
	}
	if grew {
		if s.engine.ShouldTrigger(text, s.cursor) {
			s.completions = s.engine.Complete(text, s.cursor)
		} else {
			s.completions = nil
		}
	}
	s.mu.Unlock()
	if changed {
		s.coord.OnEdit(text)
	}
}

// MoveCursor moves the cursor without editing and closes the completion list.
func (s *Session) MoveCursor(cursor int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = clamp(cursor, len(s.text))
	s.completions = nil
}

// TriggerCompletion computes completions for text at cursor on request,
// replacing the current list.
func (s *Session) TriggerCompletion(text string, cursor int) []keywords.Item {
	items := s.engine.Complete(text, cursor)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions = items
	return items
}

// DismissCompletions clears the completion list.
func (s *Session) DismissCompletions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions = nil
}

// AcceptCompletion replaces the word around the cursor with item.Text and
// moves the cursor after it. It reports false, changing nothing, when the
// cursor is not in or after a word.
func (s *Session) AcceptCompletion(item keywords.Item) bool {
	s.mu.Lock()
	start, end, ok := s.engine.WordRange(s.text, s.cursor)
	if !ok {
		s.mu.Unlock()
		return false
	}
	text := s.text[:start] + item.Text + s.text[end:]
	s.cursor = start + len(item.Text)
	s.completions = nil
	changed := s.setTextLocked(text)
	s.mu.Unlock()
	if changed {
		s.coord.OnEdit(text)
	}
	return true
}

func (s *Session) setTextLocked(text string) bool {
	if text == s.text {
		return false
	}
	s.text = text
	if s.path != "" {
		s.dirty = true
	}
	return true
}

// CompileNow compiles the buffer immediately, cancelling a pending compile.
func (s *Session) CompileNow(ctx context.Context) compiler.State {
	return s.coord.CompileNow(ctx, s.Text())
}

// SetAutoCompile toggles debounced compiles.
func (s *Session) SetAutoCompile(on bool) { s.coord.SetAutoCompile(on) }

// AutoCompile reports whether edits schedule compiles.
func (s *Session) AutoCompile() bool { return s.coord.AutoCompile() }

// Compile returns the latest compile state.
func (s *Session) Compile() compiler.State { return s.coord.State() }

// OpenFolder scans dir for shader files and remembers it as the workspace.
func (s *Session) OpenFolder(dir string) ([]workspace.Node, error) {
	nodes, err := s.filter.Build(dir)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folder = dir
	s.tree = nodes
	return nodes, nil
}

// SetTree replaces the remembered tree, e.g. after a watcher rebuild.
func (s *Session) SetTree(nodes []workspace.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = nodes
}

// Open saves a dirty bound file, then loads path into the buffer. With
// auto-compile on, the new text is compiled right away. On failure the
// session is unchanged.
func (s *Session) Open(ctx context.Context, path string) error {
	if err := s.autosave(); err != nil {
		return err
	}
	text, err := s.store.Load(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.text = text
	s.cursor = 0
	s.path = path
	s.dirty = false
	s.completions = nil
	s.mu.Unlock()
	observ.Logger().Debug("opened file", "path", path, "bytes", len(text))
	if s.coord.AutoCompile() {
		s.coord.CompileNow(ctx, text)
	}
	return nil
}

func (s *Session) autosave() error {
	s.mu.Lock()
	path, text, dirty := s.path, s.text, s.dirty
	s.mu.Unlock()
	if !dirty || path == "" {
		return nil
	}
	if err := s.store.Save(path, text); err != nil {
		return err
	}
	s.markSaved(path, text)
	return nil
}

// markSaved clears the dirty flag unless the buffer changed meanwhile.
func (s *Session) markSaved(path, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == path && s.text == text {
		s.dirty = false
	}
}

// Save writes the buffer to its bound file.
func (s *Session) Save() error {
	s.mu.Lock()
	path, text := s.path, s.text
	s.mu.Unlock()
	if path == "" {
		return ErrNoFile
	}
	if err := s.store.Save(path, text); err != nil {
		return err
	}
	s.markSaved(path, text)
	return nil
}

// SaveAs writes the buffer to path and binds the session to it.
func (s *Session) SaveAs(path string) error {
	text := s.Text()
	if err := s.store.Save(path, text); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	s.dirty = s.text != text
	return nil
}

// NewFromTemplate replaces the buffer with a template's source as an
// unsaved, unbound document. A dirty bound file is saved first.
func (s *Session) NewFromTemplate(name string) error {
	tmpl, err := templates.Lookup(name)
	if err != nil {
		return err
	}
	if err := s.autosave(); err != nil {
		return err
	}
	src := tmpl.Source()
	s.mu.Lock()
	s.text = src
	s.cursor = 0
	s.path = ""
	s.dirty = false
	s.completions = nil
	s.mu.Unlock()
	s.coord.OnEdit(src)
	return nil
}

// Matches counts non-overlapping occurrences of search in the buffer.
func (s *Session) Matches(search string) int {
	if search == "" {
		return 0
	}
	return strings.Count(s.Text(), search)
}

// ReplaceNext replaces the first occurrence of search at or after the
// cursor, wrapping to the start of the buffer, and moves the cursor past the
// replacement.
func (s *Session) ReplaceNext(search, replacement string) bool {
	if search == "" {
		return false
	}
	s.mu.Lock()
	idx := strings.Index(s.text[s.cursor:], search)
	if idx >= 0 {
		idx += s.cursor
	} else {
		idx = strings.Index(s.text, search)
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	text := s.text[:idx] + replacement + s.text[idx+len(search):]
	s.cursor = idx + len(replacement)
	s.completions = nil
	changed := s.setTextLocked(text)
	s.mu.Unlock()
	if changed {
		s.coord.OnEdit(text)
	}
	return true
}

// ReplaceAll replaces every occurrence of search and returns how many there
// were. The cursor is clamped to the new buffer.
func (s *Session) ReplaceAll(search, replacement string) int {
	if search == "" {
		return 0
	}
	s.mu.Lock()
	n := strings.Count(s.text, search)
	if n == 0 {
		s.mu.Unlock()
		return 0
	}
	text := strings.ReplaceAll(s.text, search, replacement)
	s.cursor = clamp(s.cursor, len(text))
	s.completions = nil
	changed := s.setTextLocked(text)
	s.mu.Unlock()
	if changed {
		s.coord.OnEdit(text)
	}
	return n
}

// Close stops the coordinator. The session must not be used afterwards.
func (s *Session) Close() { s.coord.Close() }

func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Completions returns the current completion list. Callers must not modify it.
func (s *Session) Completions() []keywords.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completions
}

func (s *Session) Folder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folder
}

func (s *Session) Tree() []workspace.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Engine returns the completion engine.
func (s *Session) Engine() *complete.Engine { return s.engine }

func clamp(n, hi int) int {
	return max(0, min(n, hi))
}
