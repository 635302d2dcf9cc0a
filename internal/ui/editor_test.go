package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"shadertune/internal/compiler"
	"shadertune/internal/complete"
	"shadertune/internal/diag"
	"shadertune/internal/gpu"
	"shadertune/internal/keywords"
	"shadertune/internal/session"
)

type stubLibrary struct{}

func (stubLibrary) Backend() string { return "stub" }
func (stubLibrary) Size() int       { return 42 }

type stubBackend struct{}

func (stubBackend) Name() string                { return "stub" }
func (stubBackend) Language() keywords.Language { return keywords.LangMetal }
func (stubBackend) Parser() *diag.Parser        { return nil }
func (stubBackend) Compile(context.Context, string) (gpu.Library, error) {
	return stubLibrary{}, nil
}

type memStore map[string]string

func (m memStore) Load(path string) (string, error) { return m[path], nil }
func (m memStore) Save(path, text string) error     { m[path] = text; return nil }

func newEditor(t *testing.T) (*EditorModel, *session.Session, memStore) {
	t.Helper()
	feed := NewStateFeed()
	t.Cleanup(feed.Close)
	coord := compiler.New(stubBackend{}, compiler.Options{Debounce: time.Hour, AutoCompile: true, Publish: feed.Publish})
	store := memStore{}
	sess := session.New(coord, complete.New(keywords.Metal()), store, session.Options{})
	t.Cleanup(sess.Close)
	return NewEditor(context.Background(), sess, feed, keywords.LangMetal), sess, store
}

func typeText(m *EditorModel, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestEditorTypingOpensCompletions(t *testing.T) {
	m, sess, _ := newEditor(t)
	typeText(m, "flo")
	if sess.Text() != "flo" || sess.Cursor() != 3 {
		t.Fatalf("session not synced: %q %d", sess.Text(), sess.Cursor())
	}
	items := sess.Completions()
	if len(items) == 0 || items[0].Text != "float" {
		t.Fatalf("unexpected completions: %+v", items)
	}
	if !strings.Contains(m.View(), "float") {
		t.Fatal("completion popup not rendered")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if sess.Text() != items[1].Text {
		t.Fatalf("expected %q, got %q", items[1].Text, sess.Text())
	}
	if m.area.Value() != sess.Text() || sess.Cursor() != len(sess.Text()) {
		t.Fatalf("textarea out of sync: %q cursor %d", m.area.Value(), sess.Cursor())
	}
	if len(sess.Completions()) != 0 {
		t.Fatal("list must close after accepting")
	}
}

func TestEditorEscapeDismissesCompletions(t *testing.T) {
	m, sess, _ := newEditor(t)
	typeText(m, "half")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if len(sess.Completions()) != 0 {
		t.Fatal("expected dismissed list")
	}
	if sess.Text() != "half" {
		t.Fatalf("escape changed text: %q", sess.Text())
	}
}

func TestEditorToggleAutoCompile(t *testing.T) {
	m, sess, _ := newEditor(t)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	if sess.AutoCompile() {
		t.Fatal("expected auto-compile off")
	}
	if !strings.Contains(m.View(), "manual") {
		t.Fatal("header must show manual mode")
	}
}

func TestEditorCompileNowShowsResult(t *testing.T) {
	m, _, _ := newEditor(t)
	typeText(m, "kernel void k() {}")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	if cmd == nil {
		t.Fatal("expected a compile command")
	}
	cmd()
	// Compiling, then the result
	for range 2 {
		msg := m.feed.Wait()()
		m.Update(msg)
	}
	if !m.compile.Succeeded() {
		t.Fatalf("expected success, got %+v", m.compile)
	}
	if !strings.Contains(m.View(), "compiled in") {
		t.Fatalf("missing success line:\n%s", m.View())
	}
}

func TestEditorShowsDiagnostics(t *testing.T) {
	m, _, _ := newEditor(t)
	m.Update(StateMsg(compiler.State{Version: 3, Diagnostics: diag.List{
		{Line: 2, Column: 4, Severity: diag.SevError, Message: "unknown type name 'flaot'"},
	}}))
	if !strings.Contains(m.View(), "Line 2:4 - error: unknown type name 'flaot'") {
		t.Fatalf("diagnostic not rendered:\n%s", m.View())
	}
}

func TestEditorFindReplace(t *testing.T) {
	m, sess, _ := newEditor(t)
	typeText(m, "a b a")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	if m.mode != modeFind {
		t.Fatal("expected find mode")
	}
	typeText(m, "a")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "x")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if sess.Text() != "x b x" || m.area.Value() != "x b x" {
		t.Fatalf("got %q / %q", sess.Text(), m.area.Value())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeEdit {
		t.Fatal("expected edit mode")
	}
}

func TestEditorTemplatePicker(t *testing.T) {
	m, sess, _ := newEditor(t)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.mode != modePicker || len(m.picker) == 0 {
		t.Fatal("expected template picker")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeEdit || sess.Text() == "" || m.area.Value() != sess.Text() {
		t.Fatal("template not loaded")
	}
}

func TestEditorSaveAsPrompt(t *testing.T) {
	m, sess, store := newEditor(t)
	typeText(m, "x")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.mode != modeSaveAs {
		t.Fatal("unbound buffer must prompt for a path")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if sess.Path() != "untitled.metal" || store["untitled.metal"] != "x" {
		t.Fatalf("save as failed: path %q store %v", sess.Path(), store)
	}
}

func TestOffsetHelpers(t *testing.T) {
	text := "ab\nçd\n\nxyz"
	cases := []struct {
		row, col, off int
	}{
		{0, 0, 0},
		{0, 2, 2},
		{1, 1, 5},
		{1, 2, 6},
		{2, 0, 7},
		{3, 3, 11},
	}
	for _, tc := range cases {
		if got := CursorOffset(text, tc.row, tc.col); got != tc.off {
			t.Errorf("CursorOffset(%d,%d) = %d, want %d", tc.row, tc.col, got, tc.off)
		}
		if r, c := RowColumn(text, tc.off); r != tc.row || c != tc.col {
			t.Errorf("RowColumn(%d) = %d,%d, want %d,%d", tc.off, r, c, tc.row, tc.col)
		}
	}
	if got := CursorOffset(text, 9, 0); got != len(text) {
		t.Errorf("row past end = %d", got)
	}
	if got := CursorOffset(text, 0, 99); got != 2 {
		t.Errorf("column past end = %d", got)
	}
	if got := NormalizeText("a\r\n\tb\rc"); got != "a\n    b\nc" {
		t.Errorf("NormalizeText = %q", got)
	}
}
