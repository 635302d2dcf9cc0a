package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shadertune/internal/compiler"
	"shadertune/internal/diag"
	"shadertune/internal/keywords"
	"shadertune/internal/session"
	"shadertune/internal/templates"
	"shadertune/internal/workspace"
)

const (
	maxCompletionRows = 6
	maxDiagnosticRows = 5
)

type mode int

const (
	modeEdit mode = iota
	modeFind
	modePicker
	modeSaveAs
)

type pickerKind int

const (
	pickTemplate pickerKind = iota
	pickFile
)

type pickerEntry struct {
	label string
	value string
}

// TreeMsg replaces the folder tree shown by the file picker.
type TreeMsg struct {
	Nodes []workspace.Node
}

type openedMsg struct {
	path string
	err  error
}

type compiledMsg struct{}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	selectStyle  = lipgloss.NewStyle().Reverse(true)
	popupStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("8"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	modifiedMark = warnStyle.Render("●")
)

// EditorModel is the terminal shader editor.
type EditorModel struct {
	ctx  context.Context
	sess *session.Session
	feed *StateFeed
	keys keyMap
	lang keywords.Language

	area    textarea.Model
	find    textinput.Model
	repl    textinput.Model
	saveAs  textinput.Model
	spinner spinner.Model
	help    help.Model

	compile   compiler.State
	sel       int
	mode      mode
	focusRepl bool

	picker     []pickerEntry
	pickerSel  int
	pickerKind pickerKind

	status    string
	statusErr bool
	width     int
	height    int
}

// NewEditor returns an editor over sess. feed must be the Publish target of
// the session's coordinator. The buffer is loaded from the session as is.
func NewEditor(ctx context.Context, sess *session.Session, feed *StateFeed, lang keywords.Language) *EditorModel {
	area := textarea.New()
	area.CharLimit = 0
	area.MaxHeight = 0
	area.ShowLineNumbers = true
	area.Placeholder = "// start typing a shader, or ctrl+t for a template"
	area.Focus()

	find := textinput.New()
	find.Prompt = "find: "
	repl := textinput.New()
	repl.Prompt = "replace: "
	saveAs := textinput.New()
	saveAs.Prompt = "save as: "

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = infoStyle

	m := &EditorModel{
		ctx:     ctx,
		sess:    sess,
		feed:    feed,
		keys:    defaultKeyMap(),
		lang:    lang,
		area:    area,
		find:    find,
		repl:    repl,
		saveAs:  saveAs,
		spinner: sp,
		help:    help.New(),
		compile: sess.Compile(),
		width:   80,
		height:  24,
	}
	m.resize()
	m.loadBuffer()
	return m
}

func (m *EditorModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.feed.Wait(), m.spinner.Tick)
}

func (m *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil
	case StateMsg:
		m.compile = compiler.State(msg)
		return m, m.feed.Wait()
	case TreeMsg:
		m.sess.SetTree(msg.Nodes)
		if m.mode == modePicker && m.pickerKind == pickFile {
			m.openFilePicker()
		}
		return m, nil
	case openedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.loadBuffer()
		m.setStatus("opened " + msg.path)
		return m, nil
	case compiledMsg:
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch m.mode {
		case modeFind:
			return m, m.updateFind(msg)
		case modePicker:
			return m, m.updatePicker(msg)
		case modeSaveAs:
			return m, m.updateSaveAs(msg)
		default:
			return m, m.updateEdit(msg)
		}
	}
	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	return m, cmd
}

func (m *EditorModel) updateEdit(msg tea.KeyMsg) tea.Cmd {
	completions := m.sess.Completions()
	if len(completions) > 0 {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.sel = (m.sel - 1 + len(completions)) % len(completions)
			return nil
		case key.Matches(msg, m.keys.Down):
			m.sel = (m.sel + 1) % len(completions)
			return nil
		case key.Matches(msg, m.keys.Accept):
			m.accept(completions[min(m.sel, len(completions)-1)])
			return nil
		case key.Matches(msg, m.keys.Dismiss):
			m.sess.DismissCompletions()
			return nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.sess.Dirty() {
			if err := m.sess.Save(); err != nil {
				m.setError(err)
				return nil
			}
		}
		return tea.Quit
	case key.Matches(msg, m.keys.Save):
		m.save()
		return nil
	case key.Matches(msg, m.keys.Compile):
		return m.compileNow()
	case key.Matches(msg, m.keys.ToggleAuto):
		on := !m.sess.AutoCompile()
		m.sess.SetAutoCompile(on)
		if on {
			m.setStatus("auto-compile on")
		} else {
			m.setStatus("auto-compile off")
		}
		return nil
	case key.Matches(msg, m.keys.Complete):
		items := m.sess.TriggerCompletion(m.sess.Text(), m.sess.Cursor())
		m.sel = 0
		if len(items) == 0 {
			m.setStatus("no completions")
		}
		return nil
	case key.Matches(msg, m.keys.Templates):
		m.openTemplatePicker()
		return nil
	case key.Matches(msg, m.keys.OpenFile):
		if m.sess.Folder() == "" {
			m.setStatus("no folder open")
			return nil
		}
		m.openFilePicker()
		return nil
	case key.Matches(msg, m.keys.Find):
		m.mode = modeFind
		m.focusRepl = false
		m.area.Blur()
		m.repl.Blur()
		return m.find.Focus()
	}

	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	m.sync()
	return cmd
}

func (m *EditorModel) updateFind(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Dismiss):
		m.exitMode()
		return nil
	case key.Matches(msg, m.keys.SwitchInput):
		m.focusRepl = !m.focusRepl
		if m.focusRepl {
			m.find.Blur()
			return m.repl.Focus()
		}
		m.repl.Blur()
		return m.find.Focus()
	case msg.Type == tea.KeyEnter:
		if m.sess.ReplaceNext(m.find.Value(), m.repl.Value()) {
			m.loadBuffer()
			m.setStatus(fmt.Sprintf("replaced; %d left", m.sess.Matches(m.find.Value())))
		} else {
			m.setStatus("no match")
		}
		return nil
	case key.Matches(msg, m.keys.ReplaceAll):
		n := m.sess.ReplaceAll(m.find.Value(), m.repl.Value())
		if n > 0 {
			m.loadBuffer()
		}
		m.setStatus(fmt.Sprintf("replaced %d", n))
		return nil
	}
	var cmd tea.Cmd
	if m.focusRepl {
		m.repl, cmd = m.repl.Update(msg)
	} else {
		m.find, cmd = m.find.Update(msg)
	}
	return cmd
}

func (m *EditorModel) updatePicker(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Dismiss):
		m.exitMode()
	case key.Matches(msg, m.keys.Up):
		if len(m.picker) > 0 {
			m.pickerSel = (m.pickerSel - 1 + len(m.picker)) % len(m.picker)
		}
	case key.Matches(msg, m.keys.Down):
		if len(m.picker) > 0 {
			m.pickerSel = (m.pickerSel + 1) % len(m.picker)
		}
	case msg.Type == tea.KeyEnter:
		if len(m.picker) == 0 {
			m.exitMode()
			return nil
		}
		choice := m.picker[m.pickerSel]
		kind := m.pickerKind
		m.exitMode()
		if kind == pickTemplate {
			if err := m.sess.NewFromTemplate(choice.value); err != nil {
				m.setError(err)
				return nil
			}
			m.loadBuffer()
			m.setStatus("new buffer from " + choice.value)
			return nil
		}
		return m.open(choice.value)
	}
	return nil
}

func (m *EditorModel) updateSaveAs(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Dismiss):
		m.exitMode()
		return nil
	case msg.Type == tea.KeyEnter:
		path := strings.TrimSpace(m.saveAs.Value())
		if path == "" {
			return nil
		}
		if !filepath.IsAbs(path) && m.sess.Folder() != "" {
			path = filepath.Join(m.sess.Folder(), path)
		}
		m.exitMode()
		if err := m.sess.SaveAs(path); err != nil {
			m.setError(err)
			return nil
		}
		m.setStatus("saved " + path)
		return nil
	}
	var cmd tea.Cmd
	m.saveAs, cmd = m.saveAs.Update(msg)
	return cmd
}

func (m *EditorModel) exitMode() {
	m.mode = modeEdit
	m.find.Blur()
	m.repl.Blur()
	m.saveAs.Blur()
	m.area.Focus()
}

func (m *EditorModel) save() {
	err := m.sess.Save()
	switch {
	case errors.Is(err, session.ErrNoFile):
		m.mode = modeSaveAs
		m.area.Blur()
		m.saveAs.SetValue("untitled" + m.lang.Extension())
		m.saveAs.CursorEnd()
		m.saveAs.Focus()
	case err != nil:
		m.setError(err)
	default:
		m.setStatus("saved " + m.sess.Path())
	}
}

func (m *EditorModel) compileNow() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		sess.CompileNow(ctx)
		return compiledMsg{}
	}
}

func (m *EditorModel) open(path string) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return openedMsg{path: path, err: sess.Open(ctx, path)}
	}
}

func (m *EditorModel) openTemplatePicker() {
	list := templates.ForLanguage(m.lang)
	m.picker = m.picker[:0]
	for _, t := range list {
		m.picker = append(m.picker, pickerEntry{
			label: fmt.Sprintf("%-9s %s  %s", t.Category.Title(), t.Title, dimStyle.Render(t.Description)),
			value: t.Name,
		})
	}
	m.pickerKind = pickTemplate
	m.pickerSel = 0
	m.mode = modePicker
	m.area.Blur()
}

func (m *EditorModel) openFilePicker() {
	root := m.sess.Folder()
	m.picker = m.picker[:0]
	for _, f := range workspace.Files(m.sess.Tree()) {
		label := f
		if rel, err := filepath.Rel(root, f); err == nil {
			label = rel
		}
		m.picker = append(m.picker, pickerEntry{label: label, value: f})
	}
	m.pickerKind = pickFile
	m.pickerSel = min(m.pickerSel, max(0, len(m.picker)-1))
	m.mode = modePicker
	m.area.Blur()
}

func (m *EditorModel) accept(item keywords.Item) {
	if m.sess.AcceptCompletion(item) {
		m.loadBuffer()
	}
	m.sel = 0
}

// sync pushes the textarea's text and cursor into the session.
func (m *EditorModel) sync() {
	text := m.area.Value()
	cur := CursorOffset(text, m.area.Line(), areaColumn(m.area))
	switch {
	case text != m.sess.Text():
		m.sess.Edit(text, cur)
		m.sel = 0
	case cur != m.sess.Cursor():
		m.sess.MoveCursor(cur)
	}
}

// loadBuffer copies the session buffer into the textarea. Text the textarea
// cannot represent is normalized and written back as an edit.
func (m *EditorModel) loadBuffer() {
	text, cur := m.sess.Text(), m.sess.Cursor()
	norm := NormalizeText(text)
	m.area.SetValue(norm)
	if norm != text {
		cur = len(NormalizeText(text[:cur]))
	}
	row, col := RowColumn(norm, cur)
	for i := 0; m.area.Line() > row && i <= len(norm); i++ {
		m.area.CursorUp()
	}
	m.area.SetCursor(col)
	m.sync()
}

func (m *EditorModel) resize() {
	m.area.SetWidth(max(m.width, 20))
	// header, diagnostics, status and help lines
	reserved := 4 + maxDiagnosticRows
	m.area.SetHeight(max(m.height-reserved, 3))
}

func (m *EditorModel) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *EditorModel) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

func (m *EditorModel) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.area.View())
	b.WriteString("\n")
	switch m.mode {
	case modeFind:
		b.WriteString(barStyle.Render("replace") + "  " + m.find.View() + "  " + m.repl.View())
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (%d matches)", m.sess.Matches(m.find.Value()))))
		b.WriteString("\n")
	case modePicker:
		b.WriteString(m.pickerView())
	case modeSaveAs:
		b.WriteString(m.saveAs.View())
		b.WriteString("\n")
	default:
		if popup := m.completionView(); popup != "" {
			b.WriteString(popup)
			b.WriteString("\n")
		}
	}
	b.WriteString(m.diagnosticsView())
	if m.status != "" {
		style := dimStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(truncate(m.status, m.width)))
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *EditorModel) headerView() string {
	name := "untitled" + m.lang.Extension()
	if p := m.sess.Path(); p != "" {
		name = p
		if root := m.sess.Folder(); root != "" {
			if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
				name = rel
			}
		}
	}
	title := headerStyle.Render(truncate(name, max(m.width-30, 10)))
	if m.sess.Dirty() {
		title += " " + modifiedMark
	}
	auto := dimStyle.Render("manual")
	if m.sess.AutoCompile() {
		auto = infoStyle.Render("auto")
	}
	return title + "  " + auto + "  " + dimStyle.Render(string(m.lang))
}

func (m *EditorModel) completionView() string {
	items := m.sess.Completions()
	if len(items) == 0 {
		return ""
	}
	sel := min(m.sel, len(items)-1)
	first := max(0, min(sel-maxCompletionRows/2, len(items)-maxCompletionRows))
	last := min(len(items), first+maxCompletionRows)
	width := max(min(m.width-4, 72), 20)
	rows := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		it := items[i]
		line := fmt.Sprintf("%-24s %-10s %s", it.Text, it.Kind.DisplayName(), it.Description)
		line = truncate(line, width)
		if i == sel {
			line = selectStyle.Render(line)
		}
		rows = append(rows, line)
	}
	if len(items) > maxCompletionRows {
		rows = append(rows, dimStyle.Render(fmt.Sprintf("%d/%d", sel+1, len(items))))
	}
	return popupStyle.Render(strings.Join(rows, "\n"))
}

func (m *EditorModel) pickerView() string {
	title := "templates"
	if m.pickerKind == pickFile {
		title = "files in " + m.sess.Folder()
	}
	var b strings.Builder
	b.WriteString(barStyle.Render(title))
	b.WriteString("\n")
	if len(m.picker) == 0 {
		b.WriteString(dimStyle.Render("  (empty)"))
		b.WriteString("\n")
		return b.String()
	}
	rows := max(m.height/3, 5)
	first := max(0, min(m.pickerSel-rows/2, len(m.picker)-rows))
	last := min(len(m.picker), first+rows)
	for i := first; i < last; i++ {
		line := "  " + truncate(m.picker[i].label, max(m.width-4, 20))
		if i == m.pickerSel {
			line = selectStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *EditorModel) diagnosticsView() string {
	st := m.compile
	var b strings.Builder
	switch {
	case st.Compiling:
		b.WriteString(m.spinner.View() + " compiling...")
		b.WriteString("\n")
	case st.Succeeded():
		b.WriteString(okStyle.Render(fmt.Sprintf("✓ compiled in %s (%d bytes)", st.Elapsed.Round(time.Millisecond), st.Library.Size())))
		b.WriteString("\n")
	case st.Version == 0:
		b.WriteString(dimStyle.Render("not compiled yet"))
		b.WriteString("\n")
	}
	if st.Compiling {
		return b.String()
	}
	list := st.Diagnostics.Sorted()
	for i, d := range list {
		if i == maxDiagnosticRows {
			b.WriteString(dimStyle.Render(fmt.Sprintf("... %d more", len(list)-i)))
			b.WriteString("\n")
			break
		}
		b.WriteString(severityStyle(d.Severity).Render(truncate(d.DisplayText(), m.width)))
		b.WriteString("\n")
	}
	return b.String()
}

func severityStyle(s diag.Severity) lipgloss.Style {
	switch s {
	case diag.SevError:
		return errorStyle
	case diag.SevWarning:
		return warnStyle
	default:
		return infoStyle
	}
}

// areaColumn is the cursor's rune column in its logical line.
func areaColumn(a textarea.Model) int {
	li := a.LineInfo()
	return li.StartColumn + li.ColumnOffset
}

// CursorOffset converts a line and rune column in text into a byte offset.
// Out of range positions clamp to the end of the line or text.
func CursorOffset(text string, row, col int) int {
	off := 0
	for i := 0; i < row; i++ {
		nl := strings.IndexByte(text[off:], '\n')
		if nl < 0 {
			return len(text)
		}
		off += nl + 1
	}
	line := text[off:]
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}
	n := 0
	for i := range line {
		if n == col {
			return off + i
		}
		n++
	}
	return off + len(line)
}

// RowColumn converts a byte offset into a line and rune column.
func RowColumn(text string, offset int) (row, col int) {
	offset = max(0, min(offset, len(text)))
	before := text[:offset]
	row = strings.Count(before, "\n")
	start := strings.LastIndexByte(before, '\n') + 1
	return row, utf8.RuneCountInString(before[start:])
}

// NormalizeText rewrites line endings to \n and tabs to four spaces.
func NormalizeText(s string) string {
	if !strings.ContainsAny(s, "\r\t") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\t", "    ")
}
