package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Save        key.Binding
	Compile     key.Binding
	ToggleAuto  key.Binding
	Complete    key.Binding
	Accept      key.Binding
	Up          key.Binding
	Down        key.Binding
	Dismiss     key.Binding
	Templates   key.Binding
	OpenFile    key.Binding
	Find        key.Binding
	ReplaceAll  key.Binding
	SwitchInput key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Compile:     key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "compile")),
		ToggleAuto:  key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "auto-compile")),
		Complete:    key.NewBinding(key.WithKeys("ctrl+@", "ctrl+ "), key.WithHelp("ctrl+space", "complete")),
		Accept:      key.NewBinding(key.WithKeys("tab", "enter"), key.WithHelp("tab", "accept")),
		Up:          key.NewBinding(key.WithKeys("up", "ctrl+p")),
		Down:        key.NewBinding(key.WithKeys("down", "ctrl+n")),
		Dismiss:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Templates:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "templates")),
		OpenFile:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open")),
		Find:        key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "replace")),
		ReplaceAll:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "replace all")),
		SwitchInput: key.NewBinding(key.WithKeys("tab")),
		Quit:        key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("ctrl+q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Compile, k.ToggleAuto, k.Complete, k.Find, k.Templates, k.OpenFile, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Accept, k.Dismiss, k.ReplaceAll}}
}
