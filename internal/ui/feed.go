package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"shadertune/internal/compiler"
)

// StateMsg carries a compile state into the editor.
type StateMsg compiler.State

// StateFeed hands coordinator publications to a Bubble Tea program in order.
// Publish blocks until the program takes the state or the feed is closed.
type StateFeed struct {
	ch   chan compiler.State
	done chan struct{}
	once sync.Once
}

// NewStateFeed returns an open feed.
func NewStateFeed() *StateFeed {
	return &StateFeed{ch: make(chan compiler.State, 8), done: make(chan struct{})}
}

// Publish is meant for compiler.Options.Publish.
func (f *StateFeed) Publish(s compiler.State) {
	select {
	case f.ch <- s:
	case <-f.done:
	}
}

// Close releases blocked publishers. Later publications are dropped.
func (f *StateFeed) Close() {
	f.once.Do(func() { close(f.done) })
}

// Wait returns a command that delivers the next state as a StateMsg.
func (f *StateFeed) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-f.ch:
			return StateMsg(s)
		case <-f.done:
			return nil
		}
	}
}
