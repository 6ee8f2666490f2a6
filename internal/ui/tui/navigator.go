package tui

import (
	"slices"
	"sync"
)

// Screen identifies what the app loop renders next.
type Screen int

const (
	ScreenAuth Screen = iota
	ScreenForm
	ScreenList
)

func (s Screen) String() string {
	switch s {
	case ScreenAuth:
		return "auth"
	case ScreenForm:
		return "form"
	case ScreenList:
		return "list"
	}
	return "unknown"
}

// Navigator is a screen stack. It is safe for concurrent use so timers
// can navigate while a prompt is open; the change shows once the prompt
// returns.
type Navigator struct {
	mu    sync.Mutex
	stack []Screen
}

func NewNavigator() *Navigator {
	return &Navigator{stack: []Screen{ScreenAuth}}
}

func (n *Navigator) Current() Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack[len(n.stack)-1]
}

// Reset replaces the whole stack with s.
func (n *Navigator) Reset(s Screen) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = []Screen{s}
}

// navigate returns to s if it is already on the stack, otherwise pushes it.
func (n *Navigator) navigate(s Screen) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if i := slices.Index(n.stack, s); i >= 0 {
		n.stack = n.stack[:i+1]
		return
	}
	n.stack = append(n.stack, s)
}

func (n *Navigator) ToList()  { n.navigate(ScreenList) }
func (n *Navigator) ToForm()  { n.navigate(ScreenForm) }
func (n *Navigator) ToLogin() { n.Reset(ScreenAuth) }

// Back pops one screen. The root screen stays put.
func (n *Navigator) Back() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) > 1 {
		n.stack = n.stack[:len(n.stack)-1]
	}
}
