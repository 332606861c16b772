package ui

import tea "github.com/charmbracelet/bubbletea"

// navMsg asks the root model to switch to a new route, optionally carrying a
// query string (the login redirect target).
type navMsg struct {
	target string
}

// Nav bridges navigation requests into the update loop. The redirect policy
// calls NavigateTo from command goroutines; the root model drains the
// channel as messages.
type Nav struct {
	ch chan string
}

// NewNav creates the navigation bridge.
func NewNav() *Nav {
	return &Nav{ch: make(chan string, 8)}
}

// NavigateTo queues a route change. Never blocks; if the queue is full the
// request is dropped, which only happens when the UI is already tearing
// down.
func (n *Nav) NavigateTo(target string) {
	select {
	case n.ch <- target:
	default:
	}
}

func (n *Nav) wait() tea.Cmd {
	return func() tea.Msg {
		return navMsg{target: <-n.ch}
	}
}
