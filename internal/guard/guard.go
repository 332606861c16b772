// Package guard gates views that require authentication and decides when
// the chat entry point is visible.
package guard

import (
	"net/url"
	"sync"

	"orderdesk/internal/session"
)

// Decision tells the view layer what to do for a protected route.
type Decision int

const (
	// DecisionWait renders nothing, not even a placeholder. Returned while
	// the session is still unknown so no redirect flash happens before the
	// identity check resolves, and after a redirect has already fired.
	DecisionWait Decision = iota
	// DecisionRedirect carries a one-time navigation target.
	DecisionRedirect
	// DecisionRender shows the wrapped view.
	DecisionRender
)

// Guard wraps protected routes over the session store.
type Guard struct {
	store *session.Store

	mu         sync.Mutex
	redirected bool
}

// New creates a guard bound to the session store.
func New(store *session.Store) *Guard {
	return &Guard{store: store}
}

// Decide evaluates the current session for the given route. When the
// session is unauthenticated it returns DecisionRedirect with the login
// target exactly once; repeated calls wait until the session recovers.
func (g *Guard) Decide(route string) (Decision, string) {
	snap := g.store.Snapshot()

	g.mu.Lock()
	defer g.mu.Unlock()

	switch snap.State {
	case session.StateUnknown:
		return DecisionWait, ""
	case session.StateUnauthenticated:
		if g.redirected {
			return DecisionWait, ""
		}
		g.redirected = true
		return DecisionRedirect, session.LoginRoute + "?redirect=" + url.QueryEscape(route)
	default:
		g.redirected = false
		return DecisionRender, ""
	}
}

// Reset re-arms the one-time redirect, called on route changes.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.redirected = false
}

// ChatVisible reports whether the chat entry point should show on the given
// route. Support chat is suppressed on the landing and login views even for
// authenticated customers.
func ChatVisible(route string, authenticated bool) bool {
	if !authenticated {
		return false
	}
	return route != "/" && route != session.LoginRoute
}
