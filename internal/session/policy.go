package session

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"

	"orderdesk/internal/gateway"
)

// LoginRoute is the unauthenticated entry view.
const LoginRoute = "/login"

// probeEndpoints exist to check authentication state and must not trigger
// the redirect-on-401 policy, or the login flow would loop.
var probeEndpoints = map[string]bool{
	"/me":       true,
	"/validate": true,
}

// Navigator moves the browsing context to a new route.
type Navigator interface {
	NavigateTo(target string)
}

// Policy interprets AuthError outcomes and performs navigation, keeping the
// gateway itself free of redirect side effects. It invalidates the session
// store and issues at most one redirect per route visit.
type Policy struct {
	store *Store
	nav   Navigator

	mu         sync.Mutex
	route      string
	redirected bool
}

// NewPolicy creates a redirect policy bound to a store and navigator.
func NewPolicy(store *Store, nav Navigator) *Policy {
	return &Policy{store: store, nav: nav, route: "/"}
}

// SetRoute records the current route and re-arms the one-time redirect.
func (p *Policy) SetRoute(route string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.route = route
	p.redirected = false
}

// Wrap returns a sender that applies the redirect policy to every outcome
// of next.
func (p *Policy) Wrap(next gateway.Sender) gateway.Sender {
	return &guardedSender{policy: p, next: next}
}

func (p *Policy) observe(endpoint string, err error) {
	var authErr *gateway.AuthError
	if !errors.As(err, &authErr) {
		return
	}
	if probeEndpoints[endpoint] {
		// Initialize owns the probe outcome; redirecting here would loop.
		return
	}

	p.store.Invalidate()

	p.mu.Lock()
	route := p.route
	fire := route != LoginRoute && !p.redirected
	if fire {
		p.redirected = true
	}
	p.mu.Unlock()

	if !fire {
		return
	}

	target := LoginRoute + "?redirect=" + url.QueryEscape(route)
	slog.Info("authentication failure, redirecting to login", "endpoint", endpoint, "from", route)
	p.nav.NavigateTo(target)
}

type guardedSender struct {
	policy *Policy
	next   gateway.Sender
}

func (g *guardedSender) Send(ctx context.Context, method, path string, body, out any) error {
	err := g.next.Send(ctx, method, path, body, out)
	if err != nil {
		g.policy.observe(path, err)
	}
	return err
}
