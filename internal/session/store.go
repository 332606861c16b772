// Package session holds the client's authentication state machine and the
// redirect policy applied to authentication failures.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"orderdesk/internal/gateway"
)

// State enumerates the authentication states. Unknown is the initial and
// only non-terminal state; Authenticated and Unauthenticated are reachable
// from each other.
type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}

// Snapshot is an immutable view of the session. Presence of CustomerID is
// the sole authentication signal; no raw token is ever exposed.
type Snapshot struct {
	State      State
	CustomerID string
}

// Authenticated reports whether the snapshot carries an identity.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.CustomerID != ""
}

type identityResponse struct {
	CustomerID string `json:"customer_id"`
}

// Store owns the session. All other components read snapshots; none mutate
// the session directly.
type Store struct {
	gw gateway.Sender

	mu         sync.Mutex
	state      State
	customerID string
	subs       map[int]chan Snapshot
	nextSubID  int
}

// NewStore creates a session store in the Unknown state.
func NewStore(gw gateway.Sender) *Store {
	return &Store{
		gw:   gw,
		subs: make(map[int]chan Snapshot),
	}
}

// Initialize reconciles the session with the server via the identity check.
// Any failure lands in Unauthenticated; the failure is logged, never
// surfaced. Identity is never guessed from local state alone.
func (s *Store) Initialize(ctx context.Context) {
	var identity identityResponse
	if err := s.gw.Send(ctx, http.MethodGet, "/me", nil, &identity); err != nil {
		slog.Info("identity check failed, starting unauthenticated", "error", err)
		s.transition(StateUnauthenticated, "")
		return
	}
	if identity.CustomerID == "" {
		slog.Warn("identity check returned empty customer id")
		s.transition(StateUnauthenticated, "")
		return
	}
	s.transition(StateAuthenticated, identity.CustomerID)
}

// Login records an identity after a successful credential exchange. The
// login form owns the actual exchange; no re-validation happens here.
func (s *Store) Login(customerID string) {
	s.transition(StateAuthenticated, customerID)
}

// Logout invalidates the server session best-effort and always transitions
// to Unauthenticated locally.
func (s *Store) Logout(ctx context.Context) {
	if err := s.gw.Send(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
		slog.Warn("remote logout failed", "error", err)
	}
	s.transition(StateUnauthenticated, "")
}

// Invalidate drops the session after an authentication failure observed on
// any request.
func (s *Store) Invalidate() {
	s.transition(StateUnauthenticated, "")
}

// Snapshot returns the current session view.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, CustomerID: s.customerID}
}

// Authenticated reports whether the session currently carries an identity.
func (s *Store) Authenticated() bool {
	return s.Snapshot().Authenticated()
}

// Subscribe registers for state change notifications. The returned cancel
// func must be called to release the subscription. Slow subscribers miss
// intermediate snapshots rather than blocking transitions.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Snapshot, 16)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
	return ch, cancel
}

func (s *Store) transition(state State, customerID string) {
	s.mu.Lock()
	if s.state == state && s.customerID == customerID {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.customerID = customerID
	snap := Snapshot{State: state, CustomerID: customerID}
	subs := make([]chan Snapshot, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	slog.Info("session state changed", "state", state.String(), "customer_id", customerID)
	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
