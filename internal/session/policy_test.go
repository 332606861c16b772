package session

import (
	"context"
	"net/http"
	"testing"

	"orderdesk/internal/gateway"
)

type recordingNavigator struct {
	targets []string
}

func (n *recordingNavigator) NavigateTo(target string) {
	n.targets = append(n.targets, target)
}

func authFailingSender(endpoints ...string) *fakeSender {
	gw := newFakeSender()
	for _, ep := range endpoints {
		gw.errs[ep] = &gateway.AuthError{Endpoint: ep}
	}
	return gw
}

func TestPolicyRedirectsOnceWithRedirectParam(t *testing.T) {
	gw := authFailingSender("/orders/")
	store := NewStore(newFakeSender())
	store.Login("CUST-100")
	nav := &recordingNavigator{}

	policy := NewPolicy(store, nav)
	policy.SetRoute("/orders")
	sender := policy.Wrap(gw)

	for i := 0; i < 3; i++ {
		_ = sender.Send(context.Background(), http.MethodGet, "/orders/", nil, nil)
	}

	if len(nav.targets) != 1 {
		t.Fatalf("Expected exactly one redirect, got %d: %v", len(nav.targets), nav.targets)
	}
	if nav.targets[0] != "/login?redirect=%2Forders" {
		t.Errorf("Expected /login?redirect=%%2Forders, got %q", nav.targets[0])
	}
	if store.Snapshot().State != StateUnauthenticated {
		t.Errorf("Expected session invalidated, got %s", store.Snapshot().State)
	}
}

func TestPolicyIgnoresProbeEndpoints(t *testing.T) {
	for _, probe := range []string{"/me", "/validate"} {
		t.Run(probe, func(t *testing.T) {
			gw := authFailingSender(probe)
			store := NewStore(newFakeSender())
			nav := &recordingNavigator{}

			policy := NewPolicy(store, nav)
			policy.SetRoute("/orders")
			sender := policy.Wrap(gw)

			_ = sender.Send(context.Background(), http.MethodGet, probe, nil, nil)

			if len(nav.targets) != 0 {
				t.Errorf("Expected no redirect for probe %s, got %v", probe, nav.targets)
			}
		})
	}
}

func TestPolicySkipsRedirectOnLoginRoute(t *testing.T) {
	gw := authFailingSender("/orders/")
	store := NewStore(newFakeSender())
	nav := &recordingNavigator{}

	policy := NewPolicy(store, nav)
	policy.SetRoute(LoginRoute)
	sender := policy.Wrap(gw)

	_ = sender.Send(context.Background(), http.MethodGet, "/orders/", nil, nil)

	if len(nav.targets) != 0 {
		t.Errorf("Expected no redirect while on login route, got %v", nav.targets)
	}
}

func TestPolicyRearmsOnRouteChange(t *testing.T) {
	gw := authFailingSender("/orders/")
	store := NewStore(newFakeSender())
	nav := &recordingNavigator{}

	policy := NewPolicy(store, nav)
	policy.SetRoute("/orders")
	sender := policy.Wrap(gw)

	_ = sender.Send(context.Background(), http.MethodGet, "/orders/", nil, nil)
	policy.SetRoute("/chat")
	_ = sender.Send(context.Background(), http.MethodGet, "/orders/", nil, nil)

	want := []string{"/login?redirect=%2Forders", "/login?redirect=%2Fchat"}
	if len(nav.targets) != 2 || nav.targets[0] != want[0] || nav.targets[1] != want[1] {
		t.Errorf("Expected %v, got %v", want, nav.targets)
	}
}

func TestPolicyPassesThroughOtherOutcomes(t *testing.T) {
	gw := newFakeSender()
	gw.errs["/orders/"] = &gateway.HTTPError{Status: 500, Message: "boom"}
	store := NewStore(newFakeSender())
	store.Login("CUST-100")
	nav := &recordingNavigator{}

	policy := NewPolicy(store, nav)
	policy.SetRoute("/orders")
	sender := policy.Wrap(gw)

	err := sender.Send(context.Background(), http.MethodGet, "/orders/", nil, nil)
	if err == nil {
		t.Fatal("Expected error passthrough")
	}
	if len(nav.targets) != 0 {
		t.Errorf("Expected no redirect for non-auth error, got %v", nav.targets)
	}
	if store.Snapshot().State != StateAuthenticated {
		t.Errorf("Expected session untouched, got %s", store.Snapshot().State)
	}
}
