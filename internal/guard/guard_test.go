package guard

import (
	"testing"

	"orderdesk/internal/session"
)

func TestDecideWaitsWhileUnknown(t *testing.T) {
	store := session.NewStore(nil)
	g := New(store)

	decision, target := g.Decide("/orders")
	if decision != DecisionWait {
		t.Errorf("Expected wait while unknown, got %v", decision)
	}
	if target != "" {
		t.Errorf("Expected no target, got %q", target)
	}
}

func TestDecideRendersWhenAuthenticated(t *testing.T) {
	store := session.NewStore(nil)
	store.Login("CUST-100")
	g := New(store)

	decision, _ := g.Decide("/orders")
	if decision != DecisionRender {
		t.Errorf("Expected render, got %v", decision)
	}
}

func TestDecideRedirectsOnceWhenUnauthenticated(t *testing.T) {
	store := session.NewStore(nil)
	store.Invalidate()
	g := New(store)

	decision, target := g.Decide("/orders")
	if decision != DecisionRedirect {
		t.Fatalf("Expected redirect, got %v", decision)
	}
	if target != "/login?redirect=%2Forders" {
		t.Errorf("Expected login target with redirect param, got %q", target)
	}

	decision, _ = g.Decide("/orders")
	if decision != DecisionWait {
		t.Errorf("Expected wait after one-time redirect, got %v", decision)
	}
}

func TestDecideRearmsAfterReauthentication(t *testing.T) {
	store := session.NewStore(nil)
	store.Invalidate()
	g := New(store)

	if decision, _ := g.Decide("/orders"); decision != DecisionRedirect {
		t.Fatalf("Expected first redirect, got %v", decision)
	}

	store.Login("CUST-100")
	if decision, _ := g.Decide("/orders"); decision != DecisionRender {
		t.Fatalf("Expected render after login, got %v", decision)
	}

	store.Invalidate()
	if decision, _ := g.Decide("/orders"); decision != DecisionRedirect {
		t.Errorf("Expected redirect again after invalidation, got %v", decision)
	}
}

func TestResetRearmsRedirect(t *testing.T) {
	store := session.NewStore(nil)
	store.Invalidate()
	g := New(store)

	g.Decide("/orders")
	g.Reset()

	if decision, _ := g.Decide("/chat"); decision != DecisionRedirect {
		t.Errorf("Expected redirect after reset, got %v", decision)
	}
}

func TestChatVisible(t *testing.T) {
	tests := []struct {
		route         string
		authenticated bool
		want          bool
	}{
		{"/orders", true, true},
		{"/chat", true, true},
		{"/", true, false},
		{"/login", true, false},
		{"/orders", false, false},
		{"/", false, false},
	}

	for _, tt := range tests {
		if got := ChatVisible(tt.route, tt.authenticated); got != tt.want {
			t.Errorf("ChatVisible(%q, %v): expected %v, got %v", tt.route, tt.authenticated, tt.want, got)
		}
	}
}
