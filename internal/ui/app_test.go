package ui

import (
	"context"
	"testing"

	"orderdesk/internal/chat"
	"orderdesk/internal/gateway"
	"orderdesk/internal/guard"
	"orderdesk/internal/orders"
	"orderdesk/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

type stubSender struct {
	err error
}

func (s *stubSender) Send(ctx context.Context, method, path string, body, out any) error {
	return s.err
}

func newTestApp(gw *stubSender) (*App, *session.Store) {
	store := session.NewStore(gw)
	nav := NewNav()
	svc := Services{
		Session: store,
		Policy:  session.NewPolicy(store, nav),
		Guard:   guard.New(store),
		Orders:  orders.NewClient(gw),
		Chat:    chat.NewSession(gw),
	}
	return NewApp(svc, nav), store
}

func TestNavBridgeDelivers(t *testing.T) {
	nav := NewNav()
	nav.NavigateTo("/orders")

	msg := nav.wait()()
	got, ok := msg.(navMsg)
	if !ok {
		t.Fatalf("Expected navMsg, got %T", msg)
	}
	if got.target != "/orders" {
		t.Errorf("Expected target /orders, got %q", got.target)
	}
}

func TestNavBridgeNeverBlocks(t *testing.T) {
	nav := NewNav()
	for i := 0; i < 100; i++ {
		nav.NavigateTo("/orders")
	}
}

func TestProtectedRouteWaitsWhileSessionUnknown(t *testing.T) {
	app, _ := newTestApp(&stubSender{})

	cmd := app.navigate("/orders")
	if cmd != nil {
		t.Error("Expected no command while session is unknown")
	}
	if app.allowed {
		t.Error("Expected protected route to be blocked while session is unknown")
	}
}

func TestProtectedRouteRedirectsWhenUnauthenticated(t *testing.T) {
	app, store := newTestApp(&stubSender{})
	store.Invalidate()

	cmd := app.navigate("/orders")
	if cmd == nil {
		t.Fatal("Expected a redirect command")
	}
	msg, ok := cmd().(navMsg)
	if !ok {
		t.Fatalf("Expected navMsg, got %T", cmd())
	}
	expected := "/login?redirect=%2Forders"
	if msg.target != expected {
		t.Errorf("Expected redirect to %q, got %q", expected, msg.target)
	}
}

func TestProtectedRouteRendersWhenAuthenticated(t *testing.T) {
	app, store := newTestApp(&stubSender{})
	store.Login("CUST-100")

	app.navigate("/orders")
	if !app.allowed {
		t.Error("Expected protected route to render for an authenticated session")
	}
}

func TestLoginRouteCapturesRedirectTarget(t *testing.T) {
	app, _ := newTestApp(&stubSender{})

	app.navigate("/login?redirect=%2Fchat")
	if app.route != "/login" {
		t.Fatalf("Expected route /login, got %q", app.route)
	}
	if app.login.redirect != "/chat" {
		t.Errorf("Expected login redirect /chat, got %q", app.login.redirect)
	}
}

func TestChatKeyHiddenOnLanding(t *testing.T) {
	app, store := newTestApp(&stubSender{})
	store.Login("CUST-100")

	// "c" only opens chat from the orders view, never from the landing view.
	cmd, handled := app.handleGlobalKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if handled || cmd != nil {
		t.Error("Expected chat key to be ignored on the landing route")
	}
}

func TestChatKeyOpensChatFromOrders(t *testing.T) {
	app, store := newTestApp(&stubSender{})
	store.Login("CUST-100")
	app.navigate("/orders")

	_, handled := app.handleGlobalKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if !handled {
		t.Error("Expected chat key to be handled on the orders route")
	}
	if app.route != "/chat" {
		t.Errorf("Expected route /chat, got %q", app.route)
	}
}

func TestAuthFailureRedirectFlowsThroughNav(t *testing.T) {
	failing := &stubSender{err: &gateway.AuthError{Endpoint: "/orders/"}}
	store := session.NewStore(failing)
	store.Login("CUST-100")
	nav := NewNav()
	policy := session.NewPolicy(store, nav)
	guarded := policy.Wrap(failing)
	policy.SetRoute("/orders")

	if err := guarded.Send(context.Background(), "GET", "/orders/", nil, nil); err == nil {
		t.Fatal("Expected the wrapped send to fail")
	}

	msg := nav.wait()()
	got, ok := msg.(navMsg)
	if !ok {
		t.Fatalf("Expected navMsg, got %T", msg)
	}
	if got.target != "/login?redirect=%2Forders" {
		t.Errorf("Unexpected redirect target: %q", got.target)
	}
	if store.Authenticated() {
		t.Error("Expected the session to be invalidated")
	}
}

func TestOrdersLoadedPopulatesList(t *testing.T) {
	m := newOrdersModel(orders.NewClient(&stubSender{}))
	m.loading = true
	m.cursor = 5

	m, _ = m.update(ordersLoadedMsg{page: 1, orders: []orders.Order{
		{SalesOrderNumber: "SO-1001"},
		{SalesOrderNumber: "SO-1002"},
	}})

	if m.loading {
		t.Error("Expected loading to clear")
	}
	if len(m.list) != 2 {
		t.Fatalf("Expected 2 orders, got %d", len(m.list))
	}
	if m.cursor != 0 {
		t.Errorf("Expected cursor reset to 0, got %d", m.cursor)
	}
}

func TestOrdersLoadErrorIsUserSafe(t *testing.T) {
	m := newOrdersModel(orders.NewClient(&stubSender{}))
	m.loading = true

	m, _ = m.update(ordersLoadedMsg{err: &gateway.NetworkError{Endpoint: "/orders/"}})
	if m.errText == "" {
		t.Fatal("Expected an error message")
	}
	if m.errText != "Could not load orders. Please try again." {
		t.Errorf("Unexpected error text: %q", m.errText)
	}
}

func TestChatTurnDoneReenablesInput(t *testing.T) {
	m := newChatModel(chat.NewSession(&stubSender{}))
	m.resize(80, 24)
	m.inFlight = true

	m, _ = m.update(turnDoneMsg{})
	if m.inFlight {
		t.Error("Expected in-flight flag to clear after the turn resolves")
	}
}

func TestChatIgnoresEnterWhileInFlight(t *testing.T) {
	m := newChatModel(chat.NewSession(&stubSender{}))
	m.resize(80, 24)
	m.inFlight = true
	m.input.SetValue("second question")

	m, cmd := m.update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("Expected no command while a turn is in flight")
	}
	if !m.inFlight {
		t.Error("Expected in-flight flag to stay set")
	}
}
