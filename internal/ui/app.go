// Package ui implements the terminal views for the portal: landing, login,
// orders, and support chat, tied together by the session guard and the
// redirect policy.
package ui

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"orderdesk/internal/chat"
	"orderdesk/internal/guard"
	"orderdesk/internal/orders"
	"orderdesk/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// Services are the client-side components the views run on.
type Services struct {
	Login   FormSender
	Session *session.Store
	Policy  *session.Policy
	Guard   *guard.Guard
	Orders  *orders.Client
	Chat    *chat.Session
}

type sessionMsg struct {
	snap session.Snapshot
}

type sessionReadyMsg struct{}

// App is the root model. It owns the current route and delegates everything
// else to the per-view models.
type App struct {
	svc Services
	nav *Nav

	route   string
	allowed bool
	width   int
	height  int

	sub       <-chan session.Snapshot
	cancelSub func()

	login  loginModel
	orders ordersModel
	chat   chatModel
}

// NewApp assembles the root model. The navigation bridge must be the same
// one the redirect policy navigates through.
func NewApp(svc Services, nav *Nav) *App {
	sub, cancel := svc.Session.Subscribe()
	return &App{
		svc:       svc,
		nav:       nav,
		route:     "/",
		sub:       sub,
		cancelSub: cancel,
		login:     newLoginModel(svc.Login, svc.Session),
		orders:    newOrdersModel(svc.Orders),
		chat:      newChatModel(svc.Chat),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.nav.wait(),
		a.waitForSession(),
		func() tea.Msg {
			a.svc.Session.Initialize(context.Background())
			return sessionReadyMsg{}
		},
	)
}

func (a *App) waitForSession() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-a.sub
		if !ok {
			return nil
		}
		return sessionMsg{snap: snap}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.chat.resize(msg.Width-4, msg.Height-2)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			a.cancelSub()
			return a, tea.Quit
		}
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}

	case navMsg:
		cmd := a.navigate(msg.target)
		return a, tea.Batch(cmd, a.nav.wait())

	case sessionMsg:
		cmd := a.evaluateGuard()
		return a, tea.Batch(cmd, a.waitForSession())

	case sessionReadyMsg:
		return a, a.evaluateGuard()
	}

	return a, a.routeUpdate(msg)
}

// handleGlobalKey covers navigation keys outside text inputs. Returns
// handled=false so typing in the login form and chat box is never eaten.
func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch a.route {
	case "/":
		switch msg.String() {
		case "q":
			a.cancelSub()
			return tea.Quit, true
		case "l":
			if !a.svc.Session.Authenticated() {
				return a.navigate(session.LoginRoute), true
			}
		case "o":
			return a.navigate("/orders"), true
		case "x":
			if a.svc.Session.Authenticated() {
				return a.logout(), true
			}
		}

	case session.LoginRoute:
		if msg.String() == "esc" {
			return a.navigate("/"), true
		}

	case "/orders":
		if a.orders.detail != nil {
			return nil, false
		}
		switch msg.String() {
		case "esc":
			return a.navigate("/"), true
		case "c":
			if guard.ChatVisible(a.route, a.svc.Session.Authenticated()) {
				return a.navigate("/chat"), true
			}
		}

	case "/chat":
		if msg.String() == "esc" && !a.chat.inFlight {
			return a.navigate("/orders"), true
		}
	}
	return nil, false
}

// navigate switches routes, informs the redirect policy, and runs the new
// route's entry work.
func (a *App) navigate(target string) tea.Cmd {
	parsed, err := url.Parse(target)
	if err != nil {
		return nil
	}
	route := parsed.Path
	if route == "" {
		route = "/"
	}

	a.route = route
	a.svc.Policy.SetRoute(route)
	a.svc.Guard.Reset()

	switch route {
	case session.LoginRoute:
		a.login.setRedirect(parsed.Query().Get("redirect"))
		a.login.input.Focus()
		return nil
	case "/orders":
		if cmd := a.evaluateGuard(); !a.allowed {
			return cmd
		}
		return a.orders.load()
	case "/chat":
		cmd := a.evaluateGuard()
		a.chat.refreshTranscript()
		return cmd
	default:
		return nil
	}
}

// evaluateGuard applies the route guard to the current route. Redirect
// decisions are fed back through the navigation bridge so they follow the
// same path as policy-driven redirects.
func (a *App) evaluateGuard() tea.Cmd {
	if !isProtected(a.route) {
		a.allowed = true
		return nil
	}

	decision, target := a.svc.Guard.Decide(a.route)
	switch decision {
	case guard.DecisionRender:
		a.allowed = true
		return nil
	case guard.DecisionRedirect:
		a.allowed = false
		return func() tea.Msg { return navMsg{target: target} }
	default:
		a.allowed = false
		return nil
	}
}

func (a *App) logout() tea.Cmd {
	store, chatSession := a.svc.Session, a.svc.Chat
	return func() tea.Msg {
		store.Logout(context.Background())
		chatSession.Reset()
		return navMsg{target: "/"}
	}
}

func (a *App) routeUpdate(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	// Async results go to their owning view even if the route changed while
	// the command ran, so no view is left stuck in a loading state.
	switch msg.(type) {
	case loginResultMsg:
		a.login, cmd = a.login.update(msg)
		return cmd
	case ordersLoadedMsg, orderDetailMsg:
		a.orders, cmd = a.orders.update(msg)
		return cmd
	case turnDoneMsg:
		a.chat, cmd = a.chat.update(msg)
		return cmd
	}

	switch a.route {
	case session.LoginRoute:
		a.login, cmd = a.login.update(msg)
	case "/orders":
		a.orders, cmd = a.orders.update(msg)
	case "/chat":
		a.chat, cmd = a.chat.update(msg)
	}
	return cmd
}

func (a *App) View() string {
	var body string
	switch a.route {
	case session.LoginRoute:
		body = a.login.view()
	case "/orders":
		if a.allowed {
			body = a.orders.view()
		}
	case "/chat":
		if a.allowed {
			body = a.chat.view()
		}
	default:
		body = a.landingView()
	}
	return appFrameStyle.Render(body)
}

func (a *App) landingView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Order Desk"))
	b.WriteString("\n")

	snap := a.svc.Session.Snapshot()
	switch snap.State {
	case session.StateUnknown:
		b.WriteString(statusBarStyle.Render("Checking your session..."))
		b.WriteString(helpStyle.Render("\nctrl+c quit"))
	case session.StateAuthenticated:
		fmt.Fprintf(&b, "Signed in as %s.\n", snap.CustomerID)
		b.WriteString(helpStyle.Render("\no orders • x sign out • q quit"))
	default:
		b.WriteString("Welcome. Sign in to see your orders and chat with support.\n")
		b.WriteString(helpStyle.Render("\nl sign in • q quit"))
	}
	return b.String()
}

func isProtected(route string) bool {
	return route == "/orders" || route == "/chat"
}
