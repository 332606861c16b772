package ui

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"orderdesk/internal/gateway"
	"orderdesk/internal/session"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// FormSender issues the form-encoded credential exchange. Satisfied by the
// gateway client; the rest of the login flow only needs this one call.
type FormSender interface {
	SendForm(ctx context.Context, path string, form url.Values, out any) error
}

type loginResultMsg struct {
	customerID string
	err        error
}

type loginModel struct {
	gw    FormSender
	store *session.Store

	input    textinput.Model
	redirect string
	errText  string
	busy     bool
}

func newLoginModel(gw FormSender, store *session.Store) loginModel {
	ti := textinput.New()
	ti.Placeholder = "Customer ID (e.g. CUST-100)"
	ti.CharLimit = 32
	ti.Width = 32
	ti.Focus()
	return loginModel{gw: gw, store: store, input: ti, redirect: "/orders"}
}

// setRedirect records where to land after a successful login.
func (m *loginModel) setRedirect(target string) {
	if target == "" || !strings.HasPrefix(target, "/") {
		target = "/orders"
	}
	m.redirect = target
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter && !m.busy {
			customerID := strings.TrimSpace(m.input.Value())
			if customerID == "" {
				m.errText = "Enter your customer ID."
				return m, nil
			}
			m.busy = true
			m.errText = ""
			return m, m.submit(customerID)
		}

	case loginResultMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = loginErrorText(msg.err)
			return m, nil
		}
		m.store.Login(msg.customerID)
		m.input.Reset()
		target := m.redirect
		return m, func() tea.Msg { return navMsg{target: target} }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m loginModel) submit(customerID string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		var resp struct {
			Message    string `json:"message"`
			CustomerID string `json:"customer_id"`
		}
		form := url.Values{"username": {customerID}, "password": {""}}
		if err := gw.SendForm(context.Background(), "/token", form, &resp); err != nil {
			return loginResultMsg{err: err}
		}
		if resp.CustomerID == "" {
			resp.CustomerID = customerID
		}
		return loginResultMsg{customerID: resp.CustomerID}
	}
}

func (m loginModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.busy {
		b.WriteString(statusBarStyle.Render("Signing in..."))
	} else if m.errText != "" {
		b.WriteString(errorStyle.Render(m.errText))
	}
	b.WriteString(helpStyle.Render("\nenter sign in • esc home • ctrl+c quit"))
	return b.String()
}

// loginErrorText maps outcome errors to what the sign-in form shows. Raw
// transport detail stays in the logs.
func loginErrorText(err error) string {
	var authErr *gateway.AuthError
	if errors.As(err, &authErr) {
		return "Invalid customer ID. Please check it and try again."
	}
	var httpErr *gateway.HTTPError
	if errors.As(err, &httpErr) {
		return "Sign in failed: " + httpErr.Message
	}
	var timeoutErr *gateway.TimeoutError
	if errors.As(err, &timeoutErr) {
		return "The sign-in request timed out. Please try again."
	}
	return "Could not reach the portal. Please try again."
}
