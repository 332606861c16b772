package ui

import (
	"context"
	"fmt"
	"strings"

	"orderdesk/internal/chat"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
)

const inputHeight = 3

type turnDoneMsg struct{}

type chatModel struct {
	session  *chat.Session
	renderer *chat.Renderer

	vp       viewport.Model
	input    textarea.Model
	spin     spinner.Model
	width    int
	height   int
	inFlight bool
	ready    bool
}

func newChatModel(session *chat.Session) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about your orders..."
	ta.SetHeight(inputHeight)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return chatModel{session: session, input: ta, spin: sp}
}

// resize lays the transcript and input out for a new terminal size and
// rebuilds the markdown renderer at the matching wrap width.
func (m *chatModel) resize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - inputHeight - 6
	if vpHeight < 3 {
		vpHeight = 3
	}
	if !m.ready {
		m.vp = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.vp.Width = width
		m.vp.Height = vpHeight
	}
	m.input.SetWidth(width)

	// Rendering failures just mean plain-text fallback.
	if r, err := chat.NewRenderer(width - 4); err == nil {
		m.renderer = r
	}
	m.refreshTranscript()
}

func (m chatModel) update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.inFlight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case turnDoneMsg:
		m.inFlight = false
		m.input.Focus()
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter && !m.inFlight {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.inFlight = true
			m.input.Reset()
			m.input.Blur()
			cmd := m.submit(text)
			m.refreshTranscriptWith(text)
			return m, cmd
		}
		if m.inFlight {
			// Single in-flight turn; typing resumes when it resolves.
			return m, nil
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.vp, cmd = m.vp.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m chatModel) submit(text string) tea.Cmd {
	session := m.session
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		session.SubmitTurn(context.Background(), text)
		return turnDoneMsg{}
	})
}

func (m *chatModel) refreshTranscript() {
	m.refreshTranscriptWith("")
}

// refreshTranscriptWith rebuilds the viewport from history, optionally
// appending a just-submitted message the session hasn't recorded yet.
func (m *chatModel) refreshTranscriptWith(pending string) {
	if !m.ready {
		return
	}

	history := m.session.History()
	var b strings.Builder
	for _, msg := range history {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n\n")
	}
	if pending != "" && (len(history) == 0 || history[len(history)-1].Text != pending) {
		b.WriteString(m.renderMessage(chat.Message{Sender: chat.SenderUser, Text: pending}))
		b.WriteString("\n\n")
	}
	m.vp.SetContent(b.String())
	m.vp.GotoBottom()
}

func (m *chatModel) renderMessage(msg chat.Message) string {
	if msg.Sender == chat.SenderAgent {
		body := m.renderer.Agent(msg.Text)
		out := agentLabelStyle.Render("Agent") + "\n" + body
		if msg.Summary != nil {
			card := fmt.Sprintf("%s\n%s • %s • $%.2f",
				msg.Summary.SalesOrderNumber, msg.Summary.DisplayStatus,
				msg.Summary.OrderDate, msg.Summary.OrderTotal)
			out += "\n" + summaryCardStyle.Render(card)
		}
		return out
	}

	wrapped := wordwrap.String(msg.Text, max(m.width-4, 20))
	return userLabelStyle.Render("You") + "\n" + chat.LinkifyUser(wrapped)
}

func (m chatModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Support chat"))
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n")
	if m.inFlight {
		b.WriteString(m.spin.View() + " Thinking...\n")
	} else {
		b.WriteString(m.input.View() + "\n")
	}
	b.WriteString(helpStyle.Render("enter send • esc back • ctrl+c quit"))
	return b.String()
}
