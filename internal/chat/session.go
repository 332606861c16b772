// Package chat maintains the message history for one conversation with the
// support agent and implements the turn protocol against the agent endpoint.
package chat

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"orderdesk/internal/gateway"
	"orderdesk/internal/orders"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// apologyText is the fixed user-safe fallback for any failed turn. Raw
// error detail is logged, never shown to the end user.
const apologyText = "Sorry, I ran into a problem answering that. Please try again in a moment."

// Message is one entry in the conversation. Immutable once appended;
// insertion order is display order.
type Message struct {
	Sender  Sender
	Text    string
	Summary *orders.Summary
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type turnRequest struct {
	Message          string        `json:"message"`
	PreviousMessages []wireMessage `json:"previous_messages"`
}

type turnResponse struct {
	Reply        string          `json:"reply"`
	OrderSummary *orders.Summary `json:"order_summary,omitempty"`
}

// Session holds the ordered, append-only message history of one
// conversation. The design assumes at most one in-flight turn; the caller
// disables the input affordance while a turn runs.
type Session struct {
	gw gateway.Sender

	mu       sync.Mutex
	messages []Message
}

// NewSession creates an empty conversation.
func NewSession(gw gateway.Sender) *Session {
	return &Session{gw: gw}
}

// SubmitTurn sends one user message to the agent and appends the outcome.
// Whitespace-only input is a no-op. The user message is appended before the
// network call resolves; exactly one agent message follows regardless of
// outcome.
func (s *Session) SubmitTurn(ctx context.Context, rawText string) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return
	}

	s.mu.Lock()
	previous := make([]wireMessage, 0, len(s.messages))
	for _, msg := range s.messages {
		previous = append(previous, wireMessage{Role: roleFor(msg.Sender), Content: msg.Text})
	}
	s.messages = append(s.messages, Message{Sender: SenderUser, Text: text})
	s.mu.Unlock()

	req := turnRequest{Message: text, PreviousMessages: previous}
	var resp turnResponse
	if err := s.gw.Send(ctx, http.MethodPost, "/agent/", req, &resp); err != nil {
		slog.Error("agent turn failed", "error", err)
		s.append(Message{Sender: SenderAgent, Text: apologyText})
		return
	}

	s.append(Message{Sender: SenderAgent, Text: resp.Reply, Summary: resp.OrderSummary})
}

// History returns the messages in chronological order.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Reset clears the whole conversation. This is the only way messages are
// ever removed.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

func (s *Session) append(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// roleFor maps message senders to the wire roles the agent expects.
func roleFor(sender Sender) string {
	if sender == SenderAgent {
		return "assistant"
	}
	return "user"
}
