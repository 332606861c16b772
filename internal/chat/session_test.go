package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"orderdesk/internal/gateway"
	"orderdesk/internal/orders"
)

// fakeAgent scripts the agent endpoint and captures the turn payloads it
// receives.
type fakeAgent struct {
	reply    string
	summary  *orders.Summary
	err      error
	requests []turnRequest
}

func (f *fakeAgent) Send(ctx context.Context, method, path string, body, out any) error {
	if req, ok := body.(turnRequest); ok {
		f.requests = append(f.requests, req)
	}
	if f.err != nil {
		return f.err
	}
	data, err := json.Marshal(turnResponse{Reply: f.reply, OrderSummary: f.summary})
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func TestSubmitTurnIgnoresBlankInput(t *testing.T) {
	agent := &fakeAgent{reply: "hi"}
	s := NewSession(agent)

	for _, input := range []string{"", "   ", "\n\t "} {
		s.SubmitTurn(context.Background(), input)
	}

	if got := len(s.History()); got != 0 {
		t.Errorf("Expected empty history, got %d messages", got)
	}
	if len(agent.requests) != 0 {
		t.Errorf("Expected no agent calls, got %d", len(agent.requests))
	}
}

func TestSubmitTurnAppendsUserThenAgent(t *testing.T) {
	summary := &orders.Summary{SalesOrderNumber: "SO-1001", DisplayStatus: "Shipped", OrderDate: "2026-08-01", OrderTotal: 99.5}
	agent := &fakeAgent{reply: "Your order **SO-1001** has shipped.", summary: summary}
	s := NewSession(agent)

	s.SubmitTurn(context.Background(), "hello")

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(history))
	}
	if history[0].Sender != SenderUser || history[0].Text != "hello" {
		t.Errorf("Expected user message first, got %+v", history[0])
	}
	if history[1].Sender != SenderAgent {
		t.Errorf("Expected agent message second, got %+v", history[1])
	}
	if history[1].Text != agent.reply {
		t.Errorf("Expected agent reply carried through, got %q", history[1].Text)
	}
	if history[1].Summary == nil || history[1].Summary.SalesOrderNumber != "SO-1001" {
		t.Errorf("Expected order summary attached, got %+v", history[1].Summary)
	}
}

func TestSubmitTurnFailureAppendsApology(t *testing.T) {
	agent := &fakeAgent{err: &gateway.NetworkError{Endpoint: "/agent/", Err: fmt.Errorf("connection refused to 10.0.0.5")}}
	s := NewSession(agent)

	s.SubmitTurn(context.Background(), "hello")

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(history))
	}
	if history[1].Sender != SenderAgent {
		t.Errorf("Expected agent fallback message, got %+v", history[1])
	}
	if history[1].Text != apologyText {
		t.Errorf("Expected fixed apology, got %q", history[1].Text)
	}
	if strings.Contains(history[1].Text, "connection refused") || strings.Contains(history[1].Text, "10.0.0.5") {
		t.Error("Apology must not leak underlying error detail")
	}
	if history[1].Summary != nil {
		t.Error("Expected no summary on failed turn")
	}
}

func TestSubmitTurnWirePayload(t *testing.T) {
	agent := &fakeAgent{reply: "first reply"}
	s := NewSession(agent)

	s.SubmitTurn(context.Background(), "first question")
	s.SubmitTurn(context.Background(), "second question")

	if len(agent.requests) != 2 {
		t.Fatalf("Expected 2 agent calls, got %d", len(agent.requests))
	}

	first := agent.requests[0]
	if first.Message != "first question" {
		t.Errorf("Expected message carried separately, got %q", first.Message)
	}
	if len(first.PreviousMessages) != 0 {
		t.Errorf("Expected empty prior history on first turn, got %v", first.PreviousMessages)
	}

	second := agent.requests[1]
	if second.Message != "second question" {
		t.Errorf("Expected second message, got %q", second.Message)
	}
	want := []wireMessage{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first reply"},
	}
	if len(second.PreviousMessages) != len(want) {
		t.Fatalf("Expected %d prior messages, got %d", len(want), len(second.PreviousMessages))
	}
	for i, msg := range want {
		if second.PreviousMessages[i] != msg {
			t.Errorf("previous_messages[%d]: expected %+v, got %+v", i, msg, second.PreviousMessages[i])
		}
	}
}

func TestHistoryLengthAfterNTurns(t *testing.T) {
	agent := &fakeAgent{reply: "ok"}
	s := NewSession(agent)

	const n = 5
	for i := 0; i < n; i++ {
		s.SubmitTurn(context.Background(), fmt.Sprintf("question %d", i))
	}

	history := s.History()
	if len(history) != 2*n {
		t.Fatalf("Expected %d messages, got %d", 2*n, len(history))
	}
	for i, msg := range history {
		wantSender := SenderUser
		if i%2 == 1 {
			wantSender = SenderAgent
		}
		if msg.Sender != wantSender {
			t.Errorf("message %d: expected sender %s, got %s", i, wantSender, msg.Sender)
		}
	}
}

func TestResetClearsHistory(t *testing.T) {
	agent := &fakeAgent{reply: "ok"}
	s := NewSession(agent)

	s.SubmitTurn(context.Background(), "hello")
	s.Reset()

	if got := len(s.History()); got != 0 {
		t.Errorf("Expected empty history after reset, got %d", got)
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	agent := &fakeAgent{reply: "ok"}
	s := NewSession(agent)
	s.SubmitTurn(context.Background(), "hello")

	history := s.History()
	history[0].Text = "mutated"

	if s.History()[0].Text != "hello" {
		t.Error("History must return a copy, not the backing slice")
	}
}
