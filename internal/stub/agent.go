package stub

import (
	"fmt"
	"strings"
	"unicode"

	"orderdesk/internal/orders"
)

// The canned agent mirrors the production agent's retrieval behavior:
// order data is fetched only when the message looks order-related, a
// specific order mentioned by number wins over the general case, and a
// structured summary rides along with the markdown reply.

var orderKeywords = []string{
	"order", "status", "latest", "recent", "shipment",
	"shipping", "delivery", "track", "when will", "where is",
	"show", "tell", "about", "details", "what", "info", "information",
}

var comparativeKeywords = []string{"compare", "all", "orders", "list", "show me orders"}

type agentTurn struct {
	Reply        string          `json:"reply"`
	OrderSummary *orders.Summary `json:"order_summary,omitempty"`
}

func needsOrderData(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range orderKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	// Digits usually mean an order number.
	return strings.IndexFunc(message, unicode.IsDigit) >= 0
}

func mentionedOrder(message string, recent []orders.Order) *orders.Order {
	lower := strings.ToLower(message)
	for i := range recent {
		if strings.Contains(lower, strings.ToLower(recent[i].SalesOrderNumber)) {
			return &recent[i]
		}
	}
	return nil
}

func isComparative(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range comparativeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func summaryOf(order *orders.Order) *orders.Summary {
	return &orders.Summary{
		SalesOrderNumber: order.SalesOrderNumber,
		DisplayStatus:    order.DisplayStatus,
		OrderDate:        order.OrderDate,
		OrderTotal:       order.OrderTotal,
	}
}

// composeTurn builds the agent reply for one message given the customer's
// recent orders (already fetched when the message warranted it).
func composeTurn(message string, recent []orders.Order) agentTurn {
	if order := mentionedOrder(message, recent); order != nil {
		reply := fmt.Sprintf(
			"Here is what I found for order **%s**:\n\n- Status: %s\n- Order date: %s\n- Total: $%.2f\n\nIs there anything else you'd like to know about this order?",
			order.SalesOrderNumber, order.DisplayStatus, order.OrderDate, order.OrderTotal)
		return agentTurn{Reply: reply, OrderSummary: summaryOf(order)}
	}

	if !needsOrderData(message) {
		return agentTurn{Reply: "I can help with questions about your orders. Ask me about an order's status, or give me a specific order number."}
	}

	if len(recent) == 0 {
		return agentTurn{Reply: "I couldn't find any orders on your account. If you have an order number, please share it and I'll take another look."}
	}

	if isComparative(message) {
		var b strings.Builder
		b.WriteString("Here are your recent orders:\n\n")
		for _, order := range recent {
			fmt.Fprintf(&b, "- **%s** — %s (%s, $%.2f)\n",
				order.SalesOrderNumber, order.DisplayStatus, order.OrderDate, order.OrderTotal)
		}
		b.WriteString("\nWhich one would you like to look at?")
		return agentTurn{Reply: b.String()}
	}

	latest := recent[0]
	reply := fmt.Sprintf(
		"Your most recent order is **%s**, placed on %s. Its status is %s and the total is $%.2f. Want more detail on it, or on a different order?",
		latest.SalesOrderNumber, latest.OrderDate, latest.DisplayStatus, latest.OrderTotal)
	return agentTurn{Reply: reply, OrderSummary: summaryOf(&latest)}
}
