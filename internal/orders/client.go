// Package orders consumes the order service endpoints through the gateway.
package orders

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"orderdesk/internal/gateway"
)

// Summary is the structured order payload attached to an agent reply. It is
// passthrough data: the client renders it and never mutates it.
type Summary struct {
	SalesOrderNumber string  `json:"sales_order_number"`
	DisplayStatus    string  `json:"display_status"`
	OrderDate        string  `json:"order_date"`
	OrderTotal       float64 `json:"order_total"`
}

// Item is one order line.
type Item struct {
	ItemNumber      string  `json:"item_number"`
	ItemDescription string  `json:"item_description"`
	ItemUnit        string  `json:"item_unit"`
	LineQuantity    int     `json:"line_quantity"`
	LineNetAmount   float64 `json:"line_net_amount"`
}

// Order is a sales order as returned by the order service.
type Order struct {
	SalesOrderNumber  string  `json:"sales_order_number"`
	OrderDate         string  `json:"order_date"`
	RequestedShipDate string  `json:"requested_ship_date,omitempty"`
	CustomerID        string  `json:"customer_id,omitempty"`
	CustomerName      string  `json:"customer_name,omitempty"`
	DisplayStatus     string  `json:"display_status"`
	OrderTotal        float64 `json:"order_total"`
	Items             []Item  `json:"items,omitempty"`
}

type listResponse struct {
	CustomerID string  `json:"customer_id"`
	Orders     []Order `json:"orders"`
}

// Client fetches orders for the authenticated customer.
type Client struct {
	gw gateway.Sender
}

// NewClient creates an orders client on top of a gateway sender.
func NewClient(gw gateway.Sender) *Client {
	return &Client{gw: gw}
}

// List returns one page of the customer's sales orders, optionally filtered
// by sales order number.
func (c *Client) List(ctx context.Context, page, perPage int, tranid string) ([]Order, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if tranid != "" {
		q.Set("tranid", tranid)
	}

	var resp listResponse
	if err := c.gw.Send(ctx, http.MethodGet, "/orders/?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// Get returns detailed information for one sales order.
func (c *Client) Get(ctx context.Context, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order id must be provided")
	}

	var order Order
	if err := c.gw.Send(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
