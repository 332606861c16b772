package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"orderdesk/internal/gateway"
)

func newClientAgainst(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gw, err := gateway.New(srv.URL)
	if err != nil {
		t.Fatalf("gateway.New: %v", err)
	}
	return NewClient(gw)
}

func TestListSendsPaginationAndFilter(t *testing.T) {
	var gotPath, gotQuery string
	c := newClientAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]any{
			"customer_id": "CUST-100",
			"orders": []map[string]any{
				{"sales_order_number": "SO-1001", "display_status": "Shipped", "order_date": "2026-08-01", "order_total": 99.5},
			},
		})
	}))

	got, err := c.List(context.Background(), 2, 10, "SO-1001")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if gotPath != "/orders/" {
		t.Errorf("Expected path /orders/, got %q", gotPath)
	}
	if gotQuery != "page=2&per_page=10&tranid=SO-1001" {
		t.Errorf("Unexpected query: %q", gotQuery)
	}
	if len(got) != 1 || got[0].SalesOrderNumber != "SO-1001" || got[0].DisplayStatus != "Shipped" {
		t.Errorf("Unexpected orders: %+v", got)
	}
}

func TestListOmitsEmptyFilter(t *testing.T) {
	var gotQuery string
	c := newClientAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]any{"customer_id": "CUST-100", "orders": []any{}})
	}))

	if _, err := c.List(context.Background(), 1, 25, ""); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if gotQuery != "page=1&per_page=25" {
		t.Errorf("Expected no tranid param, got %q", gotQuery)
	}
}

func TestGetFetchesDetail(t *testing.T) {
	c := newClientAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/SO-1001" {
			t.Errorf("Expected /orders/SO-1001, got %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"sales_order_number": "SO-1001",
			"display_status":     "Processing",
			"order_date":         "2026-08-01",
			"order_total":        250.0,
			"items": []map[string]any{
				{"item_number": "SKU-1", "line_quantity": 2, "line_net_amount": 125.0},
			},
		})
	}))

	order, err := c.Get(context.Background(), "SO-1001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if order.DisplayStatus != "Processing" || len(order.Items) != 1 {
		t.Errorf("Unexpected order: %+v", order)
	}
}

func TestGetRequiresID(t *testing.T) {
	c := NewClient(nil)
	if _, err := c.Get(context.Background(), ""); err == nil {
		t.Error("Expected error for empty order id")
	}
}
