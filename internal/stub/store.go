// Package stub implements a local development backend for the portal
// client: the auth, orders, and agent endpoints the production services
// expose, backed by a seeded SQLite order book and a canned agent.
package stub

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"orderdesk/internal/orders"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed order book.
type Store struct {
	db *sql.DB
}

// NewStore opens (and if needed creates) the order database.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS customers (
		customer_id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sales_orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sales_order_number TEXT NOT NULL UNIQUE,
		customer_id TEXT NOT NULL REFERENCES customers(customer_id),
		order_date TEXT NOT NULL,
		requested_ship_date TEXT,
		status TEXT NOT NULL,
		is_partial INTEGER NOT NULL DEFAULT 0,
		order_total REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_orders_customer ON sales_orders(customer_id, order_date);

	CREATE TABLE IF NOT EXISTS order_lines (
		order_id INTEGER NOT NULL REFERENCES sales_orders(id),
		item_number TEXT NOT NULL,
		item_description TEXT,
		item_unit TEXT,
		line_quantity INTEGER NOT NULL,
		line_net_amount REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_lines_order ON order_lines(order_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CustomerExists checks the customer id case-insensitively, matching the
// allow-list lookup the production auth service performs.
func (s *Store) CustomerExists(ctx context.Context, customerID string) (bool, error) {
	normalized := strings.ToUpper(strings.TrimSpace(customerID))
	var found int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM customers WHERE UPPER(customer_id) = ?`, normalized).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("lookup customer: %w", err)
	}
	return found > 0, nil
}

// ListOrders returns the customer's sales orders newest first, optionally
// filtered by sales order number.
func (s *Store) ListOrders(ctx context.Context, customerID, tranid string, limit, offset int) ([]orders.Order, error) {
	query := `
		SELECT sales_order_number, customer_id, order_date, requested_ship_date,
		       status, is_partial, order_total,
		       (SELECT name FROM customers c WHERE c.customer_id = o.customer_id)
		FROM sales_orders o
		WHERE customer_id = ?`
	args := []any{customerID}
	if tranid = strings.TrimSpace(tranid); tranid != "" {
		query += ` AND sales_order_number = ?`
		args = append(args, tranid)
	}
	query += ` ORDER BY order_date DESC, sales_order_number LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var result []orders.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, rows.Err()
}

// GetOrder returns one of the customer's orders with its line items, or nil
// when the order does not exist or belongs to someone else.
func (s *Store) GetOrder(ctx context.Context, customerID, orderNumber string) (*orders.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sales_order_number, customer_id, order_date, requested_ship_date,
		       status, is_partial, order_total,
		       (SELECT name FROM customers c WHERE c.customer_id = o.customer_id)
		FROM sales_orders o
		WHERE customer_id = ? AND sales_order_number = ?`, customerID, orderNumber)

	var id int64
	var order orders.Order
	var shipDate, customerName sql.NullString
	var isPartial int
	var rawStatus string
	err := row.Scan(&id, &order.SalesOrderNumber, &order.CustomerID, &order.OrderDate,
		&shipDate, &rawStatus, &isPartial, &order.OrderTotal, &customerName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan order row: %w", err)
	}
	order.RequestedShipDate = shipDate.String
	order.CustomerName = customerName.String
	order.DisplayStatus = displayStatus(rawStatus, isPartial != 0)

	rows, err := s.db.QueryContext(ctx, `
		SELECT item_number, item_description, item_unit, line_quantity, line_net_amount
		FROM order_lines WHERE order_id = ? ORDER BY item_number`, id)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item orders.Item
		var desc, unit sql.NullString
		if err := rows.Scan(&item.ItemNumber, &desc, &unit, &item.LineQuantity, &item.LineNetAmount); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		item.ItemDescription = desc.String
		item.ItemUnit = unit.String
		order.Items = append(order.Items, item)
	}
	return &order, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (orders.Order, error) {
	var order orders.Order
	var shipDate, customerName sql.NullString
	var isPartial int
	var rawStatus string
	err := row.Scan(&order.SalesOrderNumber, &order.CustomerID, &order.OrderDate,
		&shipDate, &rawStatus, &isPartial, &order.OrderTotal, &customerName)
	if err != nil {
		return orders.Order{}, fmt.Errorf("scan order row: %w", err)
	}
	order.RequestedShipDate = shipDate.String
	order.CustomerName = customerName.String
	order.DisplayStatus = displayStatus(rawStatus, isPartial != 0)
	return order, nil
}

// displayStatus maps raw ERP order statuses to the customer-facing ones the
// portal shows.
func displayStatus(rawStatus string, isPartial bool) string {
	status := strings.ToLower(strings.TrimSpace(rawStatus))
	switch {
	case status == "pending approval":
		return "Order Received"
	case status == "pending fulfillment":
		return "Processing"
	case strings.Contains(status, "partially fulfilled"),
		strings.Contains(status, "pending billing") && isPartial:
		return "Partially Shipped"
	case status == "pending billing", status == "billed":
		return "Shipped"
	case status == "closed":
		return "Completed"
	case status == "cancelled", status == "canceled":
		return "Cancelled"
	default:
		return "Processing"
	}
}
