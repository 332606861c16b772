package stub

import (
	"context"
	"fmt"
)

type seedOrder struct {
	number    string
	customer  string
	date      string
	shipDate  string
	status    string
	isPartial bool
	total     float64
	lines     []seedLine
}

type seedLine struct {
	item     string
	desc     string
	unit     string
	quantity int
	amount   float64
}

var seedCustomers = map[string]string{
	"CUST-100": "Harbor Light Kitchens",
	"CUST-200": "Meridian Office Supply",
}

var seedOrders = []seedOrder{
	{
		number: "SO-1001", customer: "CUST-100", date: "2026-08-12", shipDate: "2026-08-20",
		status: "Pending Fulfillment", total: 1240.50,
		lines: []seedLine{
			{item: "CAB-OAK-24", desc: "Oak base cabinet 24in", unit: "Each", quantity: 2, amount: 980.00},
			{item: "HNG-SS-01", desc: "Soft-close hinge set", unit: "Pack", quantity: 4, amount: 260.50},
		},
	},
	{
		number: "SO-1002", customer: "CUST-100", date: "2026-07-30", shipDate: "2026-08-05",
		status: "Pending Billing", isPartial: true, total: 310.00,
		lines: []seedLine{
			{item: "KNB-BRZ-12", desc: "Bronze knob 12-pack", unit: "Pack", quantity: 1, amount: 310.00},
		},
	},
	{
		number: "SO-1003", customer: "CUST-100", date: "2026-06-18",
		status: "Billed", total: 89.99,
		lines: []seedLine{
			{item: "SMP-CLR-01", desc: "Clear finish sample kit", unit: "Each", quantity: 1, amount: 89.99},
		},
	},
	{
		number: "SO-1004", customer: "CUST-100", date: "2026-05-02",
		status: "Closed", total: 2150.00,
		lines: []seedLine{
			{item: "CAB-MPL-36", desc: "Maple wall cabinet 36in", unit: "Each", quantity: 2, amount: 2150.00},
		},
	},
	{
		number: "SO-2001", customer: "CUST-200", date: "2026-08-01",
		status: "Pending Approval", total: 542.75,
		lines: []seedLine{
			{item: "DSK-STL-60", desc: "Steel desk 60in", unit: "Each", quantity: 1, amount: 542.75},
		},
	},
	{
		number: "SO-2002", customer: "CUST-200", date: "2026-07-11",
		status: "Cancelled", total: 75.00,
		lines: []seedLine{
			{item: "CHR-MAT-01", desc: "Chair mat", unit: "Each", quantity: 3, amount: 75.00},
		},
	},
}

// Seed populates the sample customers and order book. Safe to run on every
// start: existing rows are left alone.
func (s *Store) Seed(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for id, name := range seedCustomers {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO customers (customer_id, name) VALUES (?, ?)`, id, name); err != nil {
			return fmt.Errorf("seed customer %s: %w", id, err)
		}
	}

	for _, order := range seedOrders {
		partial := 0
		if order.isPartial {
			partial = 1
		}
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO sales_orders
				(sales_order_number, customer_id, order_date, requested_ship_date, status, is_partial, order_total)
			VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?)`,
			order.number, order.customer, order.date, order.shipDate, order.status, partial, order.total)
		if err != nil {
			return fmt.Errorf("seed order %s: %w", order.number, err)
		}
		inserted, err := res.RowsAffected()
		if err != nil || inserted == 0 {
			continue
		}
		orderID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("seed order %s id: %w", order.number, err)
		}
		for _, line := range order.lines {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_lines
					(order_id, item_number, item_description, item_unit, line_quantity, line_net_amount)
				VALUES (?, ?, ?, ?, ?, ?)`,
				orderID, line.item, line.desc, line.unit, line.quantity, line.amount); err != nil {
				return fmt.Errorf("seed order %s line %s: %w", order.number, line.item, err)
			}
		}
	}

	return tx.Commit()
}
