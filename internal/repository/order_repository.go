package repository

import (
	"context"
	"database/sql"
	"log"

	"github.com/iliyamo/ticket-allocation/internal/engine"
	"github.com/iliyamo/ticket-allocation/internal/model"
)

// OrderRepo provides read access to the orders table. The engine
// works on a snapshot taken once at run start; orders are never
// re-read mid-run.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo constructs an OrderRepo with the given DB handle.
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// FetchAll returns the full order backlog in creation order. A
// malformed row (empty order number, unreadable columns) is skipped
// and logged; one bad record never aborts the snapshot.
func (r *OrderRepo) FetchAll(ctx context.Context) ([]model.Order, error) {
	const q = `SELECT order_number, source, event_name, category, qty, seating, created_at
	           FROM orders
	           ORDER BY created_at, order_number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		var qty sql.NullInt64
		if err := rows.Scan(&o.Number, &o.Source, &o.Event, &o.Category, &qty, &o.Seating, &o.CreatedAt); err != nil {
			log.Printf("orders: skipping malformed row: %v", err)
			continue
		}
		if o.Number == "" {
			continue
		}
		o.Source = engine.NormalizeSource(o.Source)
		o.Qty = int(qty.Int64)
		if o.Qty <= 0 {
			o.Qty = 1
		}
		if o.Seating == "" {
			o.Seating = "Up To 2 Together"
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
