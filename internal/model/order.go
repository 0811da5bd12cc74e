package model

import "time"

// Order is one purchase order as read from the orders sheet of the
// tabular store. Orders are loaded once per run and never re-read
// mid-run; only the assigned flag is mutated when the scheduler
// records an outcome.
//
// Fields:
//  Number    – external order number (primary identifier).
//  Source    – normalized ticket source id (e.g. "tixstock").
//  Event     – event/game name as entered by the source.
//  Category  – raw category string; may end with an explicit block
//              number (e.g. "CATEGORY 1 PREMIUM 304").
//  Qty       – requested number of seats.
//  Seating   – seating arrangement text ("Single Seat(s)",
//              "Up To 3 Together", ...).
//  CreatedAt – creation timestamp from the store.
//  Assigned  – true once the order has received tickets.
type Order struct {
	Number    string    // orders.order_number
	Source    string    // orders.source (normalized)
	Event     string    // orders.event_name
	Category  string    // orders.category
	Qty       int       // orders.qty
	Seating   string    // orders.seating
	CreatedAt time.Time // orders.created_at
	Assigned  bool      // derived: order already holds tickets
}
