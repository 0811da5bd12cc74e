// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderAssignedEvent is published when an order receives its tickets.
// It carries enough information for downstream consumers to log,
// notify, or feed analytics without querying the primary store.
type OrderAssignedEvent struct {
	OrderNumber string   `json:"order_number"`
	Source      string   `json:"source"`
	Game        string   `json:"game"`
	Qty         int      `json:"qty"`
	Seats       []string `json:"seats"` // "block/row/seat" labels
	Reason      string   `json:"reason"`
	AssignedAt  string   `json:"assigned_at"`
}
