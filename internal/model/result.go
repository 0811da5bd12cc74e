package model

// Status is the terminal outcome of resolving one order.
type Status string

const (
	// StatusAssigned means tickets were selected (and, in commit
	// mode, claimed) for the order.
	StatusAssigned Status = "ASSIGNED"
	// StatusNoTickets means no seat group satisfied the order's
	// quantity and constraints, or the category had no mapping.
	StatusNoTickets Status = "NO_AVAILABLE_TICKETS"
	// StatusAlreadyAssigned means the order already holds tickets;
	// it is never resolved again.
	StatusAlreadyAssigned Status = "ALREADY_ASSIGNED"
	// StatusError means an unexpected fault occurred while resolving
	// this order. The fault is confined to the order; the run
	// continues with the rest of the backlog.
	StatusError Status = "ERROR"
)

// AssignedSeat identifies one seat given to an order.
type AssignedSeat struct {
	TicketID int64  `json:"ticket_id"`
	Block    string `json:"block"`
	Row      int    `json:"row"`
	Seat     int    `json:"seat"`
}

// OrderResult records the outcome of one order within a run.
type OrderResult struct {
	Order   string         `json:"order"`
	Source  string         `json:"source"`
	Game    string         `json:"game,omitempty"`
	Status  Status         `json:"status"`
	Reason  string         `json:"reason,omitempty"`
	Tickets []AssignedSeat `json:"tickets,omitempty"`
}

// RunReport aggregates the results of one run together with the
// cursor value reached, so a caller can checkpoint and later resume
// after the last completed index.
type RunReport struct {
	Results   []OrderResult `json:"results"`
	NextIndex int           `json:"next_index"` // first unprocessed order index
	Total     int           `json:"total"`      // total orders in the backlog
	Assigned  int           `json:"assigned"`   // count of ASSIGNED results
	Stopped   bool          `json:"stopped"`    // run ended on a stop signal
}
