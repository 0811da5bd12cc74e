package model

// Ticket is one physical seat in inventory. A ticket's assignment
// transitions exactly once per run, from unassigned to assigned, and
// is then immutable; no configuration option may reverse it.
//
// Fields:
//  ID         – primary key in the tickets table (also the sheet row
//               for stores that are spreadsheet-backed).
//  Game       – event/game name the ticket belongs to.
//  Block      – stadium block identifier (usually numeric, as text).
//  Row        – row number within the block.
//  Seat       – seat number within the row. Physically adjacent seats
//               share parity in this venue's numbering.
//  Source     – source id the ticket was bought from.
//  AssignedTo – order number the ticket is assigned to; empty while
//               unassigned.
type Ticket struct {
	ID         int64  // tickets.id
	Game       string // tickets.game
	Block      string // tickets.block
	Row        int    // tickets.row
	Seat       int    // tickets.seat
	Source     string // tickets.source
	AssignedTo string // tickets.assigned_to ("" = free)
}

// Free reports whether the ticket is still unassigned.
func (t *Ticket) Free() bool { return t.AssignedTo == "" }
