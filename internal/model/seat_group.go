package model

// GroupKind classifies a SeatGroup by its contiguity pattern.
type GroupKind string

const (
	// GroupSingle is a lone seat with no neighbour at step 2 or 4.
	GroupSingle GroupKind = "SINGLE"
	// GroupPair is exactly two seats at step 2.
	GroupPair GroupKind = "PAIR"
	// GroupRun is a maximal run of n>=3 seats, each at step 2 from
	// its neighbour ("N together").
	GroupRun GroupKind = "N_TOGETHER"
	// GroupSCH is two seats separated by exactly one empty seat
	// (numeric step 4) in the same row.
	GroupSCH GroupKind = "SCH"
	// GroupSCHDiagonal is two seats in adjacent rows of the same
	// block, seat numbers differing by 0 or 2. The only kind whose
	// members span two rows.
	GroupSCHDiagonal GroupKind = "SCH_N"
)

// SeatGroup is a classified cluster of tickets sharing (game, block,
// row) — or adjacent rows for the diagonal kind. Groups are derived
// fresh per candidate pool and never persisted. Members are ordered by
// seat number (diagonal: by row then seat).
type SeatGroup struct {
	Kind    GroupKind
	Game    string
	Block   string
	Row     int // row of the first member
	Tickets []*Ticket
	Gaps    int // number of step-4 gaps inside the group (0 or 1)
}

// Size returns the number of member tickets.
func (g *SeatGroup) Size() int { return len(g.Tickets) }

// Seats returns the member seat numbers in order.
func (g *SeatGroup) Seats() []int {
	out := make([]int, len(g.Tickets))
	for i, t := range g.Tickets {
		out[i] = t.Seat
	}
	return out
}
