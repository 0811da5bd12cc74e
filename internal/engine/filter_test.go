package engine

import (
	"testing"

	"github.com/iliyamo/ticket-allocation/internal/model"
)

func elig(blocks ...string) Eligibility {
	e := Eligibility{}
	for _, b := range blocks {
		e.Blocks = append(e.Blocks, EligibleBlock{Block: b})
	}
	return e
}

func TestFilterCandidates(t *testing.T) {
	order := model.Order{Number: "A1", Source: "livefootballtickets", Event: "Real Madrid vs Barcelona", Qty: 2}
	assignedTicket := tk("210", 5, 14)
	assignedTicket.AssignedTo = "B7"
	pool := []*model.Ticket{
		tk("210", 5, 10),                // keep
		tk("210", 5, 12),                // keep
		tk("305", 5, 10),                // wrong block
		assignedTicket,                  // already assigned
		{ID: 99, Game: "Sevilla vs Betis", Block: "210", Row: 5, Seat: 16}, // wrong game
	}

	got, stats := FilterCandidates(order, elig("210"), pool)
	if len(got) != 2 {
		t.Fatalf("kept %d tickets, want 2", len(got))
	}
	if stats.BlockMismatch != 1 || stats.Assigned != 1 || stats.GameMismatch != 1 {
		t.Errorf("stats = %+v, want one of each mismatch", stats)
	}
}

func TestFilterAcceptsTranslatedBlocks(t *testing.T) {
	// A TixStock order eligible for block 17 also accepts inventory
	// listed under the venue's 117.
	order := model.Order{Number: "T1", Source: "tixstock", Event: "Real Madrid vs Barcelona", Qty: 1}
	pool := []*model.Ticket{tk("117", 3, 8)}
	got, _ := FilterCandidates(order, elig("17"), pool)
	if len(got) != 1 {
		t.Fatalf("kept %d tickets, want the translated block to match", len(got))
	}
}
