package engine

import (
	"testing"

	"github.com/iliyamo/ticket-allocation/internal/model"
)

var nextID int64

func tk(block string, row, seat int) *model.Ticket {
	nextID++
	return &model.Ticket{ID: nextID, Game: "Real Madrid vs Barcelona", Block: block, Row: row, Seat: seat}
}

func kinds(groups []*model.SeatGroup) map[model.GroupKind]int {
	out := make(map[model.GroupKind]int)
	for _, g := range groups {
		out[g.Kind]++
	}
	return out
}

func findKind(groups []*model.SeatGroup, kind model.GroupKind) *model.SeatGroup {
	for _, g := range groups {
		if g.Kind == kind {
			return g
		}
	}
	return nil
}

func TestClassifyRun(t *testing.T) {
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 5, 12), tk("210", 5, 14), tk("210", 5, 16)}
	groups := Classify(pool)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.Kind != model.GroupRun || g.Size() != 4 {
		t.Fatalf("got %s size %d, want N_TOGETHER size 4", g.Kind, g.Size())
	}
	want := []int{10, 12, 14, 16}
	for i, s := range g.Seats() {
		if s != want[i] {
			t.Errorf("seat[%d] = %d, want %d", i, s, want[i])
		}
	}
}

func TestClassifyPairAndSingleNotMerged(t *testing.T) {
	// A gap of 4 between a pair and a lone seat must not merge them
	// into one group.
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 5, 12), tk("210", 5, 16)}
	groups := Classify(pool)
	k := kinds(groups)
	if k[model.GroupPair] != 1 || k[model.GroupSingle] != 1 || len(groups) != 2 {
		t.Fatalf("got %v, want one PAIR and one SINGLE", k)
	}
	p := findKind(groups, model.GroupPair)
	if s := p.Seats(); s[0] != 10 || s[1] != 12 {
		t.Errorf("pair seats = %v, want [10 12]", s)
	}
}

func TestClassifySCH(t *testing.T) {
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 5, 14)}
	groups := Classify(pool)
	if len(groups) != 1 || groups[0].Kind != model.GroupSCH {
		t.Fatalf("got %+v, want one SCH group", kinds(groups))
	}
	if groups[0].Gaps != 1 {
		t.Errorf("gaps = %d, want 1", groups[0].Gaps)
	}
}

func TestClassifyNoChainedGaps(t *testing.T) {
	// 10,14,18: one SCH pair and a leftover single, never a chain of
	// two gaps.
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 5, 14), tk("210", 5, 18)}
	groups := Classify(pool)
	k := kinds(groups)
	if k[model.GroupSCH] != 1 || k[model.GroupSingle] != 1 {
		t.Fatalf("got %v, want one SCH and one SINGLE", k)
	}
	sch := findKind(groups, model.GroupSCH)
	if s := sch.Seats(); s[0] != 10 || s[1] != 14 {
		t.Errorf("SCH seats = %v, want [10 14]", s)
	}
}

func TestClassifyParitySplit(t *testing.T) {
	// Odd and even seats are different physical sides of the aisle
	// numbering; 10 and 11 are not adjacent.
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 5, 11)}
	groups := Classify(pool)
	k := kinds(groups)
	if k[model.GroupSingle] != 2 {
		t.Fatalf("got %v, want two SINGLE groups", k)
	}
}

func TestClassifyDiagonal(t *testing.T) {
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 6, 12)}
	groups := Classify(pool)
	if len(groups) != 1 || groups[0].Kind != model.GroupSCHDiagonal {
		t.Fatalf("got %v, want one SCH_N group", kinds(groups))
	}
	g := groups[0]
	if g.Tickets[0].Row != 5 || g.Tickets[1].Row != 6 {
		t.Errorf("diagonal rows = %d,%d, want 5,6", g.Tickets[0].Row, g.Tickets[1].Row)
	}
}

func TestClassifyDiagonalVenueQuirk(t *testing.T) {
	// Block 618: row 7 seat 24 sits above row 6 seat 28 even though the
	// numeric offset is 4.
	pool := []*model.Ticket{tk("618", 7, 24), tk("618", 6, 28)}
	groups := Classify(pool)
	if len(groups) != 1 || groups[0].Kind != model.GroupSCHDiagonal {
		t.Fatalf("got %v, want one SCH_N group for the 618 quirk", kinds(groups))
	}
}

func TestClassifyPartitions(t *testing.T) {
	// Every ticket lands in exactly one group.
	pool := []*model.Ticket{
		tk("210", 5, 10), tk("210", 5, 12), tk("210", 5, 16),
		tk("210", 6, 2), tk("210", 6, 6), tk("211", 1, 1),
	}
	groups := Classify(pool)
	seen := make(map[int64]int)
	for _, g := range groups {
		for _, tck := range g.Tickets {
			seen[tck.ID]++
		}
	}
	if len(seen) != len(pool) {
		t.Fatalf("grouped %d distinct tickets, want %d", len(seen), len(pool))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("ticket %d appears in %d groups", id, n)
		}
	}
}
