package engine

import (
	"testing"

	"github.com/iliyamo/ticket-allocation/internal/model"
	"github.com/iliyamo/ticket-allocation/internal/rules"
)

func seating(allowSCH bool) rules.Seating {
	return rules.Seating{
		Sources: map[string]rules.SourcePolicy{
			"livefootballtickets": {AllowSCH: allowSCH, SCHPriority: "last"},
		},
	}
}

func multiOrder(qty int) model.Order {
	return model.Order{
		Number: "A1", Source: "livefootballtickets",
		Event: "Real Madrid vs Barcelona", Category: "Category 2", Qty: qty,
	}
}

func resolveOver(t *testing.T, r *Resolver, order model.Order, e Eligibility, pool []*model.Ticket) Resolution {
	t.Helper()
	groups := Classify(pool)
	return r.Resolve(order, e, groups, FilterStats{})
}

func seatNumbers(res Resolution) []int {
	out := make([]int, len(res.Tickets))
	for i, tck := range res.Tickets {
		out[i] = tck.Seat
	}
	return out
}

func TestResolveThreeFromRun(t *testing.T) {
	// Four adjacent seats, qty=3: the first three in ascending order.
	r := NewResolver(seating(false))
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 5, 12), tk("210", 5, 14), tk("210", 5, 16)}
	res := resolveOver(t, r, multiOrder(3), elig("210"), pool)
	if res.Status != model.StatusAssigned {
		t.Fatalf("status = %s (%s), want ASSIGNED", res.Status, res.Reason)
	}
	got := seatNumbers(res)
	want := []int{10, 12, 14}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("seats = %v, want %v", got, want)
		}
	}
}

func TestResolveRejectsGapWhenSCHDisallowed(t *testing.T) {
	// Seats 10,12,16: the only 3-window bridges a gap; allow_sch=false
	// terminates NO_AVAILABLE_TICKETS.
	r := NewResolver(seating(false))
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 5, 12), tk("210", 5, 16)}
	res := resolveOver(t, r, multiOrder(3), elig("210"), pool)
	if res.Status != model.StatusNoTickets {
		t.Fatalf("status = %s, want NO_AVAILABLE_TICKETS", res.Status)
	}
}

func TestResolveGapWhenSCHAllowed(t *testing.T) {
	r := NewResolver(seating(true))
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 5, 14)}
	res := resolveOver(t, r, multiOrder(2), elig("210"), pool)
	if res.Status != model.StatusAssigned {
		t.Fatalf("status = %s (%s), want ASSIGNED via SCH", res.Status, res.Reason)
	}
	if got := seatNumbers(res); got[0] != 10 || got[1] != 14 {
		t.Fatalf("seats = %v, want [10 14]", got)
	}
}

func TestResolveNeverTwoGaps(t *testing.T) {
	// Even with SCH allowed, a selection may bridge at most one gap.
	r := NewResolver(seating(true))
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 5, 14), tk("210", 5, 18)}
	res := resolveOver(t, r, multiOrder(3), elig("210"), pool)
	if res.Status != model.StatusNoTickets {
		t.Fatalf("status = %s, want NO_AVAILABLE_TICKETS for a two-gap window", res.Status)
	}
}

func TestResolveNeverSpansRows(t *testing.T) {
	r := NewResolver(seating(true))
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 6, 12)}
	res := resolveOver(t, r, multiOrder(2), elig("210"), pool)
	if res.Status != model.StatusNoTickets {
		t.Fatalf("status = %s, want NO_AVAILABLE_TICKETS (diagonal group, multi order)", res.Status)
	}
}

func TestResolveSingleTrueSingleFirst(t *testing.T) {
	// A true single must be consumed before any pair is broken.
	r := NewResolver(seating(false))
	order := multiOrder(1)
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 5, 12), tk("210", 7, 3)}
	res := resolveOver(t, r, order, elig("210"), pool)
	if res.Status != model.StatusAssigned {
		t.Fatalf("status = %s (%s), want ASSIGNED", res.Status, res.Reason)
	}
	if res.Tickets[0].Seat != 3 {
		t.Fatalf("assigned seat %d, want the true single 3", res.Tickets[0].Seat)
	}
}

func TestResolveSingleStrict(t *testing.T) {
	s := seating(false)
	s.SingleRule.StrictSingleOnly = true
	r := NewResolver(s)
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 5, 12)}
	res := resolveOver(t, r, multiOrder(1), elig("210"), pool)
	if res.Status != model.StatusNoTickets {
		t.Fatalf("status = %s, want rejection under strict_single_only", res.Status)
	}
}

func TestResolveSingleBreakPair(t *testing.T) {
	s := seating(false)
	s.SingleRule.BehaviorIfNoSingle = "break_pair"
	r := NewResolver(s)
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 5, 12)}
	res := resolveOver(t, r, multiOrder(1), elig("210"), pool)
	if res.Status != model.StatusAssigned || len(res.Tickets) != 1 {
		t.Fatalf("status = %s, want one seat broken out of the pair", res.Status)
	}
}

func TestResolveSingleSpecificBlockBreaksPair(t *testing.T) {
	// Explicit-block orders may break a pair even under strict rules.
	s := seating(false)
	s.SingleRule.StrictSingleOnly = true
	r := NewResolver(s)
	order := multiOrder(1)
	order.Category = "CATEGORY 2 210"
	e := elig("210")
	e.Specific = true
	pool := []*model.Ticket{tk("210", 5, 10), tk("210", 5, 12)}
	res := resolveOver(t, r, order, e, pool)
	if res.Status != model.StatusAssigned || len(res.Tickets) != 1 {
		t.Fatalf("status = %s (%s), want a single broken out for the specific block", res.Status, res.Reason)
	}
}

func TestResolveEmptyEligibility(t *testing.T) {
	r := NewResolver(seating(false))
	res := r.Resolve(multiOrder(2), Eligibility{}, nil, FilterStats{})
	if res.Status != model.StatusNoTickets {
		t.Fatalf("status = %s, want NO_AVAILABLE_TICKETS for unmapped category", res.Status)
	}
}

func TestResolveAlreadyAssignedOrder(t *testing.T) {
	r := NewResolver(seating(false))
	order := multiOrder(2)
	order.Assigned = true
	res := r.Resolve(order, elig("210"), nil, FilterStats{})
	if res.Status != model.StatusAlreadyAssigned {
		t.Fatalf("status = %s, want ALREADY_ASSIGNED", res.Status)
	}
}

func TestResolvePrefersEligibilityOrder(t *testing.T) {
	// Two pairs in different blocks: the block ranked first in the
	// eligibility list wins even with a lower block number.
	r := NewResolver(seating(false))
	pool := []*model.Ticket{
		tk("320", 5, 10), tk("320", 5, 12),
		tk("517", 5, 10), tk("517", 5, 12),
	}
	res := resolveOver(t, r, multiOrder(2), elig("320", "517"), pool)
	if res.Status != model.StatusAssigned {
		t.Fatalf("status = %s (%s), want ASSIGNED", res.Status, res.Reason)
	}
	if res.Tickets[0].Block != "320" {
		t.Fatalf("assigned block %s, want eligibility-ranked 320", res.Tickets[0].Block)
	}
}

func TestResolveProtectedGroup(t *testing.T) {
	// A protected 4-run must not be partially consumed by a qty=2
	// order when a pair exists elsewhere.
	s := seating(false)
	s.Protection = rules.Protection{DoNotBreakGroupsForSmallerOrders: true, ProtectGroupSizes: []int{4}}
	r := NewResolver(s)
	pool := []*model.Ticket{
		tk("210", 5, 10), tk("210", 5, 12), tk("210", 5, 14), tk("210", 5, 16),
		tk("210", 8, 2), tk("210", 8, 4),
	}
	res := resolveOver(t, r, multiOrder(2), elig("210"), pool)
	if res.Status != model.StatusAssigned {
		t.Fatalf("status = %s (%s), want ASSIGNED from the unprotected pair", res.Status, res.Reason)
	}
	if res.Tickets[0].Row != 8 {
		t.Fatalf("assigned row %d, want the free pair in row 8", res.Tickets[0].Row)
	}
}
