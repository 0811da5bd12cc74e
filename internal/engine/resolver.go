package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/ticket-allocation/internal/model"
	"github.com/iliyamo/ticket-allocation/internal/rules"
)

// Resolution is the resolver's decision for one order. The resolver
// itself never mutates the pool; the scheduler claims the selected
// tickets, so failure paths cannot leave partial state behind.
type Resolution struct {
	Status  model.Status
	Reason  string
	Tickets []*model.Ticket
}

// Resolver picks one seat group per order under the configured
// seating rules and the fixed constraints no configuration may
// override: never reassign, never split a multi-seat order across
// blocks or rows, never bridge a gap of six or more.
type Resolver struct {
	rules rules.Seating
}

// NewResolver builds a resolver over the loaded seating rules.
func NewResolver(r rules.Seating) *Resolver {
	return &Resolver{rules: r}
}

// Resolve decides the terminal outcome for one order given its
// eligibility, the classified groups of its candidate pool, and the
// filter statistics (used for decline reasons).
func (r *Resolver) Resolve(order model.Order, elig Eligibility, groups []*model.SeatGroup, stats FilterStats) Resolution {
	if order.Assigned {
		return Resolution{Status: model.StatusAlreadyAssigned, Reason: "order already holds tickets"}
	}
	if elig.Empty() {
		return Resolution{
			Status: model.StatusNoTickets,
			Reason: fmt.Sprintf("category not in mapping: %s", order.Category),
		}
	}
	if len(groups) == 0 {
		return Resolution{
			Status: model.StatusNoTickets,
			Reason: fmt.Sprintf("no stock (game mismatch=%d, block mismatch=%d, already assigned=%d)",
				stats.GameMismatch, stats.BlockMismatch, stats.Assigned),
		}
	}

	prio := blockPriority(elig, order.Source)
	if order.Qty == 1 || ParseUpTo(order.Seating) == 1 {
		return r.resolveSingle(order, elig, groups, prio)
	}
	return r.resolveMultiple(order, groups, prio)
}

// blockPriority ranks block spellings by eligibility position,
// accepting translated spellings for external numbering. Lower is
// better; unknown blocks rank last.
func blockPriority(elig Eligibility, source string) map[string]int {
	prio := make(map[string]int, len(elig.Blocks)*2)
	for i, eb := range elig.Blocks {
		for _, b := range TranslateBlock(eb.Block, source) {
			if _, ok := prio[b]; !ok {
				prio[b] = i
			}
		}
	}
	return prio
}

func blockRank(prio map[string]int, block string) int {
	if i, ok := prio[strings.ToUpper(norm(block))]; ok {
		return i
	}
	return len(prio) + 1
}

// sortGroups orders groups by eligibility rank, then higher block
// number, then row and first seat for a deterministic total order.
func sortGroups(gs []*model.SeatGroup, prio map[string]int) {
	sort.SliceStable(gs, func(i, j int) bool {
		ri, rj := blockRank(prio, gs[i].Block), blockRank(prio, gs[j].Block)
		if ri != rj {
			return ri < rj
		}
		ni, nj := BlockNumber(gs[i].Block), BlockNumber(gs[j].Block)
		if ni != nj {
			return ni > nj
		}
		if gs[i].Row != gs[j].Row {
			return gs[i].Row < gs[j].Row
		}
		return gs[i].Tickets[0].Seat < gs[j].Tickets[0].Seat
	})
}

// resolveSingle handles quantity-1 orders. A true SINGLE must be used
// when one exists; breaking a PAIR is permitted only for explicit
// single-block orders or when the configured single rule allows a
// fallback.
func (r *Resolver) resolveSingle(order model.Order, elig Eligibility, groups []*model.SeatGroup, prio map[string]int) Resolution {
	byKind := make(map[model.GroupKind][]*model.SeatGroup)
	for _, g := range groups {
		byKind[g.Kind] = append(byKind[g.Kind], g)
	}
	for _, gs := range byKind {
		sortGroups(gs, prio)
	}

	if singles := byKind[model.GroupSingle]; len(singles) > 0 {
		return assigned(singles[0].Tickets[:1], "true single")
	}

	// Specific-block orders have absolute priority and may break a
	// pair when the block holds no true single.
	if elig.Specific {
		if pairs := byKind[model.GroupPair]; len(pairs) > 0 {
			return assigned(pairs[0].Tickets[:1], "single from pair (specific block)")
		}
	}

	if r.rules.SingleRule.StrictSingleOnly {
		return Resolution{Status: model.StatusNoTickets, Reason: "single required, no single available"}
	}

	// Fallback order between PAIR and SCH follows the source's
	// pairing priority unless the single rule pins SCH first.
	kinds := []model.GroupKind{model.GroupPair, model.GroupSCH, model.GroupSCHDiagonal}
	policy := r.rules.Source(NormalizeSource(order.Source))
	switch {
	case r.rules.SingleRule.BehaviorIfNoSingle == "reject":
		return Resolution{Status: model.StatusNoTickets, Reason: "single required, no single available"}
	case r.rules.SingleRule.BehaviorIfNoSingle == "use_sch", policy.SCHPriority == "first":
		kinds = []model.GroupKind{model.GroupSCH, model.GroupSCHDiagonal, model.GroupPair}
	}
	for _, kind := range kinds {
		if gs := byKind[kind]; len(gs) > 0 {
			return assigned(gs[0].Tickets[:1], fmt.Sprintf("single from %s", kind))
		}
	}
	return Resolution{Status: model.StatusNoTickets, Reason: "no candidate seats for single"}
}

// window is one candidate selection for a multi-seat order: a
// contiguous slice of a same-row parity chain.
type window struct {
	tickets []*model.Ticket
	block   string
	row     int
	gaps    int
}

// resolveMultiple handles quantity>=2 orders. The selection is always
// a window inside one block, one row and one parity chain; adjacent
// steps of 2 are free, a single step of 4 needs the source's SCH
// permission, and a step of 6 or more disqualifies the window with no
// override.
func (r *Resolver) resolveMultiple(order model.Order, groups []*model.SeatGroup, prio map[string]int) Resolution {
	need := order.Qty
	policy := r.rules.Source(NormalizeSource(order.Source))

	windows := r.collectWindows(groups, need, policy.AllowSCH)
	if len(windows) == 0 {
		return Resolution{
			Status: model.StatusNoTickets,
			Reason: fmt.Sprintf("no group with %d adjacent seats", need),
		}
	}

	// Gapless windows rank above SCH windows unless the source's
	// pairing priority explicitly reverses this; the remaining keys
	// mirror the group ordering.
	gapRank := func(w window) int {
		if policy.SCHPriority == "first" {
			return 1 - w.gaps
		}
		return w.gaps
	}
	sort.SliceStable(windows, func(i, j int) bool {
		if gi, gj := gapRank(windows[i]), gapRank(windows[j]); gi != gj {
			return gi < gj
		}
		ri, rj := blockRank(prio, windows[i].block), blockRank(prio, windows[j].block)
		if ri != rj {
			return ri < rj
		}
		ni, nj := BlockNumber(windows[i].block), BlockNumber(windows[j].block)
		if ni != nj {
			return ni > nj
		}
		if windows[i].row != windows[j].row {
			return windows[i].row < windows[j].row
		}
		return windows[i].tickets[0].Seat < windows[j].tickets[0].Seat
	})

	best := windows[0]
	reason := fmt.Sprintf("%d together", need)
	if best.gaps > 0 {
		reason = fmt.Sprintf("%d together with one seat gap", need)
	}
	return assigned(best.tickets, reason)
}

// collectWindows enumerates every valid selection of the requested
// size across the same-row parity chains formed by the groups.
// Diagonal groups never participate: a multi-seat order must not span
// rows.
func (r *Resolver) collectWindows(groups []*model.SeatGroup, need int, allowSCH bool) []window {
	type chainKey struct {
		game   string
		block  string
		row    int
		parity int
	}
	chains := make(map[chainKey][]*model.SeatGroup)
	var keys []chainKey
	for _, g := range groups {
		if g.Kind == model.GroupSCHDiagonal {
			continue
		}
		k := chainKey{g.Game, g.Block, g.Row, g.Tickets[0].Seat & 1}
		if chains[k] == nil {
			keys = append(keys, k)
		}
		chains[k] = append(chains[k], g)
	}

	var out []window
	for _, k := range keys {
		gs := chains[k]
		sort.Slice(gs, func(i, j int) bool { return gs[i].Tickets[0].Seat < gs[j].Tickets[0].Seat })

		var seatsInRow []*model.Ticket
		owner := make(map[*model.Ticket]*model.SeatGroup)
		for _, g := range gs {
			for _, t := range g.Tickets {
				owner[t] = g
				seatsInRow = append(seatsInRow, t)
			}
		}
		if len(seatsInRow) < need {
			continue
		}

		for start := 0; start+need <= len(seatsInRow); start++ {
			win := seatsInRow[start : start+need]
			gaps, ok := windowGaps(win, allowSCH)
			if !ok {
				continue
			}
			if r.breaksProtectedGroup(win, owner) {
				continue
			}
			out = append(out, window{tickets: win, block: k.block, row: k.row, gaps: gaps})
		}
	}
	return out
}

// windowGaps validates the internal steps of a window: steps of 2 are
// always fine, one step of 4 is fine when SCH is allowed, anything
// else disqualifies.
func windowGaps(win []*model.Ticket, allowSCH bool) (int, bool) {
	gaps := 0
	for i := 1; i < len(win); i++ {
		switch win[i].Seat - win[i-1].Seat {
		case 2:
		case 4:
			gaps++
		default:
			return 0, false
		}
	}
	if gaps > 1 {
		return 0, false
	}
	if gaps == 1 && !allowSCH {
		return 0, false
	}
	return gaps, true
}

// breaksProtectedGroup reports whether the window partially consumes
// a group whose size the protection rule reserves for larger orders.
func (r *Resolver) breaksProtectedGroup(win []*model.Ticket, owner map[*model.Ticket]*model.SeatGroup) bool {
	if !r.rules.Protection.DoNotBreakGroupsForSmallerOrders {
		return false
	}
	counts := make(map[*model.SeatGroup]int)
	for _, t := range win {
		counts[owner[t]]++
	}
	for g, n := range counts {
		if n < g.Size() && r.rules.ProtectedSize(g.Size()) {
			return true
		}
	}
	return false
}

func assigned(tickets []*model.Ticket, reason string) Resolution {
	return Resolution{Status: model.StatusAssigned, Reason: reason, Tickets: tickets}
}
