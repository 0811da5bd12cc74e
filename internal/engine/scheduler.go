package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/ticket-allocation/internal/model"
	"github.com/iliyamo/ticket-allocation/internal/rules"
)

// ClaimStore persists a ticket claim in the external store. The
// implementation must be an atomic write-if-unassigned: it fails
// instead of overwriting an existing assignment.
type ClaimStore interface {
	Claim(ctx context.Context, ticketID int64, orderNumber string) error
}

// Progress is the resumable cursor of a run. It is checkpointed after
// every order so a caller can pause and later invoke Run again
// starting after the last completed index.
type Progress struct {
	LastIndex int       `json:"last_index"` // first unprocessed order index
	Total     int       `json:"total"`
	LastOrder string    `json:"last_order"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgressSink receives cursor checkpoints. Sink errors are reported
// through Logf but never abort the run.
type ProgressSink interface {
	Save(ctx context.Context, p Progress) error
}

// RunInput carries everything one run needs. The order and ticket
// slices are snapshots taken at run start; the engine owns them
// exclusively for the duration of the run.
type RunInput struct {
	Orders    []model.Order
	Tickets   []*model.Ticket
	Rules     rules.Seating
	Mapping   rules.MappingSet
	Hierarchy rules.Hierarchy

	// StartIndex resumes a previous run: orders before it are
	// skipped. Zero starts from the top of the backlog.
	StartIndex int

	// Commit persists claims and emits per-order callbacks with real
	// effect; when false the engine only suggests.
	Commit   bool
	Claims   ClaimStore   // required when Commit is true
	Progress ProgressSink // optional cursor checkpointing

	// OnResult is invoked after each order with its outcome and the
	// 1-based position in the backlog. Optional.
	OnResult func(res model.OrderResult, position, total int)
	// Logf receives run log lines ("info"/"warn"/"error"). Optional.
	Logf func(level, format string, args ...any)
}

// claimGuard is the exclusive claim primitive over the in-run ticket
// pool. Assignment is a single guarded state transition, so the
// at-most-once invariant holds structurally even though the run is
// sequential.
type claimGuard struct {
	mu sync.Mutex
}

func (g *claimGuard) claim(t *model.Ticket, order string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t.AssignedTo != "" {
		return false
	}
	t.AssignedTo = order
	return true
}

func (g *claimGuard) release(t *model.Ticket, order string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t.AssignedTo == order {
		t.AssignedTo = ""
	}
}

// Run drives the per-order resolution loop over the backlog: orders
// naming an explicit block first (original relative order preserved),
// then the rest by category hierarchy level, best first. Cancellation
// is observed between orders only; the in-flight order either
// completes or leaves no trace, so the pool and cursor always stay
// resumable. One bad order never blocks the rest of the backlog.
func Run(ctx context.Context, in RunInput) (*model.RunReport, error) {
	if len(in.Mapping) == 0 {
		return nil, fmt.Errorf("%w: no category mappings loaded", rules.ErrConfig)
	}
	if in.Commit && in.Claims == nil {
		return nil, fmt.Errorf("%w: commit mode requires a claim store", rules.ErrConfig)
	}
	logf := in.Logf
	if logf == nil {
		logf = func(string, string, ...any) {}
	}

	orders := scheduleOrders(in.Orders, in.Hierarchy)
	already := assignedOrders(in.Tickets)
	catResolver := NewCategoryResolver(in.Mapping, in.Hierarchy)
	resolver := NewResolver(in.Rules)
	guard := &claimGuard{}

	report := &model.RunReport{Total: len(orders), NextIndex: in.StartIndex}
	logf("info", "run starting: %d orders, %d tickets, start index %d, commit=%v",
		len(orders), len(in.Tickets), in.StartIndex, in.Commit)

	for i := in.StartIndex; i < len(orders); i++ {
		if ctx.Err() != nil {
			logf("warn", "stop requested, halting before order %d/%d", i+1, len(orders))
			report.Stopped = true
			return report, nil
		}
		o := orders[i]

		res := resolveOne(ctx, in, o, already, catResolver, resolver, guard, logf)
		if res.Status == model.StatusAssigned {
			report.Assigned++
			already[o.Number] = true
		}
		report.Results = append(report.Results, res)
		report.NextIndex = i + 1

		if in.Progress != nil {
			p := Progress{LastIndex: i + 1, Total: len(orders), LastOrder: o.Number, UpdatedAt: time.Now().UTC()}
			if err := in.Progress.Save(ctx, p); err != nil {
				logf("warn", "progress checkpoint failed after order %s: %v", o.Number, err)
			}
		}
		if in.OnResult != nil {
			in.OnResult(res, i+1, len(orders))
		}
	}

	logf("info", "run complete: %d/%d orders assigned", report.Assigned, len(report.Results))
	return report, nil
}

// resolveOne resolves a single order, confining any unexpected fault
// to an ERROR result for that order.
func resolveOne(ctx context.Context, in RunInput, o model.Order, already map[string]bool,
	catResolver *CategoryResolver, resolver *Resolver, guard *claimGuard,
	logf func(string, string, ...any)) (res model.OrderResult) {

	res = model.OrderResult{Order: o.Number, Source: o.Source, Game: o.Event}
	defer func() {
		if r := recover(); r != nil {
			res.Status = model.StatusError
			res.Reason = fmt.Sprintf("internal fault: %v", r)
			res.Tickets = nil
			logf("error", "order %s: %s", o.Number, res.Reason)
		}
	}()

	if o.Assigned || already[o.Number] {
		res.Status = model.StatusAlreadyAssigned
		res.Reason = "order already holds tickets"
		logf("warn", "order %s [%s]: skipped, already assigned", o.Number, o.Source)
		return res
	}

	elig := catResolver.Resolve(o.Category, o.Source)
	candidates, stats := FilterCandidates(o, elig, in.Tickets)
	groups := Classify(candidates)
	decision := resolver.Resolve(o, elig, groups, stats)

	res.Status = decision.Status
	res.Reason = decision.Reason
	if decision.Status != model.StatusAssigned {
		logf("warn", "order %s [%s]: %s — %s", o.Number, o.Source, decision.Status, decision.Reason)
		return res
	}

	// Claim every selected ticket in-memory first, all or nothing,
	// so a later order in this run can never see a half-assigned
	// group. Then persist each claim; the store write is itself a
	// write-if-unassigned.
	claimed := make([]*model.Ticket, 0, len(decision.Tickets))
	rollback := func() {
		for _, t := range claimed {
			guard.release(t, o.Number)
		}
	}
	for _, t := range decision.Tickets {
		if !guard.claim(t, o.Number) {
			rollback()
			res.Status = model.StatusError
			res.Reason = fmt.Sprintf("ticket %d no longer free at claim time", t.ID)
			logf("error", "order %s: %s", o.Number, res.Reason)
			return res
		}
		claimed = append(claimed, t)
	}

	if in.Commit {
		for i, t := range decision.Tickets {
			if err := in.Claims.Claim(ctx, t.ID, o.Number); err != nil {
				// Claims already persisted stay persisted; only the
				// unpersisted remainder is released locally.
				for _, u := range decision.Tickets[i:] {
					guard.release(u, o.Number)
				}
				res.Status = model.StatusError
				res.Reason = fmt.Sprintf("persist claim for ticket %d: %v", t.ID, err)
				res.Tickets = nil
				logf("error", "order %s: %s", o.Number, res.Reason)
				return res
			}
		}
	}

	for _, t := range decision.Tickets {
		res.Tickets = append(res.Tickets, model.AssignedSeat{TicketID: t.ID, Block: t.Block, Row: t.Row, Seat: t.Seat})
	}
	logf("info", "order %s [%s]: assigned %d seat(s) — %s", o.Number, o.Source, len(res.Tickets), decision.Reason)
	return res
}

// scheduleOrders sorts the backlog: explicit-block orders first with
// their original relative order preserved, then the rest by category
// hierarchy level ascending (best category first).
func scheduleOrders(orders []model.Order, h rules.Hierarchy) []model.Order {
	out := make([]model.Order, len(orders))
	copy(out, orders)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := ExtractBlock(out[i].Category) != "", ExtractBlock(out[j].Category) != ""
		if si != sj {
			return si
		}
		if si {
			return false // preserve original order among specific-block orders
		}
		return h.Level(out[i].Category) < h.Level(out[j].Category)
	})
	return out
}

// assignedOrders collects the order numbers already present in the
// tickets' assignment column, so orders assigned in a previous run
// are never resolved again.
func assignedOrders(tickets []*model.Ticket) map[string]bool {
	out := make(map[string]bool)
	for _, t := range tickets {
		if t.AssignedTo != "" {
			out[t.AssignedTo] = true
		}
	}
	return out
}
