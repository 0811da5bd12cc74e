// Package runner orchestrates allocation runs: it loads the rule
// configuration, snapshots orders and tickets from the store, drives
// the engine in the background, and exposes run state to the control
// API. At most one run executes at a time.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/ticket-allocation/internal/engine"
	"github.com/iliyamo/ticket-allocation/internal/model"
	"github.com/iliyamo/ticket-allocation/internal/queue"
	"github.com/iliyamo/ticket-allocation/internal/repository"
	"github.com/iliyamo/ticket-allocation/internal/rules"
	queue_publisher "github.com/iliyamo/ticket-allocation/internal/service"
)

// ErrRunInProgress is returned when a run is requested while another
// run is still executing.
var ErrRunInProgress = errors.New("a run is already in progress")

// Config points the runner at its rule files and sets the run mode.
type Config struct {
	SeatingRulesPath string
	HierarchyPath    string
	MappingDir       string
	// Commit persists assignments and publishes events; false means
	// suggest-only runs.
	Commit bool
}

// LogEntry is one run log line kept for the dashboard poll endpoint.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// maxBufferedLogs caps the in-memory log buffer between polls.
const maxBufferedLogs = 1000

// Runner owns the single-run state machine.
type Runner struct {
	cfg      Config
	orders   *repository.OrderRepo
	tickets  *repository.TicketRepo
	progress *repository.ProgressRepo

	// publish is swappable in tests; defaults to the RabbitMQ
	// publisher.
	publish func(ctx context.Context, ev queue.OrderAssignedEvent) error

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	last    *model.RunReport
	lastErr error
	logs    []LogEntry
}

// New constructs a Runner. The progress repo may be backed by a nil
// Redis client; resume then only survives within the process.
func New(cfg Config, orders *repository.OrderRepo, tickets *repository.TicketRepo, progress *repository.ProgressRepo) *Runner {
	return &Runner{
		cfg:      cfg,
		orders:   orders,
		tickets:  tickets,
		progress: progress,
		publish:  queue_publisher.PublishOrderAssigned,
	}
}

// Start launches a run in the background. With resume true the run
// continues after the last checkpointed order; otherwise the cursor
// is cleared and the run starts from the top. Configuration errors
// surface here, before any order is processed.
func (r *Runner) Start(resume bool) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrRunInProgress
	}
	r.running = true
	r.mu.Unlock()

	in, err := r.prepare(resume)
	if err != nil {
		r.finish(nil, err)
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	go func() {
		defer cancel()
		report, err := engine.Run(ctx, *in)
		r.finish(report, err)
	}()
	return nil
}

// prepare loads rules and snapshots and assembles the engine input.
func (r *Runner) prepare(resume bool) (*engine.RunInput, error) {
	seating, err := rules.LoadSeating(r.cfg.SeatingRulesPath)
	if err != nil {
		return nil, err
	}
	hierarchy, err := rules.LoadHierarchy(r.cfg.HierarchyPath)
	if err != nil {
		return nil, err
	}
	mapping, err := rules.LoadMappingDir(r.cfg.MappingDir)
	if err != nil {
		return nil, err
	}

	ctx, cancelFetch := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelFetch()
	orders, err := r.orders.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	tickets, err := r.tickets.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch tickets: %w", err)
	}

	startIndex := 0
	if resume {
		if p, ok, err := r.progress.Load(ctx); err == nil && ok {
			startIndex = p.LastIndex
			r.logf("info", "resuming after order %q (index %d of %d)", p.LastOrder, p.LastIndex, p.Total)
		} else if err != nil {
			r.logf("warn", "progress load failed, starting from the top: %v", err)
		}
	} else if err := r.progress.Clear(ctx); err != nil {
		r.logf("warn", "progress clear failed: %v", err)
	}

	in := &engine.RunInput{
		Orders:     orders,
		Tickets:    tickets,
		Rules:      seating,
		Mapping:    mapping,
		Hierarchy:  hierarchy,
		StartIndex: startIndex,
		Commit:     r.cfg.Commit,
		Claims:     r.tickets,
		Progress:   r.progress,
		OnResult:   r.onResult,
		Logf:       r.logf,
	}
	return in, nil
}

// onResult publishes an event for each committed assignment.
func (r *Runner) onResult(res model.OrderResult, position, total int) {
	if res.Status != model.StatusAssigned || !r.cfg.Commit {
		return
	}
	seats := make([]string, len(res.Tickets))
	for i, s := range res.Tickets {
		seats[i] = fmt.Sprintf("%s/%d/%d", s.Block, s.Row, s.Seat)
	}
	ev := queue.OrderAssignedEvent{
		OrderNumber: res.Order,
		Source:      res.Source,
		Game:        res.Game,
		Qty:         len(res.Tickets),
		Seats:       seats,
		Reason:      res.Reason,
		AssignedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.publish(ctx, ev); err != nil {
		r.logf("warn", "publish order.assigned for %s failed: %v", res.Order, err)
	}
}

// Stop requests cancellation of the in-flight run. The engine
// observes the signal between orders, so the pool and cursor stay
// consistent.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.logLocked("warn", "stop requested")
		r.cancel()
	}
}

// Status reports whether a run is executing, plus the last report and
// error.
func (r *Runner) Status() (running bool, last *model.RunReport, lastErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running, r.last, r.lastErr
}

// Progress returns the last checkpointed cursor.
func (r *Runner) Progress(ctx context.Context) (engine.Progress, bool, error) {
	return r.progress.Load(ctx)
}

// DrainLogs returns the buffered run log lines and clears the buffer,
// matching the dashboard's poll-and-drain model.
func (r *Runner) DrainLogs() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.logs
	r.logs = nil
	return out
}

func (r *Runner) finish(report *model.RunReport, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	r.cancel = nil
	if report != nil {
		r.last = report
	}
	r.lastErr = err
	if err != nil {
		r.logLocked("error", "run failed: %v", err)
	}
}

func (r *Runner) logf(level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logLocked(level, format, args...)
}

func (r *Runner) logLocked(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("runner: [%s] %s", level, msg)
	if len(r.logs) >= maxBufferedLogs {
		r.logs = r.logs[1:]
	}
	r.logs = append(r.logs, LogEntry{Time: time.Now().UTC(), Level: level, Message: msg})
}
