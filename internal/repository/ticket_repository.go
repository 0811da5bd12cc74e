package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/iliyamo/ticket-allocation/internal/model"
)

// TicketRepo provides access to the tickets table: the run-start
// snapshot and the persistent claim write. It implements the engine's
// ClaimStore.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// FetchAll returns every ticket, assigned or not, ordered by id.
// Rows without the identifying columns (game, block, row, seat) are
// skipped and logged, matching the skip-and-continue policy for bad
// data.
func (r *TicketRepo) FetchAll(ctx context.Context) ([]*model.Ticket, error) {
	const q = `SELECT id, game, block, ` + "`row`" + `, seat, source, COALESCE(assigned_to, '')
	           FROM tickets
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Ticket
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.Game, &t.Block, &t.Row, &t.Seat, &t.Source, &t.AssignedTo); err != nil {
			log.Printf("tickets: skipping malformed row: %v", err)
			continue
		}
		if t.Game == "" || t.Block == "" {
			continue
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Claim assigns a ticket to an order only if its assignment slot is
// still empty — a compare-and-swap on the assigned_to column. It
// returns ErrTicketTaken when the slot is occupied and
// ErrTicketNotFound when the ticket does not exist.
func (r *TicketRepo) Claim(ctx context.Context, ticketID int64, orderNumber string) error {
	const q = `UPDATE tickets
	           SET assigned_to = ?
	           WHERE id = ? AND (assigned_to IS NULL OR assigned_to = '')`
	res, err := r.db.ExecContext(ctx, q, orderNumber, ticketID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Zero rows: either occupied or missing. Look once to tell the
	// caller which.
	const check = `SELECT COALESCE(assigned_to, '') FROM tickets WHERE id = ?`
	var holder string
	err = r.db.QueryRowContext(ctx, check, ticketID).Scan(&holder)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTicketNotFound
	}
	if err != nil {
		return err
	}
	if holder == orderNumber {
		return nil // idempotent re-claim by the same order
	}
	return ErrTicketTaken
}
