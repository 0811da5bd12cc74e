// Package repository implements data access against the tabular
// store (MySQL) holding orders and tickets, and the Redis-backed run
// progress store. Sentinel errors let higher layers distinguish
// failure scenarios without inspecting driver errors.
package repository

import "errors"

// ErrTicketNotFound is returned when a ticket lookup yields no rows.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrTicketTaken is returned when a claim finds the ticket's
// assignment slot already occupied. The claim is write-if-empty; an
// occupied slot is never overwritten.
var ErrTicketTaken = errors.New("ticket already assigned")
