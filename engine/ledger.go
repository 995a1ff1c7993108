/*
ledger.go - External collaborator model and reader interfaces

PURPOSE:
  Defines the read-only inputs the engine consumes: recorded ledger entries
  and recurring-transaction templates, plus the reader interfaces a store
  must implement. The engine NEVER mutates these records and never writes
  anything back - persistence strategy is entirely the caller's concern.

READ-ONLY CONTRACT:
  - Readers return all records for an owner; the engine itself partitions
    pre-window vs in-window (opening balance vs simulated events).
  - Callers should read from a consistent snapshot before invoking the
    engine; the engine does not retry or re-read.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - engine/store: in-memory store for tests and demos

SEE ALSO:
  - projector.go: consumes the readers
  - event.go: what entries and templates are turned into
*/
package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER ENTRY - A recorded transaction (external, read-only)
// =============================================================================

// LedgerEntry is a single recorded transaction owned by the external ledger
// store. Amount is always non-negative; Direction carries the sign.
type LedgerEntry struct {
	ID      string
	OwnerID string

	// Nominal date: receipt date for income, due date for expenses.
	Date Date

	Direction   Direction
	Description string
	Category    string
	Amount      decimal.Decimal

	// Settlement state. StatusNone when the entry carries no status.
	Status Status

	// When the entry was actually settled (set when Status is settled).
	SettledAt *Date

	Priority Priority
}

// EffectiveDate resolves which date places the entry on the timeline.
// Cash mode prefers the settlement date when the entry is settled and one
// is recorded; accrual mode always uses the nominal date.
func (e LedgerEntry) EffectiveDate(mode Mode) Date {
	if mode == ModeCash && e.Status == StatusSettled && e.SettledAt != nil {
		return *e.SettledAt
	}
	return e.Date
}

// CountsBeforeWindow reports whether a pre-window entry contributes to the
// opening balance. In cash mode only settled expenses count, and income
// counts unless it carries an explicit non-settled status. In accrual mode
// everything counts.
func (e LedgerEntry) CountsBeforeWindow(mode Mode) bool {
	if mode != ModeCash {
		return true
	}
	switch e.Direction {
	case Expense:
		return e.Status == StatusSettled
	case Income:
		return e.Status == StatusNone || e.Status == StatusSettled
	}
	return true
}

// =============================================================================
// RECURRENCE TEMPLATE - A recurring-transaction definition (external, read-only)
// =============================================================================

// RecurrenceTemplate generates one ledger-like event per month, anchored on
// a day of the month. Only monthly frequency exists in this model.
type RecurrenceTemplate struct {
	ID      string
	OwnerID string

	Name    string
	Enabled bool

	// Day-of-month anchor, clamped to the last valid day of short months.
	DayOfMonth int

	Direction   Direction
	Description string
	Category    string
	Amount      decimal.Decimal

	Status Status
	Method string
}

// =============================================================================
// READERS - The engine's only view of persistence
// =============================================================================

// EntryReader returns all ledger entries for an owner, with no date filter;
// the engine partitions them itself.
type EntryReader interface {
	EntriesByOwner(ctx context.Context, ownerID string) ([]LedgerEntry, error)
}

// RecurrenceReader returns the enabled recurrence templates for an owner.
type RecurrenceReader interface {
	EnabledTemplates(ctx context.Context, ownerID string) ([]RecurrenceTemplate, error)
}
