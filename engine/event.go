/*
event.go - The unit the simulator operates on

PURPOSE:
  Event is the canonical in-memory representation of a dated cash movement.
  Ledger entries, recurrence occurrences, scenario extras and installment
  parts all become Events before simulation; provenance is kept in Origin
  so results can be correlated back to their source record.

INVARIANTS:
  - Amount is non-negative; SignedDelta is Amount for income and -Amount
    for expenses. The sign of SignedDelta always matches Direction.
  - Events are immutable once constructed. Overrides build NEW Event
    values rather than mutating in place.
  - IDs are stable strings, unique within one projection run.

CANONICAL ORDER:
  (date, income-before-expense, priority rank, descending amount).
  On a given day all income settles before any expense; within expenses,
  higher priority and larger amount settle first. Both simulation passes
  share a single sort.

SEE ALSO:
  - recurrence.go: template -> Events
  - overrides.go: scenario rewrites
  - simulate.go: the two passes over the sorted stream
*/
package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ORIGIN - Provenance of an event
// =============================================================================

type Origin string

const (
	OriginLedger      Origin = "ledger"
	OriginRecurrence  Origin = "recurrence"
	OriginScenario    Origin = "scenario-extra"
	OriginInstallment Origin = "installment"
)

// =============================================================================
// EVENT
// =============================================================================

type Event struct {
	ID     string
	Origin Origin

	Date        Date
	Description string
	Category    string
	Direction   Direction
	Amount      decimal.Decimal // always non-negative
	SignedDelta decimal.Decimal // Amount if income, -Amount if expense
	Priority    Priority

	// EntryID is the source ledger entry id for ledger/installment origins;
	// empty otherwise. Used to match shift/split directives.
	EntryID string
}

// newEvent builds an Event with the signed delta derived from direction,
// keeping the sign invariant in one place.
func newEvent(id string, origin Origin, date Date, description, category string, direction Direction, amount decimal.Decimal, priority Priority) Event {
	amount = amount.Abs()
	delta := amount
	if direction == Expense {
		delta = amount.Neg()
	}
	return Event{
		ID:          id,
		Origin:      origin,
		Date:        date,
		Description: description,
		Category:    NormalizeCategory(category),
		Direction:   direction,
		Amount:      amount,
		SignedDelta: delta,
		Priority:    priority,
	}
}

// EventFromEntry converts a ledger entry into its event, dated per mode.
func EventFromEntry(e LedgerEntry, mode Mode) Event {
	ev := newEvent(
		fmt.Sprintf("entry-%s", e.ID),
		OriginLedger,
		e.EffectiveDate(mode),
		e.Description,
		e.Category,
		e.Direction,
		e.Amount,
		e.Priority,
	)
	ev.EntryID = e.ID
	return ev
}

// =============================================================================
// CANONICAL ORDERING
// =============================================================================

// sortEvents applies the canonical settlement order in place. The sort is
// stable so equal keys keep construction order, which keeps repeated runs
// byte-identical.
func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		ai, bi := incomeFirst(a), incomeFirst(b)
		if ai != bi {
			return ai < bi
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		return a.Amount.GreaterThan(b.Amount)
	})
}

func incomeFirst(e Event) int {
	if e.SignedDelta.IsPositive() {
		return 0
	}
	return 1
}

// filterWindow keeps only events dated within [start, end]. Shifts, splits
// and extras may move events outside the requested range; callers re-filter
// after overrides.
func filterWindow(events []Event, start, end Date) []Event {
	kept := events[:0:0]
	for _, ev := range events {
		if start.BeforeOrEqual(ev.Date) && ev.Date.BeforeOrEqual(end) {
			kept = append(kept, ev)
		}
	}
	return kept
}
