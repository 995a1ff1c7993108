/*
projector.go - The single entry point

PURPOSE:
  Projector wires the pieces together for one projection call:

  1. Read all ledger entries for the owner; partition them into the opening
     balance (pre-window, per the mode's counting policy) and base events.
  2. Expand enabled recurrence templates into the window.
  3. Apply scenario overrides (which may override the reserve), then
     re-filter to the window since shifts/splits/extras can move events out.
  4. Sort once; run Pass A and Pass B over the same stream.
  5. Aggregate into the SimulationResult.

PURITY:
  A single invocation is O(E log E) in the number of events, holds no
  shared mutable state and allocates everything per call, so concurrent
  invocations are trivially parallelizable. The only error sources are the
  reader collaborators; every data-shape variation degrades to a
  well-defined result instead of failing.
*/
package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROJECTOR
// =============================================================================

// Projector runs cash-flow projections over the reader collaborators.
type Projector struct {
	Entries     EntryReader
	Recurrences RecurrenceReader
}

// ProjectionInput carries the parameters of one projection call.
type ProjectionInput struct {
	OwnerID string

	// Window, inclusive. The engine assumes a well-formed range; the
	// surrounding layer normalizes an inverted one by swapping.
	Start Date
	End   Date

	// Mode selects the authoritative date field (cash or accrual).
	Mode Mode

	// IncludeRecurring expands enabled templates into the window.
	IncludeRecurring bool

	// ReserveMin is the balance floor for Pass B. Negative values clamp
	// to zero. A scenario reserve override supersedes it.
	ReserveMin decimal.Decimal

	// Overrides is the optional what-if scenario. Nil means none.
	Overrides *ScenarioOverrides
}

// Project runs both simulation passes and returns the assembled result.
func (p *Projector) Project(ctx context.Context, in ProjectionInput) (*SimulationResult, error) {
	mode := ParseMode(string(in.Mode))
	reserve := in.ReserveMin
	if reserve.IsNegative() {
		reserve = decimal.Zero
	}

	entries, err := p.Entries.EntriesByOwner(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}

	opening := decimal.Zero
	var events []Event

	for _, e := range entries {
		effective := e.EffectiveDate(mode)

		if effective.Before(in.Start) {
			if !e.CountsBeforeWindow(mode) {
				continue
			}
			if e.Direction == Income {
				opening = opening.Add(e.Amount)
			} else {
				opening = opening.Sub(e.Amount)
			}
			continue
		}

		if effective.BeforeOrEqual(in.End) {
			events = append(events, EventFromEntry(e, mode))
		}
	}

	if in.IncludeRecurring && p.Recurrences != nil {
		templates, err := p.Recurrences.EnabledTemplates(ctx, in.OwnerID)
		if err != nil {
			return nil, err
		}
		for _, tpl := range templates {
			events = append(events, ExpandRecurrence(tpl, in.Start, in.End)...)
		}
	}

	events, reserveOverride := ApplyOverrides(events, in.Overrides)
	if reserveOverride != nil {
		reserve = *reserveOverride
		if reserve.IsNegative() {
			reserve = decimal.Zero
		}
	}

	events = filterWindow(events, in.Start, in.End)
	sortEvents(events)

	passA := simulatePayAll(events, opening, in.Start, in.End)
	passB := simulateCoverage(events, opening, reserve, in.Start, in.End)

	return assembleResult(events, opening, passA, passB, mode, in.IncludeRecurring, reserve, in.Start, in.End), nil
}
