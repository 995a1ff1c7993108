/*
Package engine implements the cash-flow projection engine.

PURPOSE:
  Given a user's recorded ledger entries, a set of recurring-transaction
  templates and an optional scenario of manual overrides, the engine
  simulates the account balance over a future date range under two policies:
  unconstrained chronological settlement ("pay everything") and
  priority-ranked settlement that respects a minimum reserve. From the two
  passes it derives risk signals: the first negative-balance date, the
  obligations left unpaid under the reserve constraint, and a recommended
  reserve amount.

KEY CONCEPTS IN THIS FILE (types.go):
  - Direction: income vs expense
  - Priority: settlement rank for expenses (high/medium/low)
  - Status: settlement state of a ledger entry
  - Mode: which date field is authoritative (cash vs accrual)

DESIGN PRINCIPLES:
  1. Purity: a projection is a deterministic function of its inputs; the
     engine holds no state between calls and performs no I/O of its own
     beyond the reader collaborators.
  2. Precision: uses decimal.Decimal to avoid floating-point drift; floats
     appear only in the assembled result payload, rounded at the boundary.
  3. Leniency: malformed scenario directives are skipped, never fatal. A
     broken what-if should degrade, not abort the projection.
  4. Immutability: events are never mutated once constructed; overrides
     produce new Event values.

SEE ALSO:
  - ledger.go: external collaborator model (entries, templates, readers)
  - event.go: the Event the simulator operates on
  - simulate.go: the two balance passes
  - projector.go: the single entry point
*/
package engine

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DIRECTION - Which way money moves
// =============================================================================

type Direction string

const (
	Income  Direction = "income"
	Expense Direction = "expense"
)

// ParseDirection normalizes a direction string, defaulting to income the way
// scenario extras do.
func ParseDirection(s string) Direction {
	if strings.TrimSpace(strings.ToLower(s)) == string(Expense) {
		return Expense
	}
	return Income
}

// =============================================================================
// PRIORITY - Settlement rank for expenses
// =============================================================================

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// priorityRank orders priorities for settlement: high before medium before low.
var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// ParsePriority normalizes a priority tag, defaulting to medium.
func ParsePriority(s string) Priority {
	p := Priority(strings.TrimSpace(strings.ToLower(s)))
	if _, ok := priorityRank[p]; ok {
		return p
	}
	return PriorityMedium
}

// Rank returns the settlement order of the priority (lower settles first).
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return priorityRank[PriorityMedium]
}

// =============================================================================
// STATUS - Settlement state of a ledger entry
// =============================================================================

type Status string

const (
	StatusNone    Status = ""
	StatusSettled Status = "settled"
	StatusPending Status = "pending"
	StatusUnpaid  Status = "unpaid"
)

// =============================================================================
// MODE - Which date field is authoritative for timing
// =============================================================================

// Mode selects how ledger entries are placed on the timeline. Cash prefers
// the settlement date (falling back to the nominal date while unsettled);
// accrual always uses the nominal date.
type Mode string

const (
	ModeCash    Mode = "cash"
	ModeAccrual Mode = "accrual"
)

// ParseMode normalizes a mode string. Anything unrecognized is cash.
func ParseMode(s string) Mode {
	if strings.TrimSpace(strings.ToLower(s)) == string(ModeAccrual) {
		return ModeAccrual
	}
	return ModeCash
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

// CategoryOther is the fallback bucket for uncategorized entries.
const CategoryOther = "other"

// CategoryAdjustments is the default bucket for scenario extras.
const CategoryAdjustments = "adjustments"

// NormalizeCategory lowercases and trims a category key, falling back to
// the shared "other" bucket.
func NormalizeCategory(s string) string {
	c := strings.TrimSpace(strings.ToLower(s))
	if c == "" {
		return CategoryOther
	}
	return c
}

// round2 rounds to the currency's minor unit.
func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// toFloat converts a decimal to the float64 used in the result payload,
// rounded to the minor unit first so the payload is stable.
func toFloat(d decimal.Decimal) float64 { return round2(d).InexactFloat64() }

// percent1 computes covered/total as a percentage rounded to one decimal.
// A zero total is defined as 100% (no expenses means full coverage).
func percent1(covered, total int) float64 {
	if total == 0 {
		return 100.0
	}
	return math.Round(float64(covered)/float64(total)*1000) / 10
}
