/*
simulate.go - The two balance passes

PURPOSE:
  Two independent sub-algorithms over the same pre-sorted event stream:

  Pass A ("pay everything"): settle every event chronologically, producing
  the per-event running balance, the end-of-day balance series, the minimum
  balance and its date, and the first date the balance goes negative.

  Pass B (reserve-constrained coverage): income always applies; expenses on
  a day are attempted in canonical order and settle only when doing so
  keeps the balance at or above the reserve floor. An uncovered expense is
  deferred without retry and leaves the balance untouched.

  Keeping the passes as separate pure functions preserves the clean
  separation between the optimistic and reserve-aware narratives that the
  aggregator later reconciles.

FAILURE SEMANTICS:
  Neither pass can fail on data-shape grounds. Empty event lists,
  zero-length windows and all-income scenarios degrade to neutral results
  (100% coverage when there are no expenses).
*/
package engine

import "github.com/shopspring/decimal"

// UncoveredReason is the fixed reason attached to every obligation left
// unpaid by the reserve-constrained pass.
const UncoveredReason = "insufficient balance to cover without breaching the reserve"

// =============================================================================
// PASS A - Unconstrained chronological settlement
// =============================================================================

type payAllResult struct {
	// Post-event balance, aligned index-for-index with the event slice.
	running []decimal.Decimal

	daily []dailyPoint

	ending    decimal.Decimal
	minimum   decimal.Decimal
	minimumOn Date
	breakOn   *Date // nil when the balance never goes negative
}

type dailyPoint struct {
	date    Date
	balance decimal.Decimal
}

// simulatePayAll walks the window day by day applying every event's signed
// delta in canonical order. Events must already be sorted and filtered to
// [start, end].
func simulatePayAll(events []Event, opening decimal.Decimal, start, end Date) payAllResult {
	res := payAllResult{
		running:   make([]decimal.Decimal, len(events)),
		ending:    opening,
		minimum:   opening,
		minimumOn: start,
	}

	balance := opening
	idx := 0
	EachDay(start, end, func(day Date) {
		for idx < len(events) && events[idx].Date.Equal(day) {
			balance = balance.Add(events[idx].SignedDelta)
			res.running[idx] = balance
			idx++
		}

		if balance.LessThan(res.minimum) {
			res.minimum = balance
			res.minimumOn = day
		}
		if res.breakOn == nil && balance.IsNegative() {
			d := day
			res.breakOn = &d
		}

		res.daily = append(res.daily, dailyPoint{date: day, balance: balance})
	})

	res.ending = balance
	return res
}

// =============================================================================
// PASS B - Priority-ranked settlement under a reserve floor
// =============================================================================

type coverageResult struct {
	// Coverage flag aligned index-for-index with the event slice.
	// Income is always covered.
	covered []bool

	coveredCount  int
	totalExpenses int
	uncovered     []Event
}

// simulateCoverage walks the window day by day. Income applies
// unconditionally; an expense settles only if balance - amount >= reserve.
// Within a day the canonical sort already yields income first, then
// expenses by priority and descending amount.
func simulateCoverage(events []Event, opening, reserve decimal.Decimal, start, end Date) coverageResult {
	res := coverageResult{covered: make([]bool, len(events))}

	balance := opening
	idx := 0
	EachDay(start, end, func(day Date) {
		for idx < len(events) && events[idx].Date.Equal(day) {
			ev := events[idx]
			if ev.Direction == Income {
				balance = balance.Add(ev.SignedDelta)
				res.covered[idx] = true
				idx++
				continue
			}

			res.totalExpenses++
			if balance.Sub(ev.Amount).GreaterThanOrEqual(reserve) {
				balance = balance.Sub(ev.Amount)
				res.covered[idx] = true
				res.coveredCount++
			} else {
				res.uncovered = append(res.uncovered, ev)
			}
			idx++
		}
	})

	return res
}
