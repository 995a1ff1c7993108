/*
summary.go - Risk & summary aggregation and the result payload

PURPOSE:
  Reconciles the two simulation passes into the single payload returned to
  callers: balances, the break date, coverage statistics, category totals,
  the per-event ledger and an ordered list of structured risk notices.

RISK NOTICES (in order):
  break       - first date the unconstrained balance goes negative
  uncovered   - obligations left unpaid under the reserve, top 5 by order
  low_window  - +/-2 days around the minimum-balance date

RECOMMENDED RESERVE:
  max(0, -minimum balance) from Pass A - the smallest reserve that would
  have kept the optimistic pass non-negative, rounded to the minor unit.

  The payload carries float64 values rounded at assembly time; everything
  upstream stays decimal.
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESULT PAYLOAD - The only object returned to callers
// =============================================================================

// SimulationResult is assembled fresh per projection call and owns no
// persistent identity. It serializes as-is.
type SimulationResult struct {
	Range            DateRange `json:"range"`
	Mode             Mode      `json:"mode"`
	IncludeRecurring bool      `json:"include_recurring"`
	ReserveMin       float64   `json:"reserve_min"`

	OpeningBalance     float64 `json:"opening_balance"`
	EndingBalance      float64 `json:"ending_balance"`
	MinimumBalance     float64 `json:"minimum_balance"`
	MinimumBalanceDate string  `json:"minimum_balance_date"`
	BreakDate          *string `json:"break_date"`

	Coverage           CoverageStats `json:"coverage"`
	RecommendedReserve float64       `json:"recommended_reserve"`

	Daily      []DailyBalance  `json:"daily"`
	Events     []EventRow      `json:"events"`
	Categories []CategoryTotal `json:"categories"`
	Risks      []RiskNotice    `json:"risks"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type CoverageStats struct {
	CoveredCount  int     `json:"covered_count"`
	TotalExpenses int     `json:"total_expenses"`
	Percent       float64 `json:"percent"`
}

type DailyBalance struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

// EventRow is one line of the per-event ledger: the event plus its Pass A
// running balance and Pass B coverage flag.
type EventRow struct {
	ID             string  `json:"id"`
	Origin         Origin  `json:"origin"`
	Date           string  `json:"date"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Direction      string  `json:"direction"`
	Amount         float64 `json:"amount"`
	SignedDelta    float64 `json:"signed_delta"`
	Priority       string  `json:"priority"`
	RunningBalance float64 `json:"running_balance"`
	Covered        bool    `json:"covered"`
}

type CategoryTotal struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

type RiskNotice struct {
	Type    string                `json:"type"`
	Message string                `json:"message"`
	Items   []UncoveredObligation `json:"items,omitempty"`
	From    string                `json:"from,omitempty"`
	To      string                `json:"to,omitempty"`
}

type UncoveredObligation struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Priority    string  `json:"priority"`
	Reason      string  `json:"reason"`
}

// =============================================================================
// AGGREGATION
// =============================================================================

// maxUncoveredNotices bounds how many obligations a risk notice carries.
const maxUncoveredNotices = 5

// assembleResult builds the final payload from the sorted events, the two
// pass results and the run parameters.
func assembleResult(
	events []Event,
	opening decimal.Decimal,
	passA payAllResult,
	passB coverageResult,
	mode Mode,
	includeRecurring bool,
	reserveMin decimal.Decimal,
	start, end Date,
) *SimulationResult {
	res := &SimulationResult{
		Range:            DateRange{Start: start.String(), End: end.String()},
		Mode:             mode,
		IncludeRecurring: includeRecurring,
		ReserveMin:       toFloat(reserveMin),

		OpeningBalance:     toFloat(opening),
		EndingBalance:      toFloat(passA.ending),
		MinimumBalance:     toFloat(passA.minimum),
		MinimumBalanceDate: passA.minimumOn.String(),

		Coverage: CoverageStats{
			CoveredCount:  passB.coveredCount,
			TotalExpenses: passB.totalExpenses,
			Percent:       percent1(passB.coveredCount, passB.totalExpenses),
		},
	}

	if passA.breakOn != nil {
		s := passA.breakOn.String()
		res.BreakDate = &s
	}

	if passA.minimum.IsNegative() {
		res.RecommendedReserve = toFloat(passA.minimum.Neg())
	}

	res.Daily = make([]DailyBalance, 0, len(passA.daily))
	for _, dp := range passA.daily {
		res.Daily = append(res.Daily, DailyBalance{Date: dp.date.String(), Balance: toFloat(dp.balance)})
	}

	res.Events = make([]EventRow, 0, len(events))
	for i, ev := range events {
		res.Events = append(res.Events, EventRow{
			ID:             ev.ID,
			Origin:         ev.Origin,
			Date:           ev.Date.String(),
			Description:    ev.Description,
			Category:       ev.Category,
			Direction:      string(ev.Direction),
			Amount:         toFloat(ev.Amount),
			SignedDelta:    toFloat(ev.SignedDelta),
			Priority:       string(ev.Priority),
			RunningBalance: toFloat(passA.running[i]),
			Covered:        passB.covered[i],
		})
	}

	res.Categories = categoryTotals(events)
	res.Risks = buildRisks(res, passA, passB, mode, start, end)

	return res
}

// categoryTotals sums realized expense events by category, descending by
// total. Ties keep first-seen order so repeated runs are identical.
func categoryTotals(events []Event) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, ev := range events {
		if ev.Direction != Expense {
			continue
		}
		if _, seen := totals[ev.Category]; !seen {
			order = append(order, ev.Category)
		}
		totals[ev.Category] = totals[ev.Category].Add(ev.Amount)
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, key := range order {
		out = append(out, CategoryTotal{Key: key, Label: titleCase(key), Total: toFloat(totals[key])})
	}
	// Insertion sort keeps the scan stable for equal totals.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Total > out[j-1].Total; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] = r[0] - 'a' + 'A'
	}
	return string(r)
}

// buildRisks emits the ordered risk notices described in the file header.
func buildRisks(res *SimulationResult, passA payAllResult, passB coverageResult, mode Mode, start, end Date) []RiskNotice {
	var risks []RiskNotice

	if passA.breakOn != nil {
		risks = append(risks, RiskNotice{
			Type:    "break",
			Message: fmt.Sprintf("Balance goes negative on %s under %q settlement.", passA.breakOn, mode),
		})
	}

	if len(passB.uncovered) > 0 {
		top := passB.uncovered
		if len(top) > maxUncoveredNotices {
			top = top[:maxUncoveredNotices]
		}
		items := make([]UncoveredObligation, 0, len(top))
		for _, ev := range top {
			items = append(items, UncoveredObligation{
				Date:        ev.Date.String(),
				Description: ev.Description,
				Category:    ev.Category,
				Amount:      toFloat(ev.Amount),
				Priority:    string(ev.Priority),
				Reason:      UncoveredReason,
			})
		}
		risks = append(risks, RiskNotice{
			Type:    "uncovered",
			Message: fmt.Sprintf("%d expense(s) cannot be covered under the priority/reserve rule.", len(passB.uncovered)),
			Items:   items,
		})
	}

	if len(passA.daily) > 0 {
		from := passA.minimumOn.AddDays(-2)
		if from.Before(start) {
			from = start
		}
		to := passA.minimumOn.AddDays(2)
		if to.After(end) {
			to = end
		}
		risks = append(risks, RiskNotice{
			Type:    "low_window",
			Message: fmt.Sprintf("Lowest balance in the period is %.2f on %s.", res.MinimumBalance, passA.minimumOn),
			From:    from.String(),
			To:      to.String(),
		})
	}

	return risks
}

// =============================================================================
// PERIOD SUMMARY - Plain window totals (no simulation)
// =============================================================================

// PeriodSummary is the non-simulated view of a window: totals, counts and
// the expense status breakdown. Used by the analytics surface.
type PeriodSummary struct {
	Range        DateRange          `json:"range"`
	IncomeTotal  float64            `json:"income_total"`
	ExpenseTotal float64            `json:"expense_total"`
	Net          float64            `json:"net"`
	IncomeCount  int                `json:"income_count"`
	ExpenseCount int                `json:"expense_count"`
	Statuses     map[string]float64 `json:"statuses"`
	Categories   []CategoryTotal    `json:"categories"`
}

// SummarizePeriod totals the entries dated (nominally) within [start, end].
// Pure function; no simulation, no overrides.
func SummarizePeriod(entries []LedgerEntry, start, end Date) PeriodSummary {
	sum := PeriodSummary{
		Range: DateRange{Start: start.String(), End: end.String()},
		Statuses: map[string]float64{
			string(StatusSettled): 0,
			string(StatusPending): 0,
			string(StatusUnpaid):  0,
		},
	}

	income := decimal.Zero
	expense := decimal.Zero
	statuses := map[Status]decimal.Decimal{}
	var windowed []Event

	for _, e := range entries {
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		switch e.Direction {
		case Income:
			income = income.Add(e.Amount)
			sum.IncomeCount++
		case Expense:
			expense = expense.Add(e.Amount)
			sum.ExpenseCount++
			status := e.Status
			if status == StatusNone {
				status = StatusPending
			}
			statuses[status] = statuses[status].Add(e.Amount)
			windowed = append(windowed, EventFromEntry(e, ModeAccrual))
		}
	}

	sum.IncomeTotal = toFloat(income)
	sum.ExpenseTotal = toFloat(expense)
	sum.Net = toFloat(income.Sub(expense))
	for status, total := range statuses {
		sum.Statuses[string(status)] = toFloat(total)
	}
	sum.Categories = categoryTotals(windowed)
	return sum
}
