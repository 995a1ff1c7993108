/*
overrides.go - Scenario override parsing and application

PURPOSE:
  A scenario is a bundle of what-if directives applied on top of real data:
  date shifts, percentage reductions by category, installment splits, ad-hoc
  extra events, and an optional reserve override.

LENIENCY POLICY:
  Directives are advisory. A directive that fails to parse (non-ISO date,
  non-numeric amount, out-of-range split count or percent) is silently
  skipped; it never aborts the whole pass. The wire shape is loosely typed
  on purpose - each directive goes through a fallible parse step that yields
  either a validated directive or a skip.

PROCESSING ORDER (fixed):
  1. Shifts      - ledger-origin events matching an entry id move to the new date
  2. Reductions  - expense amounts scale down by category percent
  3. Splits      - ledger-origin expenses become monthly installments
  4. Extras      - ad-hoc events appended (default income / "adjustments")

  Shifts, splits and extras can move events outside the requested window;
  the caller re-filters afterwards.

SEE ALSO:
  - event.go: Events are immutable; every rewrite builds a new value
  - projector.go: applies the returned reserve override to reserve_min
*/
package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WIRE SHAPE - Loosely typed, per-directive fallible parsing
// =============================================================================

// ScenarioOverrides is the wire shape of a scenario. Value fields are `any`
// so one malformed directive cannot fail decoding of the whole bundle.
type ScenarioOverrides struct {
	Shifts     []ShiftOverride     `json:"shifts,omitempty"`
	Reductions []ReductionOverride `json:"reductions,omitempty"`
	Splits     []SplitOverride     `json:"splits,omitempty"`
	Extras     []ExtraOverride     `json:"extras,omitempty"`
	Reserve    any                 `json:"reserve,omitempty"`
}

// ShiftOverride moves a ledger entry to a new date.
type ShiftOverride struct {
	EntryID any `json:"entry_id"`
	NewDate any `json:"new_date"`
}

// ReductionOverride scales expenses of a category down by a percent (0-100).
type ReductionOverride struct {
	Category any `json:"category"`
	Percent  any `json:"percent"`
}

// SplitOverride replaces a ledger expense with monthly installments (2-24).
type SplitOverride struct {
	EntryID any `json:"entry_id"`
	Parts   any `json:"parts"`
}

// ExtraOverride appends a manual one-off event to the scenario.
type ExtraOverride struct {
	Date        any `json:"date"`
	Description any `json:"description"`
	Category    any `json:"category"`
	Direction   any `json:"direction"`
	Amount      any `json:"amount"`
}

// =============================================================================
// VALUE COERCION - JSON gives us strings, numbers, json.Number
// =============================================================================

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	}
	return "", false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func asDate(v any) (Date, bool) {
	s, ok := asString(v)
	if !ok {
		return Date{}, false
	}
	return ParseDate(strings.TrimSpace(s))
}

// =============================================================================
// VALIDATED DIRECTIVES
// =============================================================================

// overridePlan holds the directives that survived parsing. Reductions and
// splits are maps, so a duplicated category or entry id is last-write-wins.
type overridePlan struct {
	shifts     map[string]Date
	reductions map[string]decimal.Decimal // category -> percent (0-100]
	splits     map[string]int             // entry id -> parts (2-24)
	extras     []extraDirective
	reserve    *decimal.Decimal
}

type extraDirective struct {
	date        Date
	description string
	category    string
	direction   Direction
	amount      decimal.Decimal
}

// parseOverrides runs every directive through its fallible parse. Anything
// malformed is dropped here so the application loop below stays clean.
func parseOverrides(o *ScenarioOverrides) overridePlan {
	plan := overridePlan{
		shifts:     make(map[string]Date),
		reductions: make(map[string]decimal.Decimal),
		splits:     make(map[string]int),
	}
	if o == nil {
		return plan
	}

	if o.Reserve != nil {
		if f, ok := asFloat(o.Reserve); ok {
			r := decimal.NewFromFloat(f)
			plan.reserve = &r
		}
	}

	for _, s := range o.Shifts {
		id, ok := asString(s.EntryID)
		if !ok || id == "" {
			continue
		}
		nd, ok := asDate(s.NewDate)
		if !ok {
			continue
		}
		plan.shifts[id] = nd
	}

	for _, r := range o.Reductions {
		catRaw, ok := asString(r.Category)
		if !ok || strings.TrimSpace(catRaw) == "" {
			continue
		}
		pct, ok := asFloat(r.Percent)
		if !ok {
			continue
		}
		// Clamp to [0, 100]; a zero percent is a no-op and not recorded.
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		if pct > 0 {
			plan.reductions[NormalizeCategory(catRaw)] = decimal.NewFromFloat(pct)
		}
	}

	for _, sp := range o.Splits {
		id, ok := asString(sp.EntryID)
		if !ok || id == "" {
			continue
		}
		parts, ok := asInt(sp.Parts)
		if !ok || parts < 2 || parts > 24 {
			continue
		}
		plan.splits[id] = parts
	}

	for _, ex := range o.Extras {
		d, ok := asDate(ex.Date)
		if !ok {
			continue
		}
		amount, ok := asFloat(ex.Amount)
		if !ok {
			continue
		}
		desc, _ := asString(ex.Description)
		if strings.TrimSpace(desc) == "" {
			desc = "Scenario adjustment"
		}
		cat, _ := asString(ex.Category)
		if strings.TrimSpace(cat) == "" {
			cat = CategoryAdjustments
		}
		dir := Income
		if raw, ok := asString(ex.Direction); ok {
			dir = ParseDirection(raw)
		}
		plan.extras = append(plan.extras, extraDirective{
			date:        d,
			description: desc,
			category:    cat,
			direction:   dir,
			amount:      decimal.NewFromFloat(amount).Abs(),
		})
	}

	return plan
}

// =============================================================================
// APPLICATION
// =============================================================================

var hundred = decimal.NewFromInt(100)

// ApplyOverrides rewrites the event list according to the scenario and
// returns the rewritten list plus an optional reserve override. The result
// may contain events outside the original window; callers re-filter.
func ApplyOverrides(events []Event, overrides *ScenarioOverrides) ([]Event, *decimal.Decimal) {
	plan := parseOverrides(overrides)

	out := make([]Event, 0, len(events)+len(plan.extras))
	for _, ev := range events {
		// 1. Shifts: only ledger entries are shiftable.
		if ev.Origin == OriginLedger {
			if nd, ok := plan.shifts[ev.EntryID]; ok {
				ev.Date = nd
			}
		}

		// 2. Reductions: expenses only, matched by normalized category.
		if ev.Direction == Expense {
			if pct, ok := plan.reductions[ev.Category]; ok {
				factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
				reduced := round2(ev.Amount.Mul(factor))
				ev.Amount = reduced
				ev.SignedDelta = reduced.Neg()
			}
		}

		// 3. Splits: a ledger expense becomes monthly installments; the
		//    original event is dropped. Installments carry the (possibly
		//    already reduced and shifted) amount and base date.
		if ev.Origin == OriginLedger && ev.Direction == Expense {
			if parts, ok := plan.splits[ev.EntryID]; ok {
				out = append(out, splitEvent(ev, parts)...)
				continue
			}
		}

		out = append(out, ev)
	}

	// 4. Extras: appended last, numbered for stable ids.
	for _, ex := range plan.extras {
		ev := newEvent(
			fmt.Sprintf("extra-%s-%d", ex.date, len(out)+1),
			OriginScenario,
			ex.date,
			ex.description,
			ex.category,
			ex.direction,
			ex.amount,
			PriorityMedium,
		)
		out = append(out, ev)
	}

	return out, plan.reserve
}

// splitEvent replaces an expense with `parts` monthly installments dated on
// the same day-of-month (clamped at month end). Each part is
// floor(amount/parts) at the minor unit except the last, which absorbs the
// remainder so the parts sum exactly to the original amount.
func splitEvent(ev Event, parts int) []Event {
	n := decimal.NewFromInt(int64(parts))
	per := ev.Amount.Div(n).RoundDown(2)
	last := ev.Amount.Sub(per.Mul(decimal.NewFromInt(int64(parts - 1))))

	installments := make([]Event, 0, parts)
	for i := 0; i < parts; i++ {
		amount := per
		if i == parts-1 {
			amount = last
		}
		occ := ev.Date.AddMonthsClamped(i)
		part := newEvent(
			fmt.Sprintf("split-%s-%d-%s", ev.EntryID, i+1, occ),
			OriginInstallment,
			occ,
			fmt.Sprintf("%s (installment %d/%d)", ev.Description, i+1, parts),
			ev.Category,
			Expense,
			amount,
			ev.Priority,
		)
		part.EntryID = ev.EntryID
		installments = append(installments, part)
	}
	return installments
}
