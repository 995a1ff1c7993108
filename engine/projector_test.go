package engine_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fluxo/cashflow-engine/engine"
	"github.com/fluxo/cashflow-engine/engine/store"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const testOwner = "owner-1"

func newProjector(mem *store.Memory) *engine.Projector {
	return &engine.Projector{Entries: mem, Recurrences: mem}
}

func addIncome(t *testing.T, mem *store.Memory, id, day, amount string) {
	t.Helper()
	mem.AddEntry(engine.LedgerEntry{
		ID:          id,
		OwnerID:     testOwner,
		Date:        date(t, day),
		Direction:   engine.Income,
		Description: "Income " + id,
		Amount:      decimal.RequireFromString(amount),
		Priority:    engine.PriorityMedium,
	})
}

func addExpense(t *testing.T, mem *store.Memory, id, day, amount string, priority engine.Priority) {
	t.Helper()
	mem.AddEntry(engine.LedgerEntry{
		ID:          id,
		OwnerID:     testOwner,
		Date:        date(t, day),
		Direction:   engine.Expense,
		Description: "Expense " + id,
		Category:    "other",
		Amount:      decimal.RequireFromString(amount),
		Priority:    priority,
	})
}

func marchWindow(t *testing.T) (engine.Date, engine.Date) {
	return date(t, "2026-03-01"), date(t, "2026-03-31")
}

// =============================================================================
// UNCONSTRAINED PASS - Break date and minimum balance
// =============================================================================

func TestProject_BreakDateAndMinimum(t *testing.T) {
	// GIVEN: Opening balance 1000, income 500 on day 5, expense 2000 on day 10
	// WHEN: Projecting over March with reserve 0
	// THEN: Minimum balance is -500 on day 10, which is also the break date

	mem := store.NewMemory()
	addIncome(t, mem, "open", "2026-02-01", "1000")
	addIncome(t, mem, "pay", "2026-03-05", "500")
	addExpense(t, mem, "big", "2026-03-10", "2000", engine.PriorityHigh)

	start, end := marchWindow(t)
	result, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID: testOwner,
		Start:   start,
		End:     end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.OpeningBalance != 1000 {
		t.Errorf("expected opening 1000, got %v", result.OpeningBalance)
	}
	if result.MinimumBalance != -500 {
		t.Errorf("expected minimum -500, got %v", result.MinimumBalance)
	}
	if result.MinimumBalanceDate != "2026-03-10" {
		t.Errorf("expected minimum on 2026-03-10, got %s", result.MinimumBalanceDate)
	}
	if result.BreakDate == nil || *result.BreakDate != "2026-03-10" {
		t.Errorf("expected break date 2026-03-10, got %v", result.BreakDate)
	}
	if result.EndingBalance != -500 {
		t.Errorf("expected ending -500, got %v", result.EndingBalance)
	}
}

func TestProject_UncoverableExpense(t *testing.T) {
	// GIVEN: The same shape, expense priority high
	// WHEN: Projecting with reserve 0
	// THEN: The expense is uncovered, coverage 0%, recommended reserve 500

	mem := store.NewMemory()
	addIncome(t, mem, "open", "2026-02-01", "1000")
	addIncome(t, mem, "pay", "2026-03-05", "500")
	addExpense(t, mem, "big", "2026-03-10", "2000", engine.PriorityHigh)

	start, end := marchWindow(t)
	result, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID: testOwner,
		Start:   start,
		End:     end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Coverage.TotalExpenses != 1 || result.Coverage.CoveredCount != 0 {
		t.Errorf("expected 0/1 coverage, got %d/%d", result.Coverage.CoveredCount, result.Coverage.TotalExpenses)
	}
	if result.Coverage.Percent != 0.0 {
		t.Errorf("expected coverage percent 0.0, got %v", result.Coverage.Percent)
	}
	if result.RecommendedReserve != 500 {
		t.Errorf("expected recommended reserve 500, got %v", result.RecommendedReserve)
	}

	var uncovered *engine.RiskNotice
	for i := range result.Risks {
		if result.Risks[i].Type == "uncovered" {
			uncovered = &result.Risks[i]
		}
	}
	if uncovered == nil {
		t.Fatal("expected an uncovered risk notice")
	}
	if len(uncovered.Items) != 1 || uncovered.Items[0].Amount != 2000 {
		t.Errorf("expected one 2000 obligation, got %+v", uncovered.Items)
	}
}

func TestProject_EmptyLedger(t *testing.T) {
	// GIVEN: No entries, no recurrences, no overrides
	// WHEN: Projecting any window
	// THEN: Flat zero balances, no break, 100% coverage

	mem := store.NewMemory()
	start, end := marchWindow(t)
	result, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID: testOwner,
		Start:   start,
		End:     end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.OpeningBalance != 0 || result.EndingBalance != 0 || result.MinimumBalance != 0 {
		t.Errorf("expected flat zero balances, got %+v", result)
	}
	if result.BreakDate != nil {
		t.Errorf("expected no break date, got %v", *result.BreakDate)
	}
	if result.Coverage.Percent != 100.0 {
		t.Errorf("expected 100%% coverage, got %v", result.Coverage.Percent)
	}
	if len(result.Daily) != 31 {
		t.Errorf("expected 31 daily points, got %d", len(result.Daily))
	}
	if len(result.Events) != 0 {
		t.Errorf("expected no events, got %d", len(result.Events))
	}
}

// =============================================================================
// INVARIANTS
// =============================================================================

func TestProject_BalanceConservation(t *testing.T) {
	// ending == opening + sum of realized signed deltas

	mem := store.NewMemory()
	addIncome(t, mem, "open", "2026-01-15", "2500")
	addIncome(t, mem, "pay", "2026-03-25", "3000.75")
	addExpense(t, mem, "rent", "2026-03-01", "1200", engine.PriorityHigh)
	addExpense(t, mem, "food", "2026-03-12", "433.21", engine.PriorityMedium)
	addExpense(t, mem, "fun", "2026-03-20", "89.99", engine.PriorityLow)

	start, end := marchWindow(t)
	result, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID: testOwner,
		Start:   start,
		End:     end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := decimal.NewFromFloat(result.OpeningBalance)
	for _, ev := range result.Events {
		sum = sum.Add(decimal.NewFromFloat(ev.SignedDelta))
	}
	if !sum.Equal(decimal.NewFromFloat(result.EndingBalance)) {
		t.Errorf("conservation violated: opening+deltas=%v, ending=%v", sum, result.EndingBalance)
	}
}

func TestProject_CoverageInvariant(t *testing.T) {
	// covered + uncovered == total expenses, and a covered expense never
	// takes the balance below the reserve.

	mem := store.NewMemory()
	addIncome(t, mem, "open", "2026-02-01", "1000")
	addExpense(t, mem, "a", "2026-03-05", "400", engine.PriorityHigh)
	addExpense(t, mem, "b", "2026-03-10", "400", engine.PriorityMedium)
	addExpense(t, mem, "c", "2026-03-15", "400", engine.PriorityLow)

	start, end := marchWindow(t)
	result, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID:    testOwner,
		Start:      start,
		End:        end,
		ReserveMin: decimal.NewFromInt(300),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1000 - 400 = 600 >= 300 (covered); 600 - 400 = 200 < 300 (uncovered twice).
	if result.Coverage.CoveredCount != 1 || result.Coverage.TotalExpenses != 3 {
		t.Errorf("expected 1/3 coverage, got %d/%d", result.Coverage.CoveredCount, result.Coverage.TotalExpenses)
	}

	uncoveredCount := 0
	for _, ev := range result.Events {
		if ev.Direction == string(engine.Expense) && !ev.Covered {
			uncoveredCount++
		}
	}
	if result.Coverage.CoveredCount+uncoveredCount != result.Coverage.TotalExpenses {
		t.Errorf("coverage counts do not add up: %d covered + %d uncovered != %d total",
			result.Coverage.CoveredCount, uncoveredCount, result.Coverage.TotalExpenses)
	}
}

func TestProject_Deterministic(t *testing.T) {
	// Two identical calls serialize byte-identically.

	mem := store.NewMemory()
	addIncome(t, mem, "open", "2026-02-01", "1000")
	addIncome(t, mem, "pay", "2026-03-05", "500")
	addExpense(t, mem, "a", "2026-03-05", "120", engine.PriorityMedium)
	addExpense(t, mem, "b", "2026-03-05", "120", engine.PriorityMedium)
	addExpense(t, mem, "c", "2026-03-05", "80", engine.PriorityHigh)
	mem.AddRecurrence(engine.RecurrenceTemplate{
		ID: "r1", OwnerID: testOwner, Name: "Rent", Enabled: true,
		DayOfMonth: 31, Direction: engine.Expense, Amount: decimal.NewFromInt(300),
	})

	start, end := marchWindow(t)
	input := engine.ProjectionInput{
		OwnerID:          testOwner,
		Start:            start,
		End:              end,
		IncludeRecurring: true,
		Overrides: &engine.ScenarioOverrides{
			Extras: []engine.ExtraOverride{{Date: "2026-03-20", Amount: 50.0}},
		},
	}

	first, err := newProjector(mem).Project(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := newProjector(mem).Project(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Error("identical inputs must produce byte-identical results")
	}
}

// =============================================================================
// ORDERING
// =============================================================================

func TestProject_CanonicalSameDayOrder(t *testing.T) {
	// Within a day: income first, then expenses by priority, then by
	// descending amount.

	mem := store.NewMemory()
	addIncome(t, mem, "open", "2026-02-01", "1000")
	addExpense(t, mem, "low", "2026-03-10", "50", engine.PriorityLow)
	addExpense(t, mem, "med-small", "2026-03-10", "20", engine.PriorityMedium)
	addExpense(t, mem, "med-big", "2026-03-10", "80", engine.PriorityMedium)
	addExpense(t, mem, "high", "2026-03-10", "10", engine.PriorityHigh)
	addIncome(t, mem, "refund", "2026-03-10", "30")

	start, end := marchWindow(t)
	result, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID: testOwner,
		Start:   start,
		End:     end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ids []string
	for _, ev := range result.Events {
		ids = append(ids, ev.ID)
	}
	want := []string{"entry-refund", "entry-high", "entry-med-big", "entry-med-small", "entry-low"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], ids[i])
		}
	}
}

// =============================================================================
// MODES - Cash vs accrual opening balance
// =============================================================================

func TestProject_OpeningBalanceByMode(t *testing.T) {
	mem := store.NewMemory()
	// Settled pre-window expense counts in both modes.
	settled := date(t, "2026-02-10")
	mem.AddEntry(engine.LedgerEntry{
		ID: "paid", OwnerID: testOwner, Date: date(t, "2026-02-10"),
		Direction: engine.Expense, Amount: decimal.NewFromInt(200),
		Status: engine.StatusSettled, SettledAt: &settled,
		Priority: engine.PriorityMedium,
	})
	// Pending pre-window expense only counts under accrual.
	mem.AddEntry(engine.LedgerEntry{
		ID: "owed", OwnerID: testOwner, Date: date(t, "2026-02-20"),
		Direction: engine.Expense, Amount: decimal.NewFromInt(300),
		Status: engine.StatusPending, Priority: engine.PriorityMedium,
	})
	addIncome(t, mem, "open", "2026-02-01", "1000")

	start, end := marchWindow(t)

	cash, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID: testOwner, Start: start, End: end, Mode: engine.ModeCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cash.OpeningBalance != 800 {
		t.Errorf("cash opening: expected 800 (1000-200), got %v", cash.OpeningBalance)
	}

	accrual, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID: testOwner, Start: start, End: end, Mode: engine.ModeAccrual,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accrual.OpeningBalance != 500 {
		t.Errorf("accrual opening: expected 500 (1000-200-300), got %v", accrual.OpeningBalance)
	}
}

func TestProject_CashModeUsesSettlementDate(t *testing.T) {
	// A settled entry nominally dated before the window but settled inside
	// it lands inside the window under cash mode.

	mem := store.NewMemory()
	addIncome(t, mem, "open", "2026-02-01", "1000")
	settled := date(t, "2026-03-04")
	mem.AddEntry(engine.LedgerEntry{
		ID: "late", OwnerID: testOwner, Date: date(t, "2026-02-25"),
		Direction: engine.Expense, Amount: decimal.NewFromInt(100),
		Status: engine.StatusSettled, SettledAt: &settled,
		Priority: engine.PriorityMedium,
	})

	start, end := marchWindow(t)
	result, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID: testOwner, Start: start, End: end, Mode: engine.ModeCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Events) != 1 {
		t.Fatalf("expected the settled expense inside the window, got %d events", len(result.Events))
	}
	if result.Events[0].Date != "2026-03-04" {
		t.Errorf("expected settlement date 2026-03-04, got %s", result.Events[0].Date)
	}
}

// =============================================================================
// RECURRENCES AND OVERRIDES THROUGH THE PROJECTOR
// =============================================================================

func TestProject_IncludeRecurringToggle(t *testing.T) {
	mem := store.NewMemory()
	addIncome(t, mem, "open", "2026-02-01", "1000")
	mem.AddRecurrence(engine.RecurrenceTemplate{
		ID: "rent", OwnerID: testOwner, Name: "Rent", Enabled: true,
		DayOfMonth: 1, Direction: engine.Expense, Amount: decimal.NewFromInt(300),
	})

	start, end := marchWindow(t)

	with, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID: testOwner, Start: start, End: end, IncludeRecurring: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(with.Events) != 1 {
		t.Errorf("expected the recurrence event, got %d events", len(with.Events))
	}

	without, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID: testOwner, Start: start, End: end, IncludeRecurring: false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(without.Events) != 0 {
		t.Errorf("expected no events with recurring excluded, got %d", len(without.Events))
	}
}

func TestProject_ReserveOverrideSupersedesInput(t *testing.T) {
	// Input reserve 0 would cover the expense; the scenario reserve of 800
	// blocks it.

	mem := store.NewMemory()
	addIncome(t, mem, "open", "2026-02-01", "1000")
	addExpense(t, mem, "bill", "2026-03-10", "300", engine.PriorityHigh)

	start, end := marchWindow(t)
	result, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID: testOwner,
		Start:   start,
		End:     end,
		Overrides: &engine.ScenarioOverrides{
			Reserve: 800.0,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ReserveMin != 800 {
		t.Errorf("expected effective reserve 800, got %v", result.ReserveMin)
	}
	if result.Coverage.CoveredCount != 0 {
		t.Errorf("expected the expense blocked by the scenario reserve, got %d covered", result.Coverage.CoveredCount)
	}
}

func TestProject_ShiftOutOfWindowDropsEvent(t *testing.T) {
	mem := store.NewMemory()
	addIncome(t, mem, "open", "2026-02-01", "1000")
	addExpense(t, mem, "bill", "2026-03-10", "300", engine.PriorityMedium)

	start, end := marchWindow(t)
	result, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID: testOwner,
		Start:   start,
		End:     end,
		Overrides: &engine.ScenarioOverrides{
			Shifts: []engine.ShiftOverride{{EntryID: "bill", NewDate: "2026-04-15"}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Events) != 0 {
		t.Errorf("an event shifted past the window must not be realized, got %d events", len(result.Events))
	}
	if result.EndingBalance != 1000 {
		t.Errorf("expected ending 1000, got %v", result.EndingBalance)
	}
}

// =============================================================================
// CATEGORY TOTALS
// =============================================================================

func TestProject_CategoryTotalsDescending(t *testing.T) {
	mem := store.NewMemory()
	addIncome(t, mem, "open", "2026-02-01", "5000")
	mem.AddEntry(engine.LedgerEntry{
		ID: "rent", OwnerID: testOwner, Date: date(t, "2026-03-01"),
		Direction: engine.Expense, Category: "Housing",
		Amount: decimal.NewFromInt(1200), Priority: engine.PriorityHigh,
	})
	mem.AddEntry(engine.LedgerEntry{
		ID: "food1", OwnerID: testOwner, Date: date(t, "2026-03-08"),
		Direction: engine.Expense, Category: "groceries",
		Amount: decimal.NewFromInt(90), Priority: engine.PriorityMedium,
	})
	mem.AddEntry(engine.LedgerEntry{
		ID: "food2", OwnerID: testOwner, Date: date(t, "2026-03-22"),
		Direction: engine.Expense, Category: "groceries",
		Amount: decimal.NewFromInt(110), Priority: engine.PriorityMedium,
	})

	start, end := marchWindow(t)
	result, err := newProjector(mem).Project(context.Background(), engine.ProjectionInput{
		OwnerID: testOwner, Start: start, End: end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(result.Categories))
	}
	if result.Categories[0].Key != "housing" || result.Categories[0].Total != 1200 {
		t.Errorf("expected housing 1200 first, got %+v", result.Categories[0])
	}
	if result.Categories[1].Key != "groceries" || result.Categories[1].Total != 200 {
		t.Errorf("expected groceries 200 second, got %+v", result.Categories[1])
	}
}
