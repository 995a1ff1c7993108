package engine_test

import (
	"testing"

	"github.com/fluxo/cashflow-engine/engine"
	"github.com/shopspring/decimal"
)

func summaryEntries(t *testing.T) []engine.LedgerEntry {
	t.Helper()
	settled := date(t, "2026-03-02")
	return []engine.LedgerEntry{
		{
			ID: "pay", OwnerID: testOwner, Date: date(t, "2026-03-25"),
			Direction: engine.Income, Amount: decimal.NewFromInt(3000),
			Priority: engine.PriorityMedium,
		},
		{
			ID: "rent", OwnerID: testOwner, Date: date(t, "2026-03-01"),
			Direction: engine.Expense, Category: "housing",
			Amount: decimal.NewFromInt(1200), Status: engine.StatusSettled,
			SettledAt: &settled, Priority: engine.PriorityHigh,
		},
		{
			ID: "food", OwnerID: testOwner, Date: date(t, "2026-03-12"),
			Direction: engine.Expense, Category: "groceries",
			Amount: decimal.NewFromInt(250), Priority: engine.PriorityMedium,
		},
		{
			ID: "card", OwnerID: testOwner, Date: date(t, "2026-03-18"),
			Direction: engine.Expense, Category: "debt",
			Amount: decimal.NewFromInt(400), Status: engine.StatusUnpaid,
			Priority: engine.PriorityHigh,
		},
		// Outside the window, must be ignored.
		{
			ID: "old", OwnerID: testOwner, Date: date(t, "2026-02-10"),
			Direction: engine.Expense, Category: "housing",
			Amount: decimal.NewFromInt(999), Priority: engine.PriorityMedium,
		},
	}
}

func TestSummarizePeriod_Totals(t *testing.T) {
	sum := engine.SummarizePeriod(summaryEntries(t), date(t, "2026-03-01"), date(t, "2026-03-31"))

	if sum.IncomeTotal != 3000 {
		t.Errorf("expected income 3000, got %v", sum.IncomeTotal)
	}
	if sum.ExpenseTotal != 1850 {
		t.Errorf("expected expenses 1850, got %v", sum.ExpenseTotal)
	}
	if sum.Net != 1150 {
		t.Errorf("expected net 1150, got %v", sum.Net)
	}
	if sum.IncomeCount != 1 || sum.ExpenseCount != 3 {
		t.Errorf("expected 1 income / 3 expenses, got %d/%d", sum.IncomeCount, sum.ExpenseCount)
	}
}

func TestSummarizePeriod_StatusBreakdown(t *testing.T) {
	sum := engine.SummarizePeriod(summaryEntries(t), date(t, "2026-03-01"), date(t, "2026-03-31"))

	// An expense without a status reports as pending.
	if sum.Statuses["settled"] != 1200 {
		t.Errorf("expected settled 1200, got %v", sum.Statuses["settled"])
	}
	if sum.Statuses["pending"] != 250 {
		t.Errorf("expected pending 250, got %v", sum.Statuses["pending"])
	}
	if sum.Statuses["unpaid"] != 400 {
		t.Errorf("expected unpaid 400, got %v", sum.Statuses["unpaid"])
	}
}

func TestSummarizePeriod_CategoriesDescending(t *testing.T) {
	sum := engine.SummarizePeriod(summaryEntries(t), date(t, "2026-03-01"), date(t, "2026-03-31"))

	if len(sum.Categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(sum.Categories))
	}
	if sum.Categories[0].Key != "housing" {
		t.Errorf("expected housing first, got %s", sum.Categories[0].Key)
	}
	if sum.Categories[1].Key != "debt" || sum.Categories[2].Key != "groceries" {
		t.Errorf("expected debt then groceries, got %s / %s", sum.Categories[1].Key, sum.Categories[2].Key)
	}
}

func TestSummarizePeriod_EmptyWindow(t *testing.T) {
	sum := engine.SummarizePeriod(nil, date(t, "2026-03-01"), date(t, "2026-03-31"))

	if sum.IncomeTotal != 0 || sum.ExpenseTotal != 0 || sum.Net != 0 {
		t.Errorf("expected zero totals, got %+v", sum)
	}
	if len(sum.Categories) != 0 {
		t.Errorf("expected no categories, got %d", len(sum.Categories))
	}
}
