/*
datasets.go - Demo dataset loaders for testing and demonstrations

PURPOSE:

	Provides pre-built datasets that populate the database with realistic
	ledgers for testing and demos. Each dataset creates entries and
	recurrence templates that demonstrate specific projection behaviors.

AVAILABLE DATASETS:

	steady-salary: Regular paycheck, recurring bills, comfortable buffer
	tight-month:   Low buffer, a large obligation mid-month, likely break
	freelancer:    Irregular invoice income with pending settlements

HOW DATASETS WORK:
 1. Reset database (clear all data)
 2. Insert ledger entries under the "demo" owner
 3. Insert recurrence templates

USAGE VIA API:

	POST /api/datasets/load
	{"dataset_id": "tight-month"}

ADDING NEW DATASETS:
 1. Add to 'datasets' slice with ID, name, description
 2. Create loader function: loadXxxDataset(ctx, h)
 3. Add case to LoadDataset handler

NOTE:

	Datasets reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Entry/recurrence/projection handlers
  - store/sqlite: Reset and seed operations
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fluxo/cashflow-engine/engine"
)

// demoOwner is the owner id every dataset seeds under.
const demoOwner = "demo"

// =============================================================================
// DATASET DEFINITIONS
// =============================================================================

var datasets = []DatasetDTO{
	{
		ID:          "steady-salary",
		Name:        "Steady Salary",
		Description: "Monthly paycheck, recurring bills, comfortable buffer",
		OwnerID:     demoOwner,
	},
	{
		ID:          "tight-month",
		Name:        "Tight Month",
		Description: "Low buffer with a large mid-month obligation; the projection breaks",
		OwnerID:     demoOwner,
	},
	{
		ID:          "freelancer",
		Name:        "Freelancer",
		Description: "Irregular invoice income, pending settlements, quarterly tax",
		OwnerID:     demoOwner,
	},
}

// ListDatasets returns the available demo datasets.
// GET /api/datasets
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, datasets)
}

// LoadDataset resets the database and seeds the selected dataset.
// POST /api/datasets/load
func (h *Handler) LoadDataset(w http.ResponseWriter, r *http.Request) {
	var req LoadDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.DatasetID {
	case "steady-salary":
		err = h.loadSteadySalary(ctx)
	case "tight-month":
		err = h.loadTightMonth(ctx)
	case "freelancer":
		err = h.loadFreelancer(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown dataset: %s", req.DatasetID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load dataset", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"loaded":   req.DatasetID,
		"owner_id": demoOwner,
	})
}

// =============================================================================
// SEED HELPERS
// =============================================================================

func (h *Handler) seedEntry(ctx context.Context, id, day, direction, description, category string, amount float64, status engine.Status, priority engine.Priority) error {
	date, ok := engine.ParseDate(day)
	if !ok {
		return fmt.Errorf("bad seed date %q", day)
	}
	entry := engine.LedgerEntry{
		ID:          id,
		OwnerID:     demoOwner,
		Date:        date,
		Direction:   engine.ParseDirection(direction),
		Description: description,
		Category:    category,
		Amount:      decimal.NewFromFloat(amount),
		Status:      status,
		Priority:    priority,
	}
	if status == engine.StatusSettled {
		entry.SettledAt = &date
	}
	return h.Store.SaveEntry(ctx, entry)
}

func (h *Handler) seedRecurrence(ctx context.Context, id, name string, day int, direction, description, category string, amount float64) error {
	return h.Store.SaveRecurrence(ctx, engine.RecurrenceTemplate{
		ID:          id,
		OwnerID:     demoOwner,
		Name:        name,
		Enabled:     true,
		DayOfMonth:  day,
		Direction:   engine.ParseDirection(direction),
		Description: description,
		Category:    category,
		Amount:      decimal.NewFromFloat(amount),
	})
}

// =============================================================================
// DATASET: STEADY SALARY
// =============================================================================

func (h *Handler) loadSteadySalary(ctx context.Context) error {
	// Opening buffer from last month's settled paycheck.
	seeds := []error{
		h.seedEntry(ctx, "ss-opening", "2026-07-25", "income", "July paycheck", "salary", 3200, engine.StatusSettled, engine.PriorityMedium),
		h.seedEntry(ctx, "ss-groceries-1", "2026-08-06", "expense", "Weekly groceries", "groceries", 95.40, engine.StatusNone, engine.PriorityMedium),
		h.seedEntry(ctx, "ss-groceries-2", "2026-08-13", "expense", "Weekly groceries", "groceries", 102.10, engine.StatusNone, engine.PriorityMedium),
		h.seedEntry(ctx, "ss-groceries-3", "2026-08-20", "expense", "Weekly groceries", "groceries", 88.75, engine.StatusNone, engine.PriorityMedium),
		h.seedEntry(ctx, "ss-dining", "2026-08-15", "expense", "Anniversary dinner", "dining", 140, engine.StatusNone, engine.PriorityLow),
		h.seedRecurrence(ctx, "ss-salary", "Salary", 25, "income", "Monthly paycheck", "salary", 3200),
		h.seedRecurrence(ctx, "ss-rent", "Rent", 1, "expense", "Apartment rent", "housing", 1150),
		h.seedRecurrence(ctx, "ss-utilities", "Utilities", 5, "expense", "Power and water", "utilities", 160),
		h.seedRecurrence(ctx, "ss-internet", "Internet", 12, "expense", "Fiber subscription", "utilities", 45),
	}
	return firstError(seeds)
}

// =============================================================================
// DATASET: TIGHT MONTH
// =============================================================================

func (h *Handler) loadTightMonth(ctx context.Context) error {
	seeds := []error{
		h.seedEntry(ctx, "tm-opening", "2026-07-28", "income", "Remaining balance carryover", "salary", 420, engine.StatusSettled, engine.PriorityMedium),
		h.seedEntry(ctx, "tm-car-repair", "2026-08-14", "expense", "Transmission repair", "transport", 980, engine.StatusUnpaid, engine.PriorityHigh),
		h.seedEntry(ctx, "tm-card", "2026-08-18", "expense", "Credit card minimum", "debt", 210, engine.StatusUnpaid, engine.PriorityHigh),
		h.seedEntry(ctx, "tm-paycheck", "2026-08-25", "income", "August paycheck", "salary", 1900, engine.StatusNone, engine.PriorityMedium),
		h.seedEntry(ctx, "tm-birthday", "2026-08-21", "expense", "Kid's birthday", "family", 150, engine.StatusNone, engine.PriorityLow),
		h.seedRecurrence(ctx, "tm-rent", "Rent", 1, "expense", "Apartment rent", "housing", 890),
		h.seedRecurrence(ctx, "tm-utilities", "Utilities", 8, "expense", "Power and water", "utilities", 130),
	}
	return firstError(seeds)
}

// =============================================================================
// DATASET: FREELANCER
// =============================================================================

func (h *Handler) loadFreelancer(ctx context.Context) error {
	seeds := []error{
		h.seedEntry(ctx, "fl-invoice-42", "2026-07-20", "income", "Invoice #42", "consulting", 2600, engine.StatusSettled, engine.PriorityMedium),
		h.seedEntry(ctx, "fl-invoice-43", "2026-08-10", "income", "Invoice #43", "consulting", 3100, engine.StatusPending, engine.PriorityMedium),
		h.seedEntry(ctx, "fl-invoice-44", "2026-08-28", "income", "Invoice #44 (net 30)", "consulting", 1800, engine.StatusPending, engine.PriorityMedium),
		h.seedEntry(ctx, "fl-tax", "2026-08-15", "expense", "Quarterly estimated tax", "taxes", 1450, engine.StatusNone, engine.PriorityHigh),
		h.seedEntry(ctx, "fl-coworking", "2026-08-03", "expense", "Coworking desk", "workspace", 240, engine.StatusNone, engine.PriorityMedium),
		h.seedEntry(ctx, "fl-laptop", "2026-08-19", "expense", "Laptop replacement", "equipment", 1600, engine.StatusNone, engine.PriorityLow),
		h.seedRecurrence(ctx, "fl-health", "Health insurance", 10, "expense", "Private health plan", "insurance", 310),
		h.seedRecurrence(ctx, "fl-software", "Software", 2, "expense", "Design tool subscriptions", "workspace", 85),
	}
	return firstError(seeds)
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
