/*
handlers.go - HTTP API handlers for the cash-flow projection service

PURPOSE:
  Exposes the projection engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Entries:
    GET    /api/entries?owner_id=      List ledger entries
    POST   /api/entries                Record entry
    DELETE /api/entries/{id}           Delete entry

  Recurrences:
    GET    /api/recurrences?owner_id=  List templates
    POST   /api/recurrences            Create template
    DELETE /api/recurrences/{id}       Delete template

  Projection:
    POST   /api/projection             Run the engine
    GET    /api/summary                Period totals (no simulation)

  Scenarios:
    GET    /api/scenarios?owner_id=    List saved scenarios
    POST   /api/scenarios              Save scenario
    GET    /api/scenarios/{id}         Fetch one
    DELETE /api/scenarios/{id}         Delete

  Datasets:
    GET    /api/datasets               List demo datasets
    POST   /api/datasets/load          Reset + seed a demo dataset

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (store, projector)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. Owner scoping is by the
  owner_id parameter only. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - datasets.go: Demo dataset loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fluxo/cashflow-engine/engine"
	"github.com/fluxo/cashflow-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Projector *engine.Projector
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:     store,
		Projector: &engine.Projector{Entries: store, Recurrences: store},
	}
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns all entries for an owner.
// GET /api/entries?owner_id=
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required", nil)
		return
	}

	entries, err := h.Store.EntriesByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEntry records a new ledger entry.
// POST /api/entries
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required", nil)
		return
	}
	date, ok := engine.ParseDate(req.Date)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", nil)
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive", nil)
		return
	}

	entry := engine.LedgerEntry{
		ID:          uuid.NewString(),
		OwnerID:     req.OwnerID,
		Date:        date,
		Direction:   engine.ParseDirection(req.Direction),
		Description: req.Description,
		Category:    req.Category,
		Amount:      decimal.NewFromFloat(req.Amount),
		Status:      engine.Status(req.Status),
		Priority:    engine.ParsePriority(req.Priority),
	}
	if req.SettledAt != "" {
		settled, ok := engine.ParseDate(req.SettledAt)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid settled_at format (use YYYY-MM-DD)", nil)
			return
		}
		entry.SettledAt = &settled
	}

	if err := h.Store.SaveEntry(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// DeleteEntry removes a ledger entry.
// DELETE /api/entries/{id}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteEntry(r.Context(), id); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Entry not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// =============================================================================
// RECURRENCE HANDLERS
// =============================================================================

// ListRecurrences returns all templates for an owner, enabled or not.
// GET /api/recurrences?owner_id=
func (h *Handler) ListRecurrences(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required", nil)
		return
	}

	templates, err := h.Store.ListRecurrences(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recurrences", err)
		return
	}

	dtos := make([]RecurrenceDTO, 0, len(templates))
	for _, tpl := range templates {
		dtos = append(dtos, toRecurrenceDTO(tpl))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRecurrence creates a recurrence template.
// POST /api/recurrences
func (h *Handler) CreateRecurrence(w http.ResponseWriter, r *http.Request) {
	var req CreateRecurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required", nil)
		return
	}
	if req.DayOfMonth < 1 || req.DayOfMonth > 31 {
		writeError(w, http.StatusBadRequest, "day_of_month must be between 1 and 31", nil)
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive", nil)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	tpl := engine.RecurrenceTemplate{
		ID:          uuid.NewString(),
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Enabled:     enabled,
		DayOfMonth:  req.DayOfMonth,
		Direction:   engine.ParseDirection(req.Direction),
		Description: req.Description,
		Category:    req.Category,
		Amount:      decimal.NewFromFloat(req.Amount),
		Status:      engine.Status(req.Status),
		Method:      req.Method,
	}

	if err := h.Store.SaveRecurrence(r.Context(), tpl); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save recurrence", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurrenceDTO(tpl))
}

// DeleteRecurrence removes a recurrence template.
// DELETE /api/recurrences/{id}
func (h *Handler) DeleteRecurrence(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteRecurrence(r.Context(), id); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recurrence not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete recurrence", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// =============================================================================
// PROJECTION
// =============================================================================

// RunProjection runs the two-pass simulation and returns the full result.
// POST /api/projection
func (h *Handler) RunProjection(w http.ResponseWriter, r *http.Request) {
	var req ProjectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required", nil)
		return
	}
	start, ok := engine.ParseDate(req.Start)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", nil)
		return
	}
	end, ok := engine.ParseDate(req.End)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", nil)
		return
	}
	// The engine assumes a well-formed range; normalize an inverted one here.
	if end.Before(start) {
		start, end = end, start
	}

	overrides := req.Overrides
	if overrides == nil && req.ScenarioID != "" {
		rec, err := h.Store.GetScenario(r.Context(), req.ScenarioID)
		if err != nil {
			if errors.Is(err, sqlite.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Scenario not found", nil)
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
			return
		}
		var saved engine.ScenarioOverrides
		if err := json.Unmarshal([]byte(rec.DataJSON), &saved); err != nil {
			writeError(w, http.StatusInternalServerError, "Saved scenario is corrupted", err)
			return
		}
		overrides = &saved
	}

	result, err := h.Projector.Project(r.Context(), engine.ProjectionInput{
		OwnerID:          req.OwnerID,
		Start:            start,
		End:              end,
		Mode:             engine.ParseMode(req.Mode),
		IncludeRecurring: req.IncludeRecurring,
		ReserveMin:       decimal.NewFromFloat(req.ReserveMin),
		Overrides:        overrides,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Projection failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetSummary returns plain window totals with no simulation.
// GET /api/summary?owner_id=&start=&end=
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ownerID := q.Get("owner_id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required", nil)
		return
	}
	start, ok := engine.ParseDate(q.Get("start"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", nil)
		return
	}
	end, ok := engine.ParseDate(q.Get("end"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", nil)
		return
	}
	if end.Before(start) {
		start, end = end, start
	}

	entries, err := h.Store.EntriesByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load entries", err)
		return
	}
	writeJSON(w, http.StatusOK, engine.SummarizePeriod(entries, start, end))
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns all saved scenarios for an owner.
// GET /api/scenarios?owner_id=
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required", nil)
		return
	}

	records, err := h.Store.ListScenarios(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list scenarios", err)
		return
	}

	dtos := make([]ScenarioDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toScenarioDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveScenario creates or updates a saved scenario.
// POST /api/scenarios
func (h *Handler) SaveScenario(w http.ResponseWriter, r *http.Request) {
	var req SaveScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required", nil)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	data := "{}"
	if len(req.Overrides) > 0 {
		// The bundle must at least be an object; directive-level leniency
		// is the engine's concern.
		var probe engine.ScenarioOverrides
		if err := json.Unmarshal(req.Overrides, &probe); err != nil {
			writeError(w, http.StatusBadRequest, "overrides must be a JSON object", err)
			return
		}
		data = string(req.Overrides)
	}

	created := false
	id := req.ID
	if id == "" {
		id = uuid.NewString()
		created = true
	}
	rec := sqlite.ScenarioRecord{
		ID:       id,
		OwnerID:  req.OwnerID,
		Name:     req.Name,
		DataJSON: data,
	}
	if err := h.Store.SaveScenario(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save scenario", err)
		return
	}

	saved, err := h.Store.GetScenario(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load saved scenario", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toScenarioDTO(*saved))
}

// GetScenario returns one saved scenario.
// GET /api/scenarios/{id}
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.Store.GetScenario(r.Context(), id)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Scenario not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, toScenarioDTO(*rec))
}

// DeleteScenario removes a saved scenario.
// DELETE /api/scenarios/{id}
func (h *Handler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteScenario(r.Context(), id); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Scenario not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
