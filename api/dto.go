/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Entries:
    EntryDTO, CreateEntryRequest

  Recurrences:
    RecurrenceDTO, CreateRecurrenceRequest

  Projection:
    ProjectionRequest (the engine's SimulationResult serializes as-is)

  Scenarios:
    ScenarioDTO, SaveScenarioRequest

  Datasets:
    DatasetDTO, LoadDatasetRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - datasets.go: Demo dataset loaders
*/
package api

import (
	"encoding/json"

	"github.com/fluxo/cashflow-engine/engine"
	"github.com/fluxo/cashflow-engine/store/sqlite"
)

// =============================================================================
// ENTRIES
// =============================================================================

// EntryDTO represents a ledger entry in API responses.
type EntryDTO struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"owner_id"`
	Date        string  `json:"date"`
	Direction   string  `json:"direction"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status,omitempty"`
	SettledAt   *string `json:"settled_at,omitempty"`
	Priority    string  `json:"priority"`
}

// CreateEntryRequest is the request to record a ledger entry.
type CreateEntryRequest struct {
	OwnerID     string  `json:"owner_id"`
	Date        string  `json:"date"`
	Direction   string  `json:"direction"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status,omitempty"`
	SettledAt   string  `json:"settled_at,omitempty"`
	Priority    string  `json:"priority,omitempty"`
}

func toEntryDTO(e engine.LedgerEntry) EntryDTO {
	dto := EntryDTO{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		Date:        e.Date.String(),
		Direction:   string(e.Direction),
		Description: e.Description,
		Category:    e.Category,
		Amount:      e.Amount.InexactFloat64(),
		Status:      string(e.Status),
		Priority:    string(e.Priority),
	}
	if e.SettledAt != nil {
		s := e.SettledAt.String()
		dto.SettledAt = &s
	}
	return dto
}

// =============================================================================
// RECURRENCES
// =============================================================================

// RecurrenceDTO represents a recurrence template in API responses.
type RecurrenceDTO struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"owner_id"`
	Name        string  `json:"name"`
	Enabled     bool    `json:"enabled"`
	DayOfMonth  int     `json:"day_of_month"`
	Direction   string  `json:"direction"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status,omitempty"`
	Method      string  `json:"method,omitempty"`
}

// CreateRecurrenceRequest is the request to create a recurrence template.
type CreateRecurrenceRequest struct {
	OwnerID     string  `json:"owner_id"`
	Name        string  `json:"name"`
	Enabled     *bool   `json:"enabled,omitempty"` // default true
	DayOfMonth  int     `json:"day_of_month"`
	Direction   string  `json:"direction"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status,omitempty"`
	Method      string  `json:"method,omitempty"`
}

func toRecurrenceDTO(r engine.RecurrenceTemplate) RecurrenceDTO {
	return RecurrenceDTO{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Enabled:     r.Enabled,
		DayOfMonth:  r.DayOfMonth,
		Direction:   string(r.Direction),
		Description: r.Description,
		Category:    r.Category,
		Amount:      r.Amount.InexactFloat64(),
		Status:      string(r.Status),
		Method:      r.Method,
	}
}

// =============================================================================
// PROJECTION
// =============================================================================

// ProjectionRequest is the request to run a projection. Either an inline
// override bundle or a saved scenario id may be supplied; inline wins when
// both are present.
type ProjectionRequest struct {
	OwnerID          string                    `json:"owner_id"`
	Start            string                    `json:"start"`
	End              string                    `json:"end"`
	Mode             string                    `json:"mode,omitempty"`
	IncludeRecurring bool                      `json:"include_recurring"`
	ReserveMin       float64                   `json:"reserve_min,omitempty"`
	Overrides        *engine.ScenarioOverrides `json:"overrides,omitempty"`
	ScenarioID       string                    `json:"scenario_id,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a saved scenario in API responses. The override
// bundle is passed through as raw JSON.
type ScenarioDTO struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Name      string          `json:"name"`
	Overrides json.RawMessage `json:"overrides"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// SaveScenarioRequest creates or updates a saved scenario. An empty ID
// creates a new record.
type SaveScenarioRequest struct {
	ID        string          `json:"id,omitempty"`
	OwnerID   string          `json:"owner_id"`
	Name      string          `json:"name"`
	Overrides json.RawMessage `json:"overrides"`
}

func toScenarioDTO(rec sqlite.ScenarioRecord) ScenarioDTO {
	raw := json.RawMessage(rec.DataJSON)
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	return ScenarioDTO{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Name:      rec.Name,
		Overrides: raw,
		CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: rec.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// =============================================================================
// DATASETS
// =============================================================================

// DatasetDTO describes a loadable demo dataset.
type DatasetDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
}

// LoadDatasetRequest selects the demo dataset to load.
type LoadDatasetRequest struct {
	DatasetID string `json:"dataset_id"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
