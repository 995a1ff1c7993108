/*
Package sqlite provides the SQLite-backed store for ledger data.

PURPOSE:
  Implements the engine's reader interfaces (engine.EntryReader,
  engine.RecurrenceReader) plus the write surface the API layer needs:
  ledger entries, recurrence templates and saved projection scenarios.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  entries:     Recorded transactions (the external ledger)
  recurrences: Recurring-transaction templates
  scenarios:   Saved override bundles (JSON), named per owner

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/cashflow.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  projector := &engine.Projector{Entries: store, Recurrences: store}

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/ledger.go: Reader interface definitions
  - engine/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fluxo/cashflow-engine/engine"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a referenced record doesn't exist.
var ErrNotFound = errors.New("record not found")

// Store implements the reader interfaces and the write surface using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Ledger entries (the engine's read-only input)
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		date TEXT NOT NULL,
		direction TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'other',
		amount TEXT NOT NULL,
		status TEXT,
		settled_at TEXT,
		priority TEXT NOT NULL DEFAULT 'medium',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_owner
		ON entries(owner_id);
	CREATE INDEX IF NOT EXISTS idx_entries_owner_date
		ON entries(owner_id, date);

	-- Recurrence templates
	CREATE TABLE IF NOT EXISTS recurrences (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		day_of_month INTEGER NOT NULL DEFAULT 1,
		direction TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'other',
		amount TEXT NOT NULL,
		status TEXT,
		method TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_recurrences_owner
		ON recurrences(owner_id);
	CREATE INDEX IF NOT EXISTS idx_recurrences_owner_enabled
		ON recurrences(owner_id, enabled);

	-- Saved projection scenarios (override bundles as JSON)
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		data_json TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scenarios_owner
		ON scenarios(owner_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset clears all data. Only used by demo dataset loaders.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"entries", "recurrences", "scenarios"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// ENTRIES
// =============================================================================

// SaveEntry inserts or replaces a ledger entry.
func (s *Store) SaveEntry(ctx context.Context, e engine.LedgerEntry) error {
	var settledAt sql.NullString
	if e.SettledAt != nil {
		settledAt = sql.NullString{String: e.SettledAt.String(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO entries
			(id, owner_id, date, direction, description, category, amount, status, settled_at, priority, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.Date.String(), string(e.Direction), e.Description,
		engine.NormalizeCategory(e.Category), e.Amount.String(),
		nullable(string(e.Status)), settledAt, string(e.Priority),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	return nil
}

// DeleteEntry removes a ledger entry by id.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// EntriesByOwner implements engine.EntryReader. Ordered by date then id so
// projections over the store are deterministic.
func (s *Store) EntriesByOwner(ctx context.Context, ownerID string) ([]engine.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, date, direction, description, category, amount, status, settled_at, priority
		FROM entries
		WHERE owner_id = ?
		ORDER BY date, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	defer rows.Close()

	var entries []engine.LedgerEntry
	for rows.Next() {
		var (
			e         engine.LedgerEntry
			date      string
			direction string
			amount    string
			status    sql.NullString
			settledAt sql.NullString
			priority  string
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &date, &direction, &e.Description, &e.Category, &amount, &status, &settledAt, &priority); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Date, _ = engine.ParseDate(date)
		e.Direction = engine.ParseDirection(direction)
		e.Amount = parseAmount(amount)
		if status.Valid {
			e.Status = engine.Status(status.String)
		}
		if settledAt.Valid {
			if d, ok := engine.ParseDate(settledAt.String); ok {
				e.SettledAt = &d
			}
		}
		e.Priority = engine.ParsePriority(priority)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// RECURRENCES
// =============================================================================

// SaveRecurrence inserts or replaces a recurrence template.
func (s *Store) SaveRecurrence(ctx context.Context, r engine.RecurrenceTemplate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO recurrences
			(id, owner_id, name, enabled, day_of_month, direction, description, category, amount, status, method, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OwnerID, r.Name, r.Enabled, r.DayOfMonth, string(r.Direction),
		r.Description, engine.NormalizeCategory(r.Category), r.Amount.String(),
		nullable(string(r.Status)), nullable(r.Method),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save recurrence: %w", err)
	}
	return nil
}

// ListRecurrences returns all templates for an owner, enabled or not.
func (s *Store) ListRecurrences(ctx context.Context, ownerID string) ([]engine.RecurrenceTemplate, error) {
	return s.queryRecurrences(ctx, `
		SELECT id, owner_id, name, enabled, day_of_month, direction, description, category, amount, status, method
		FROM recurrences
		WHERE owner_id = ?
		ORDER BY name, id`, ownerID)
}

// EnabledTemplates implements engine.RecurrenceReader.
func (s *Store) EnabledTemplates(ctx context.Context, ownerID string) ([]engine.RecurrenceTemplate, error) {
	return s.queryRecurrences(ctx, `
		SELECT id, owner_id, name, enabled, day_of_month, direction, description, category, amount, status, method
		FROM recurrences
		WHERE owner_id = ? AND enabled = TRUE
		ORDER BY name, id`, ownerID)
}

func (s *Store) queryRecurrences(ctx context.Context, query string, args ...any) ([]engine.RecurrenceTemplate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurrences: %w", err)
	}
	defer rows.Close()

	var templates []engine.RecurrenceTemplate
	for rows.Next() {
		var (
			r         engine.RecurrenceTemplate
			direction string
			amount    string
			status    sql.NullString
			method    sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Enabled, &r.DayOfMonth, &direction, &r.Description, &r.Category, &amount, &status, &method); err != nil {
			return nil, fmt.Errorf("failed to scan recurrence: %w", err)
		}
		r.Direction = engine.ParseDirection(direction)
		r.Amount = parseAmount(amount)
		if status.Valid {
			r.Status = engine.Status(status.String)
		}
		r.Method = method.String
		templates = append(templates, r)
	}
	return templates, rows.Err()
}

// DeleteRecurrence removes a recurrence template by id.
func (s *Store) DeleteRecurrence(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recurrences WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recurrence: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// SCENARIOS - Saved override bundles
// =============================================================================

// ScenarioRecord is a named override bundle persisted per owner. The bundle
// itself stays JSON text; parsing it is the engine's lenient concern.
type ScenarioRecord struct {
	ID        string
	OwnerID   string
	Name      string
	DataJSON  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveScenario inserts or updates a saved scenario.
func (s *Store) SaveScenario(ctx context.Context, rec ScenarioRecord) error {
	now := time.Now().UTC().Format(time.RFC3339)
	created := now
	if !rec.CreatedAt.IsZero() {
		created = rec.CreatedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scenarios (id, owner_id, name, data_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			data_json = excluded.data_json,
			updated_at = excluded.updated_at`,
		rec.ID, rec.OwnerID, rec.Name, rec.DataJSON, created, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}
	return nil
}

// GetScenario fetches one saved scenario by id.
func (s *Store) GetScenario(ctx context.Context, id string) (*ScenarioRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, data_json, created_at, updated_at
		FROM scenarios WHERE id = ?`, id)

	var (
		rec                  ScenarioRecord
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Name, &rec.DataJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &rec, nil
}

// ListScenarios returns all saved scenarios for an owner, most recent first.
func (s *Store) ListScenarios(ctx context.Context, ownerID string) ([]ScenarioRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, data_json, created_at, updated_at
		FROM scenarios WHERE owner_id = ?
		ORDER BY updated_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios: %w", err)
	}
	defer rows.Close()

	var records []ScenarioRecord
	for rows.Next() {
		var (
			rec                  ScenarioRecord
			createdAt, updatedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Name, &rec.DataJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteScenario removes a saved scenario by id.
func (s *Store) DeleteScenario(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// parseAmount reads a stored decimal, falling back to zero on corruption.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
