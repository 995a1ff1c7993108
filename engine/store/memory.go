// Package store provides in-memory reader implementations for tests and demos.
package store

import (
	"context"
	"sync"

	"github.com/fluxo/cashflow-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	entries     map[string][]engine.LedgerEntry        // by owner
	recurrences map[string][]engine.RecurrenceTemplate // by owner
}

func NewMemory() *Memory {
	return &Memory{
		entries:     make(map[string][]engine.LedgerEntry),
		recurrences: make(map[string][]engine.RecurrenceTemplate),
	}
}

// AddEntry records a ledger entry. Insertion order is preserved, which
// keeps projections over the store deterministic.
func (m *Memory) AddEntry(e engine.LedgerEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.OwnerID] = append(m.entries[e.OwnerID], e)
}

// AddRecurrence records a recurrence template.
func (m *Memory) AddRecurrence(r engine.RecurrenceTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recurrences[r.OwnerID] = append(m.recurrences[r.OwnerID], r)
}

// EntriesByOwner implements engine.EntryReader.
func (m *Memory) EntriesByOwner(_ context.Context, ownerID string) ([]engine.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]engine.LedgerEntry, len(m.entries[ownerID]))
	copy(result, m.entries[ownerID])
	return result, nil
}

// EnabledTemplates implements engine.RecurrenceReader.
func (m *Memory) EnabledTemplates(_ context.Context, ownerID string) ([]engine.RecurrenceTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []engine.RecurrenceTemplate
	for _, r := range m.recurrences[ownerID] {
		if r.Enabled {
			result = append(result, r)
		}
	}
	return result, nil
}
