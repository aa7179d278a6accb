// Package store provides thread-safe, in-memory storage for the risk
// insights API.
//
// Design rationale: the reporting engine is a pure function over a
// caller-held record snapshot, so the store's only jobs are to own that
// snapshot, reject duplicate IDs, and hand out stable copies. The
// insertion-ordered slice keeps snapshots deterministic; the byEntity
// index gives O(1) per-enterprise lookups. Nothing here survives the
// process — persistence is deliberately out of scope.
package store

import (
	"errors"
	"sync"

	"aquila/risk-insights-api/internal/domain"
)

// ErrDuplicateRecord is returned when a record ID is ingested twice.
var ErrDuplicateRecord = errors.New("record already exists")

// Store is a thread-safe in-memory data store.
type Store struct {
	mu sync.RWMutex

	records  map[string]*domain.Record
	order    []string // record IDs in insertion order
	webhooks map[string]*domain.WebhookConfig

	// Secondary index: entity ID → slice of record IDs,
	// maintained on every write so reads stay fast.
	byEntity map[string][]string
}

// New creates an empty, ready-to-use Store.
func New() *Store {
	return &Store{
		records:  make(map[string]*domain.Record),
		webhooks: make(map[string]*domain.WebhookConfig),
		byEntity: make(map[string][]string),
	}
}

// ─── Records ──────────────────────────────────────────────────────────────────

// SaveRecord persists a record and updates the entity index.
// Returns ErrDuplicateRecord if the ID already exists.
func (s *Store) SaveRecord(rec *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return ErrDuplicateRecord
	}

	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	s.byEntity[rec.EntityID] = append(s.byEntity[rec.EntityID], rec.ID)
	return nil
}

// GetRecord retrieves a single record by ID.
func (s *Store) GetRecord(id string) (*domain.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// AllRecords returns a snapshot of every stored record in insertion order.
// The slice is freshly allocated; callers may filter and fold it freely.
func (s *Store) AllRecords() []*domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Record, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.records[id])
	}
	return result
}

// RecordsByEntity returns every record belonging to the given enterprise,
// in insertion order.
func (s *Store) RecordsByEntity(entityID string) []*domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byEntity[entityID]
	result := make([]*domain.Record, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.records[id])
	}
	return result
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// ─── Webhooks ─────────────────────────────────────────────────────────────────

// SaveWebhook persists a webhook configuration.
func (s *Store) SaveWebhook(wh *domain.WebhookConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhooks[wh.ID] = wh
}

// DeleteWebhook removes a webhook by ID. Returns false if not found.
func (s *Store) DeleteWebhook(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.webhooks[id]
	if exists {
		delete(s.webhooks, id)
	}
	return exists
}

// ListActiveWebhooks returns all webhooks that are currently active.
func (s *Store) ListActiveWebhooks() []*domain.WebhookConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WebhookConfig
	for _, wh := range s.webhooks {
		if wh.Active {
			result = append(result, wh)
		}
	}
	return result
}
