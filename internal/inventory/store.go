package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"kitchen-assistant/internal/units"
)

// Entry is one named quantity in an owner's inventory. Entries are unique
// per (owner, name) and are owned exclusively by the ledger.
type Entry struct {
	OwnerID   string     `json:"owner_id"`
	Name      string     `json:"name"`
	Quantity  float64    `json:"quantity"`
	Unit      units.Unit `json:"unit"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Store is the persistence collaborator for inventory entries. The ledger
// calls it as a black box; transaction and retry semantics belong to the
// implementation.
type Store interface {
	GetEntries(ctx context.Context, ownerID string) ([]Entry, error)
	UpsertEntry(ctx context.Context, e Entry) error
	DeleteEntry(ctx context.Context, ownerID, name string) error
}

// MemoryStore is an in-memory Store used in tests and by the lightweight
// no-database wiring.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]map[string]Entry // ownerID -> name -> entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]map[string]Entry)}
}

// GetEntries returns a snapshot of all entries for the given owner, sorted
// by name for determinism.
func (s *MemoryStore) GetEntries(_ context.Context, ownerID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := s.entries[ownerID]
	out := make([]Entry, 0, len(owned))
	for _, e := range owned {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpsertEntry creates or replaces the entry keyed by (owner, name).
func (s *MemoryStore) UpsertEntry(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned, ok := s.entries[e.OwnerID]
	if !ok {
		owned = make(map[string]Entry)
		s.entries[e.OwnerID] = owned
	}
	owned[e.Name] = e
	return nil
}

// DeleteEntry removes the entry keyed by (owner, name); absent entries are
// a no-op.
func (s *MemoryStore) DeleteEntry(_ context.Context, ownerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries[ownerID], name)
	return nil
}
