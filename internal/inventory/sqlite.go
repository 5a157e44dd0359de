package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"kitchen-assistant/internal/units"
)

// SQLiteStore persists inventory entries in SQLite. Writes are serialized
// with a mutex; the core assumes no concurrent writers to the same owner's
// entry set and this store satisfies that conservatively.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore creates a SQLiteStore on an existing connection.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetEntries returns all entries for the given owner.
func (s *SQLiteStore) GetEntries(ctx context.Context, ownerID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT owner_id, name, quantity, unit, updated_at
		 FROM inventory_entries WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			unit string
			ts   time.Time
		)
		if err := rows.Scan(&e.OwnerID, &e.Name, &e.Quantity, &unit, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		e.Unit = units.Unit(unit)
		e.UpdatedAt = ts
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory entries: %w", err)
	}
	return entries, nil
}

// UpsertEntry inserts or replaces the entry keyed by (owner, name).
func (s *SQLiteStore) UpsertEntry(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO inventory_entries (owner_id, name, quantity, unit, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (owner_id, name) DO UPDATE SET
		   quantity = excluded.quantity,
		   unit = excluded.unit,
		   updated_at = excluded.updated_at`,
		e.OwnerID, e.Name, e.Quantity, string(e.Unit), e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert inventory entry: %w", err)
	}
	return nil
}

// DeleteEntry removes the entry keyed by (owner, name).
func (s *SQLiteStore) DeleteEntry(ctx context.Context, ownerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM inventory_entries WHERE owner_id = ? AND name = ?`, ownerID, name); err != nil {
		return fmt.Errorf("failed to delete inventory entry: %w", err)
	}
	return nil
}
