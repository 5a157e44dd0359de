package shoppinglist

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store is the persistence collaborator for shopping list rows.
type Store interface {
	Insert(ctx context.Context, item Item) (int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Item, error)
	SetChecked(ctx context.Context, ownerID string, id int64, checked bool) error
	Delete(ctx context.Context, ownerID string, id int64) error
}

// Repository persists shopping list rows in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a shopping list repository on an existing
// connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert creates a new shopping list row and returns its id.
func (r *Repository) Insert(ctx context.Context, item Item) (int64, error) {
	created := item.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_list_items (owner_id, name, quantity_display, checked, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		item.OwnerID, item.Name, item.QuantityDisplay, item.Checked, created)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shopping list item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read shopping list item id: %w", err)
	}
	return id, nil
}

// ListByOwner returns all shopping list rows for the given owner.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, quantity_display, checked, created_at
		 FROM shopping_list_items WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shopping list: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.Name, &it.QuantityDisplay, &it.Checked, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shopping list item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shopping list: %w", err)
	}
	return items, nil
}

// SetChecked toggles the checked flag on a row owned by ownerID.
func (r *Repository) SetChecked(ctx context.Context, ownerID string, id int64, checked bool) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE shopping_list_items SET checked = ? WHERE id = ? AND owner_id = ?`,
		checked, id, ownerID); err != nil {
		return fmt.Errorf("failed to update shopping list item: %w", err)
	}
	return nil
}

// Delete removes a row owned by ownerID.
func (r *Repository) Delete(ctx context.Context, ownerID string, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM shopping_list_items WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("failed to delete shopping list item: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]Item
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[int64]Item)}
}

// Insert records the item and assigns it an id.
func (s *MemoryStore) Insert(_ context.Context, item Item) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	item.ID = s.nextID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.items[item.ID] = item
	return item.ID, nil
}

// ListByOwner returns the owner's items ordered by id.
func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Item
	for _, it := range s.items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetChecked toggles the checked flag.
func (s *MemoryStore) SetChecked(_ context.Context, ownerID string, id int64, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[id]; ok && it.OwnerID == ownerID {
		it.Checked = checked
		s.items[id] = it
	}
	return nil
}

// Delete removes the item.
func (s *MemoryStore) Delete(_ context.Context, ownerID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[id]; ok && it.OwnerID == ownerID {
		delete(s.items, id)
	}
	return nil
}
