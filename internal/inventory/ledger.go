// Package inventory implements the fuzzy-matched, unit-aware ledger of
// named quantities that backs the shopping assistant.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kitchen-assistant/internal/units"

	"go.uber.org/zap"
)

// ErrNotFound reports a reduce against an item that is not in the ledger.
// Callers treat it as a reported no-op, not a fatal failure, so batch
// reconciliation can proceed past items that were never stored.
var ErrNotFound = errors.New("item not found in inventory")

// ReduceOutcome describes what a Reduce call did.
type ReduceOutcome struct {
	Deleted bool
	// Entry is the state after the reduction when the entry survived.
	Entry Entry
}

// Ledger owns all mutations of inventory entries. Quantities are never
// negative: a reduction to zero or below deletes the entry.
type Ledger struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewLedger creates a Ledger on top of a Store.
func NewLedger(store Store, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: store, logger: logger, now: time.Now}
}

// Add records quantity of an item, merging into an existing fuzzy-matched
// entry when the units are compatible. On a unit-class mismatch the
// quantity is kept as a distinct entry rather than silently merged.
func (l *Ledger) Add(ctx context.Context, ownerID, name string, qty float64, rawUnit string) (Entry, error) {
	if ownerID == "" {
		return Entry{}, fmt.Errorf("owner id cannot be empty")
	}
	normalized := normalizeName(name)
	if normalized == "" {
		return Entry{}, fmt.Errorf("item name cannot be empty")
	}
	if qty <= 0 {
		return Entry{}, fmt.Errorf("quantity must be positive, got %v", qty)
	}
	unit := units.Normalize(rawUnit)

	entries, err := l.store.GetEntries(ctx, ownerID)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load inventory: %w", err)
	}

	match, ok := bestMatch(entries, normalized)
	if !ok {
		entry := Entry{
			OwnerID:   ownerID,
			Name:      normalized,
			Quantity:  qty,
			Unit:      unit,
			UpdatedAt: l.now(),
		}
		if err := l.store.UpsertEntry(ctx, entry); err != nil {
			return Entry{}, fmt.Errorf("failed to store inventory entry: %w", err)
		}
		l.logger.Info("added inventory entry",
			zap.String("owner", ownerID), zap.String("name", normalized),
			zap.Float64("quantity", qty), zap.String("unit", string(unit)))
		return entry, nil
	}

	converted, err := units.Convert(qty, unit, match.Unit)
	if errors.Is(err, units.ErrUnitMismatch) {
		// Incompatible unit classes never merge. The quantity becomes a
		// distinct entry keyed by name plus unit so the (owner, name)
		// uniqueness holds.
		distinct := Entry{
			OwnerID:   ownerID,
			Name:      fmt.Sprintf("%s (%s)", match.Name, unit),
			Quantity:  qty,
			Unit:      unit,
			UpdatedAt: l.now(),
		}
		if prev, exists := bestMatchExact(entries, distinct.Name); exists {
			distinct.Quantity += prev.Quantity
		}
		if err := l.store.UpsertEntry(ctx, distinct); err != nil {
			return Entry{}, fmt.Errorf("failed to store inventory entry: %w", err)
		}
		l.logger.Warn("unit mismatch on add, kept as distinct entry",
			zap.String("owner", ownerID), zap.String("name", match.Name),
			zap.String("stored_unit", string(match.Unit)), zap.String("incoming_unit", string(unit)))
		return distinct, nil
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to convert units: %w", err)
	}

	match.Quantity += converted
	match.UpdatedAt = l.now()
	if err := l.store.UpsertEntry(ctx, match); err != nil {
		return Entry{}, fmt.Errorf("failed to store inventory entry: %w", err)
	}
	l.logger.Info("merged inventory entry",
		zap.String("owner", ownerID), zap.String("name", match.Name),
		zap.Float64("added", converted), zap.Float64("quantity", match.Quantity),
		zap.String("unit", string(match.Unit)))
	return match, nil
}

// Reduce subtracts quantity from a fuzzy-matched entry. A nil quantity
// always deletes the entry regardless of the stored amount. A result of
// zero or below also deletes it. A missing item returns ErrNotFound.
func (l *Ledger) Reduce(ctx context.Context, ownerID, name string, qty *float64, rawUnit string) (ReduceOutcome, error) {
	normalized := normalizeName(name)
	if normalized == "" {
		return ReduceOutcome{}, fmt.Errorf("item name cannot be empty")
	}
	if qty != nil && *qty <= 0 {
		return ReduceOutcome{}, fmt.Errorf("quantity must be positive, got %v", *qty)
	}

	entries, err := l.store.GetEntries(ctx, ownerID)
	if err != nil {
		return ReduceOutcome{}, fmt.Errorf("failed to load inventory: %w", err)
	}

	match, ok := bestMatch(entries, normalized)
	if !ok {
		return ReduceOutcome{}, ErrNotFound
	}

	if qty == nil {
		if err := l.store.DeleteEntry(ctx, ownerID, match.Name); err != nil {
			return ReduceOutcome{}, fmt.Errorf("failed to delete inventory entry: %w", err)
		}
		l.logger.Info("deleted inventory entry",
			zap.String("owner", ownerID), zap.String("name", match.Name))
		return ReduceOutcome{Deleted: true}, nil
	}

	amount := *qty
	if rawUnit != "" {
		unit := units.Normalize(rawUnit)
		converted, err := units.Convert(amount, unit, match.Unit)
		if errors.Is(err, units.ErrUnitMismatch) {
			// Cannot compare across classes; interpret the amount in the
			// stored unit, matching the original assistant's behavior.
			l.logger.Warn("unit mismatch on reduce, using stored unit",
				zap.String("owner", ownerID), zap.String("name", match.Name),
				zap.String("stored_unit", string(match.Unit)), zap.String("incoming_unit", string(unit)))
		} else if err != nil {
			return ReduceOutcome{}, fmt.Errorf("failed to convert units: %w", err)
		} else {
			amount = converted
		}
	}

	remaining := match.Quantity - amount
	if remaining <= 0 {
		if err := l.store.DeleteEntry(ctx, ownerID, match.Name); err != nil {
			return ReduceOutcome{}, fmt.Errorf("failed to delete inventory entry: %w", err)
		}
		l.logger.Info("reduced inventory entry to zero",
			zap.String("owner", ownerID), zap.String("name", match.Name))
		return ReduceOutcome{Deleted: true}, nil
	}

	match.Quantity = remaining
	match.UpdatedAt = l.now()
	if err := l.store.UpsertEntry(ctx, match); err != nil {
		return ReduceOutcome{}, fmt.Errorf("failed to store inventory entry: %w", err)
	}
	l.logger.Info("reduced inventory entry",
		zap.String("owner", ownerID), zap.String("name", match.Name),
		zap.Float64("remaining", remaining), zap.String("unit", string(match.Unit)))
	return ReduceOutcome{Entry: match}, nil
}

// Find fuzzy-matches name against the owner's entries without mutating
// anything. Used by the reconciler to compute availability.
func (l *Ledger) Find(ctx context.Context, ownerID, name string) (Entry, bool, error) {
	entries, err := l.store.GetEntries(ctx, ownerID)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to load inventory: %w", err)
	}
	match, ok := bestMatch(entries, normalizeName(name))
	return match, ok, nil
}

// Snapshot returns a copy of all entries for the owner.
func (l *Ledger) Snapshot(ctx context.Context, ownerID string) ([]Entry, error) {
	entries, err := l.store.GetEntries(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// bestMatchExact finds an entry by exact normalized name.
func bestMatchExact(entries []Entry, name string) (Entry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
