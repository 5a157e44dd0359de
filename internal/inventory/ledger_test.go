package inventory

import (
	"context"
	"testing"

	"kitchen-assistant/internal/units"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger() *Ledger {
	return NewLedger(NewMemoryStore(), nil)
}

func TestAddCreatesAndAccumulates(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	e, err := l.Add(ctx, "u1", "  Tomatoes ", 2, "kg")
	require.NoError(t, err)
	assert.Equal(t, "tomatoes", e.Name)
	assert.Equal(t, units.Kilogram, e.Unit)
	assert.Equal(t, 2.0, e.Quantity)

	// Same unit: plain accumulation.
	e, err = l.Add(ctx, "u1", "tomatoes", 3, "kg")
	require.NoError(t, err)
	assert.Equal(t, 5.0, e.Quantity)

	// Compatible unit: converted into the stored unit.
	e, err = l.Add(ctx, "u1", "tomatoes", 500, "grams")
	require.NoError(t, err)
	assert.InDelta(t, 5.5, e.Quantity, 1e-9)
	assert.Equal(t, units.Kilogram, e.Unit)
}

func TestAddFuzzyMatchesSurfaceVariants(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	_, err := l.Add(ctx, "u1", "tomato", 1, "kg")
	require.NoError(t, err)

	// Plural variant merges into the existing entry.
	e, err := l.Add(ctx, "u1", "Tomatoes", 1, "kg")
	require.NoError(t, err)
	assert.Equal(t, "tomato", e.Name)
	assert.Equal(t, 2.0, e.Quantity)

	// An unrelated item does not merge.
	e, err = l.Add(ctx, "u1", "potato flour", 1, "kg")
	require.NoError(t, err)
	assert.Equal(t, "potato flour", e.Name)

	snapshot, err := l.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, snapshot, 2)
}

func TestAddUnitClassMismatchKeepsDistinctEntry(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	_, err := l.Add(ctx, "u1", "rice", 2, "bags")
	require.NoError(t, err)

	e, err := l.Add(ctx, "u1", "rice", 500, "g")
	require.NoError(t, err)
	assert.Equal(t, "rice (g)", e.Name)
	assert.Equal(t, units.Gram, e.Unit)
	assert.Equal(t, 500.0, e.Quantity)

	// The original count entry is untouched.
	snapshot, err := l.Snapshot(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, snapshot, 2)

	// Repeating the mismatched add accumulates into the distinct entry.
	e, err = l.Add(ctx, "u1", "rice", 250, "g")
	require.NoError(t, err)
	assert.Equal(t, 750.0, e.Quantity)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	_, err := l.Add(ctx, "u1", "", 1, "kg")
	assert.Error(t, err)

	_, err = l.Add(ctx, "u1", "milk", 0, "l")
	assert.Error(t, err)

	_, err = l.Add(ctx, "u1", "milk", -2, "l")
	assert.Error(t, err)
}

func TestReduceDeletesAtZeroAndBelow(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	_, err := l.Add(ctx, "u1", "paneer", 300, "g")
	require.NoError(t, err)

	// Reducing by the full stored quantity deletes the entry.
	qty := 300.0
	out, err := l.Reduce(ctx, "u1", "paneer", &qty, "g")
	require.NoError(t, err)
	assert.True(t, out.Deleted)

	_, err = l.Add(ctx, "u1", "paneer", 300, "g")
	require.NoError(t, err)

	// Reducing by more than stored also deletes; never negative.
	qty = 500
	out, err = l.Reduce(ctx, "u1", "paneer", &qty, "g")
	require.NoError(t, err)
	assert.True(t, out.Deleted)

	snapshot, err := l.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}

func TestReducePartialWithConversion(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	_, err := l.Add(ctx, "u1", "cream", 250, "ml")
	require.NoError(t, err)

	qty := 0.2
	out, err := l.Reduce(ctx, "u1", "cream", &qty, "l")
	require.NoError(t, err)
	assert.False(t, out.Deleted)
	assert.InDelta(t, 50, out.Entry.Quantity, 1e-9)
	assert.Equal(t, units.Milliliter, out.Entry.Unit)
}

func TestReduceNilQuantityAlwaysDeletes(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	_, err := l.Add(ctx, "u1", "milk", 5, "l")
	require.NoError(t, err)

	out, err := l.Reduce(ctx, "u1", "milk", nil, "")
	require.NoError(t, err)
	assert.True(t, out.Deleted)
}

func TestReduceMissingItemReportsNotFound(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	qty := 1.0
	_, err := l.Reduce(ctx, "u1", "unicorn tears", &qty, "ml")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	_, err := l.Add(ctx, "u1", "milk", 1, "l")
	require.NoError(t, err)

	snapshot, err := l.Snapshot(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	qty := 1.0
	_, err = l.Reduce(ctx, "u2", "milk", &qty, "l")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("tomato", "tomato"))
	assert.Equal(t, 2, editDistance("tomato", "tomatoes"))
	assert.Equal(t, 1, editDistance("onion", "onions"))
	assert.Equal(t, 6, editDistance("", "cheese"))
}
