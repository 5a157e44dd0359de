// Package reconcile settles a confirmed recipe against the inventory:
// consumed ingredients are deducted, and anything short lands on the
// shopping list so the next store run covers it.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"kitchen-assistant/internal/inventory"
	"kitchen-assistant/internal/recipe"
	"kitchen-assistant/internal/shoppinglist"
	"kitchen-assistant/internal/units"

	"go.uber.org/zap"
)

// ReducedItem reports an ingredient that was deducted from the inventory.
type ReducedItem struct {
	Name      string     `json:"name"`
	Consumed  float64    `json:"consumed"`
	Remaining float64    `json:"remaining"`
	Unit      units.Unit `json:"unit"`
}

// Result is the outcome of confirming a meal. Every ingredient lands in
// exactly one of the three buckets.
type Result struct {
	Reduced        []ReducedItem       `json:"reduced"`
	Deleted        []string            `json:"deleted"`
	ShortfallAdded []shoppinglist.Item `json:"shortfall_added"`
}

// Reconciler applies confirmed recipes to the inventory ledger and the
// shopping list.
type Reconciler struct {
	ledger *inventory.Ledger
	list   shoppinglist.Store
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Reconciler.
func New(ledger *inventory.Ledger, list shoppinglist.Store, logger *zap.Logger) *Reconciler {
	return &Reconciler{ledger: ledger, list: list, logger: logger, now: time.Now}
}

// Confirm settles every ingredient of the recipe independently. One
// ingredient failing to settle never blocks the rest; storage errors are
// logged and that ingredient is skipped.
func (r *Reconciler) Confirm(ctx context.Context, ownerID string, rec recipe.Recipe) (Result, error) {
	var result Result

	for _, ing := range rec.Ingredients {
		if ing.Name == "" || ing.Quantity <= 0 {
			continue
		}
		if err := r.settle(ctx, ownerID, ing, &result); err != nil {
			r.logger.Error("failed to settle ingredient",
				zap.String("owner_id", ownerID),
				zap.String("ingredient", ing.Name),
				zap.Error(err))
		}
	}

	r.logger.Info("meal confirmed",
		zap.String("owner_id", ownerID),
		zap.String("recipe", rec.Name),
		zap.Int("reduced", len(result.Reduced)),
		zap.Int("deleted", len(result.Deleted)),
		zap.Int("shortfalls", len(result.ShortfallAdded)))

	return result, nil
}

func (r *Reconciler) settle(ctx context.Context, ownerID string, ing recipe.Ingredient, result *Result) error {
	needUnit := units.Normalize(ing.Unit)

	entry, found, err := r.ledger.Find(ctx, ownerID, ing.Name)
	if err != nil {
		return err
	}
	if !found {
		return r.addShortfall(ctx, ownerID, ing.Name, ing.Quantity, needUnit, result)
	}

	needed, err := units.Convert(ing.Quantity, needUnit, entry.Unit)
	if errors.Is(err, units.ErrUnitMismatch) {
		// Stored in an incomparable unit; buy the full amount rather than
		// guess at a deduction.
		r.logger.Warn("unit mismatch on confirm, adding to shopping list",
			zap.String("owner_id", ownerID),
			zap.String("ingredient", ing.Name),
			zap.String("stored_unit", string(entry.Unit)),
			zap.String("needed_unit", string(needUnit)))
		return r.addShortfall(ctx, ownerID, ing.Name, ing.Quantity, needUnit, result)
	}
	if err != nil {
		return err
	}

	if entry.Quantity < needed {
		shortfall := math.Round((needed-entry.Quantity)*100) / 100
		if err := r.addShortfall(ctx, ownerID, entry.Name, shortfall, entry.Unit, result); err != nil {
			return err
		}
	}

	outcome, err := r.ledger.Reduce(ctx, ownerID, entry.Name, &needed, string(entry.Unit))
	if errors.Is(err, inventory.ErrNotFound) {
		// Raced with a concurrent removal; the shortfall path already
		// covered what we could not deduct.
		return nil
	}
	if err != nil {
		return err
	}

	if outcome.Deleted {
		result.Deleted = append(result.Deleted, entry.Name)
		return nil
	}

	result.Reduced = append(result.Reduced, ReducedItem{
		Name:      entry.Name,
		Consumed:  math.Round(needed*100) / 100,
		Remaining: outcome.Entry.Quantity,
		Unit:      entry.Unit,
	})
	return nil
}

func (r *Reconciler) addShortfall(ctx context.Context, ownerID, name string, qty float64, unit units.Unit, result *Result) error {
	item := shoppinglist.Item{
		OwnerID:         ownerID,
		Name:            name,
		QuantityDisplay: formatQuantity(qty, unit),
		CreatedAt:       r.now(),
	}
	id, err := r.list.Insert(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to add shopping list item: %w", err)
	}
	item.ID = id
	result.ShortfallAdded = append(result.ShortfallAdded, item)
	return nil
}

func formatQuantity(qty float64, unit units.Unit) string {
	q := math.Round(qty*100) / 100
	if q == math.Trunc(q) {
		return fmt.Sprintf("%d %s", int64(q), unit)
	}
	return fmt.Sprintf("%g %s", q, unit)
}
