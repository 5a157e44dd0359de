package shoppinglist

import (
	"sort"

	"kitchen-assistant/internal/inventory"
)

// DefaultThreshold is the low-quantity threshold applied when no per-item
// threshold has been configured.
const DefaultThreshold = 1.0

// Priority ranks a restock suggestion.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Suggestion is a restock proposal for a low or empty inventory entry.
type Suggestion struct {
	Name              string   `json:"name"`
	CurrentQuantity   float64  `json:"current_quantity"`
	Unit              string   `json:"unit"`
	Threshold         float64  `json:"threshold"`
	SuggestedQuantity float64  `json:"suggested_quantity"`
	Priority          Priority `json:"priority"`
}

// Suggest scans an inventory snapshot for entries at or below their
// threshold and proposes restock quantities. High-priority (empty) items
// sort first, then by name.
func Suggest(entries []inventory.Entry, thresholds map[string]float64) []Suggestion {
	var out []Suggestion
	for _, e := range entries {
		threshold := DefaultThreshold
		if t, ok := thresholds[e.Name]; ok {
			threshold = t
		}
		if e.Quantity > threshold {
			continue
		}
		priority := PriorityMedium
		if e.Quantity == 0 {
			priority = PriorityHigh
		}
		suggested := threshold * 2
		if suggested < 3 {
			suggested = 3
		}
		out = append(out, Suggestion{
			Name:              e.Name,
			CurrentQuantity:   e.Quantity,
			Unit:              string(e.Unit),
			Threshold:         threshold,
			SuggestedQuantity: suggested,
			Priority:          priority,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority == PriorityHigh
		}
		return out[i].Name < out[j].Name
	})
	return out
}
