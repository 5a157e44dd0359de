package recipe

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Mode controls how strictly a generated recipe must stick to the
// ingredients present in the inventory.
type Mode string

const (
	// ModeStrict allows only ingredients from the inventory snapshot.
	ModeStrict Mode = "strict"
	// ModeFlexible allows the model to add common extras.
	ModeFlexible Mode = "flexible"
)

// Ingredient is a single recipe line item.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Recipe is a complete dish suggestion.
type Recipe struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Servings     int          `json:"servings"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
}

// Intent describes what the user asked for.
type Intent struct {
	// DishName is an optional specific dish ("paneer butter masala").
	DishName string
	// Preferences holds free-form constraints ("vegetarian", "italian").
	Preferences string
	Servings    int
	Mode        Mode
}

func (i Intent) normalized() Intent {
	out := i
	out.DishName = strings.ToLower(strings.Join(strings.Fields(i.DishName), " "))
	out.Preferences = strings.ToLower(strings.Join(strings.Fields(i.Preferences), " "))
	if out.Servings <= 0 {
		out.Servings = 4
	}
	if out.Mode != ModeFlexible {
		out.Mode = ModeStrict
	}
	return out
}

// Scale returns a copy of r adjusted to the requested servings. Ingredient
// quantities are multiplied proportionally and rounded to two decimals.
func Scale(r Recipe, servings int) Recipe {
	if servings <= 0 || r.Servings == servings {
		return r
	}

	factor := float64(servings)
	if r.Servings > 0 {
		factor = float64(servings) / float64(r.Servings)
	}

	out := r
	out.Servings = servings
	out.Ingredients = make([]Ingredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ing.Quantity = math.Round(ing.Quantity*factor*100) / 100
		out.Ingredients[i] = ing
	}
	return out
}
