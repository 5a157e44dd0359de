package recipe

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"kitchen-assistant/internal/inventory"

	"github.com/google/uuid"
)

// fallbackRecipe builds a recipe deterministically from the largest
// inventory entries when the model is unavailable or returns garbage.
func fallbackRecipe(entries []inventory.Entry, servings int) Recipe {
	picked := make([]inventory.Entry, len(entries))
	copy(picked, entries)
	sort.Slice(picked, func(i, j int) bool {
		if picked[i].Quantity != picked[j].Quantity {
			return picked[i].Quantity > picked[j].Quantity
		}
		return picked[i].Name < picked[j].Name
	})
	if len(picked) > 3 {
		picked = picked[:3]
	}

	names := make([]string, len(picked))
	ingredients := make([]Ingredient, len(picked))
	for i, e := range picked {
		names[i] = e.Name
		// Use half of what is on hand so the pantry survives the meal.
		qty := math.Round(e.Quantity/2*100) / 100
		if qty <= 0 {
			qty = e.Quantity
		}
		ingredients[i] = Ingredient{Name: e.Name, Quantity: qty, Unit: string(e.Unit)}
	}

	name := fmt.Sprintf("Mixed %s dish", strings.Join(names, ", "))
	return Recipe{
		ID:          uuid.New(),
		Name:        name,
		Description: "A simple dish combining what you have on hand.",
		Servings:    servings,
		Ingredients: ingredients,
		Instructions: []string{
			"Prepare and measure the listed ingredients.",
			"Combine them in a pan over medium heat and cook until done.",
			"Season to taste and serve.",
		},
	}
}

// refusalRecipe is returned when a generated recipe fails the content
// check. It carries no ingredients so confirming it changes nothing.
func refusalRecipe(servings int) Recipe {
	return Recipe{
		ID:          uuid.New(),
		Name:        "Recipe Not Available",
		Description: "I don't have access to recipes involving restricted or unsafe food items. I can help you find delicious and safe recipes using commonly available ingredients instead.",
		Servings:    servings,
		Ingredients: []Ingredient{},
		Instructions: []string{
			"I'm unable to provide recipes for restricted or unsafe food items.",
			"Would you like me to suggest an alternative recipe using safe ingredients?",
		},
	}
}
