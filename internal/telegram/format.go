package telegram

import (
	"fmt"
	"math"
	"strings"

	"kitchen-assistant/internal/recipe"
	"kitchen-assistant/internal/reconcile"
)

func formatAmount(qty float64, unit string) string {
	q := math.Round(qty*100) / 100
	if q == math.Trunc(q) {
		return fmt.Sprintf("%d %s", int64(q), unit)
	}
	return fmt.Sprintf("%g %s", q, unit)
}

func formatRecipeMarkdown(r recipe.Recipe) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🍽 *%s*\n", r.Name))
	if r.Description != "" {
		sb.WriteString(fmt.Sprintf("_%s_\n", r.Description))
	}
	sb.WriteString(fmt.Sprintf("Serves %d\n\n", r.Servings))

	if len(r.Ingredients) > 0 {
		sb.WriteString("*Ingredients*\n")
		for _, ing := range r.Ingredients {
			sb.WriteString(fmt.Sprintf("• %s %s\n", formatAmount(ing.Quantity, ing.Unit), ing.Name))
		}
		sb.WriteString("\n")
	}

	if len(r.Instructions) > 0 {
		sb.WriteString("*Instructions*\n")
		for i, step := range r.Instructions {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
		}
	}

	sb.WriteString("\nSend `confirm` once you cooked it and I'll update your inventory.")
	return sb.String()
}

func formatReconciliationMarkdown(recipeName string, res reconcile.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ *%s* confirmed.\n", recipeName))

	if len(res.Reduced) > 0 {
		sb.WriteString("\n*Used up*\n")
		for _, item := range res.Reduced {
			sb.WriteString(fmt.Sprintf("• %s: %s left\n",
				item.Name, formatAmount(item.Remaining, string(item.Unit))))
		}
	}
	for _, name := range res.Deleted {
		sb.WriteString(fmt.Sprintf("• %s: all gone\n", name))
	}

	if len(res.ShortfallAdded) > 0 {
		sb.WriteString("\n🛒 *Added to your shopping list*\n")
		for _, item := range res.ShortfallAdded {
			sb.WriteString(fmt.Sprintf("• %s %s\n", item.QuantityDisplay, item.Name))
		}
	}

	return sb.String()
}
