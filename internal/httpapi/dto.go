package httpapi

import "kitchen-assistant/internal/recipe"

type addItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Unit     string  `json:"unit"`
}

type removeItemRequest struct {
	Name string `json:"name" binding:"required"`
	// Quantity omitted removes the entry entirely.
	Quantity *float64 `json:"quantity" binding:"omitempty,gt=0"`
	Unit     string   `json:"unit"`
}

type generateRecipeRequest struct {
	DishName    string `json:"dish_name"`
	Preferences string `json:"preferences"`
	Servings    int    `json:"servings" binding:"omitempty,gt=0"`
	Mode        string `json:"mode" binding:"omitempty,oneof=strict flexible"`
}

type confirmRequest struct {
	Recipe recipe.Recipe `json:"recipe" binding:"required"`
}

type safetyCheckRequest struct {
	Text string `json:"text" binding:"required"`
}

type checkItemRequest struct {
	Checked bool `json:"checked"`
}

type errorResponse struct {
	Error string `json:"error"`
}
