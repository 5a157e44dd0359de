// Package command routes the assistant's operations through a single
// validated entry point shared by every front end.
package command

import (
	"kitchen-assistant/internal/recipe"
)

// Command is one assistant operation. The set of commands is closed; new
// operations add a type here and a case to the Router.
type Command interface {
	isCommand()
}

// AddCommand puts a quantity of an item into the inventory.
type AddCommand struct {
	OwnerID  string  `validate:"required"`
	Name     string  `validate:"required"`
	Quantity float64 `validate:"required,gt=0"`
	Unit     string
}

// RemoveCommand takes a quantity of an item out of the inventory. A nil
// Quantity removes the entry entirely.
type RemoveCommand struct {
	OwnerID  string   `validate:"required"`
	Name     string   `validate:"required"`
	Quantity *float64 `validate:"omitempty,gt=0"`
	Unit     string
}

// GenerateRecipeCommand asks for a recipe suggestion.
type GenerateRecipeCommand struct {
	OwnerID string `validate:"required"`
	Intent  recipe.Intent
}

// ConfirmCommand settles a cooked recipe against the inventory.
type ConfirmCommand struct {
	OwnerID string        `validate:"required"`
	Recipe  recipe.Recipe `validate:"required"`
}

func (AddCommand) isCommand()            {}
func (RemoveCommand) isCommand()         {}
func (GenerateRecipeCommand) isCommand() {}
func (ConfirmCommand) isCommand()        {}
