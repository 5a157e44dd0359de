// Package units maintains the canonical unit table and conversion
// arithmetic used by the inventory ledger and the reconciler.
package units

import (
	"errors"
	"strings"
)

// Class partitions canonical units into compatibility classes. Conversion
// is only defined within a class; atomic units convert to nothing but
// themselves.
type Class int

const (
	ClassMass Class = iota
	ClassVolume
	ClassCount
	ClassAtomic
)

// Unit is a canonical unit token. All surface unit strings normalize into
// one of the constants below.
type Unit string

const (
	// Mass, base gram.
	Gram     Unit = "g"
	Kilogram Unit = "kg"
	Ounce    Unit = "oz"
	Pound    Unit = "lb"

	// Volume, base milliliter.
	Milliliter Unit = "ml"
	Liter      Unit = "l"
	Cup        Unit = "cup"
	Tablespoon Unit = "tbsp"
	Teaspoon   Unit = "tsp"

	// Count, base piece. Container tokens (bag, box, pack...) normalize
	// into this class.
	Piece  Unit = "piece"
	Dozen  Unit = "dozen"
	Bottle Unit = "bottle"
	Can    Unit = "can"
	Bag    Unit = "bag"
	Box    Unit = "box"
	Pack   Unit = "pack"

	// Atomic units. Not convertible to anything else.
	Head  Unit = "head"
	Loaf  Unit = "loaf"
	Clove Unit = "clove"
	Bunch Unit = "bunch"
)

// ErrUnitMismatch reports a conversion across incompatible classes or
// involving an atomic unit. Callers treat it as "keep as distinct entries",
// never as a fatal error.
var ErrUnitMismatch = errors.New("units belong to incompatible classes")

type unitInfo struct {
	class Class
	// factor converts a quantity of this unit into the class base unit.
	factor float64
}

var table = map[Unit]unitInfo{
	Gram:     {ClassMass, 1},
	Kilogram: {ClassMass, 1000},
	Ounce:    {ClassMass, 28.3495},
	Pound:    {ClassMass, 453.592},

	Milliliter: {ClassVolume, 1},
	Liter:      {ClassVolume, 1000},
	Cup:        {ClassVolume, 236.588},
	Tablespoon: {ClassVolume, 14.7868},
	Teaspoon:   {ClassVolume, 4.92892},

	Piece:  {ClassCount, 1},
	Dozen:  {ClassCount, 12},
	Bottle: {ClassCount, 1},
	Can:    {ClassCount, 1},
	Bag:    {ClassCount, 1},
	Box:    {ClassCount, 1},
	Pack:   {ClassCount, 1},

	Head:  {ClassAtomic, 1},
	Loaf:  {ClassAtomic, 1},
	Clove: {ClassAtomic, 1},
	Bunch: {ClassAtomic, 1},
}

// aliases maps surface tokens (abbreviations, plurals, synonyms) onto
// canonical units. Canonical tokens map to themselves via the table above,
// so they do not need entries here.
var aliases = map[string]Unit{
	"gram": Gram, "grams": Gram, "gs": Gram, "gr": Gram,
	"kilogram": Kilogram, "kilograms": Kilogram, "kgs": Kilogram, "kilo": Kilogram, "kilos": Kilogram,
	"ounce": Ounce, "ounces": Ounce, "ozs": Ounce,
	"pound": Pound, "pounds": Pound, "lbs": Pound,

	"milliliter": Milliliter, "milliliters": Milliliter, "millilitre": Milliliter, "millilitres": Milliliter, "mls": Milliliter,
	"liter": Liter, "liters": Liter, "litre": Liter, "litres": Liter,
	"cups": Cup, "cupful": Cup, "cupfuls": Cup,
	"tablespoon": Tablespoon, "tablespoons": Tablespoon, "tbsps": Tablespoon,
	"teaspoon": Teaspoon, "teaspoons": Teaspoon, "tsps": Teaspoon,

	"pieces": Piece, "pc": Piece, "pcs": Piece,
	"item": Piece, "items": Piece, "unit": Piece, "units": Piece,
	"dozens": Dozen,
	"bottles": Bottle, "cans": Can, "bags": Bag, "boxes": Box,
	"packs": Pack, "package": Pack, "packages": Pack,

	"heads": Head, "loaves": Loaf, "cloves": Clove, "bunches": Bunch,
}

// Normalize maps a raw unit token onto its canonical unit. Unknown tokens
// fall back to the generic count unit so inventory keeps working when the
// LLM or the user supplies a novel unit string.
func Normalize(raw string) Unit {
	token := strings.ToLower(strings.TrimSpace(raw))
	token = strings.TrimSuffix(token, ".")
	if token == "" {
		return Piece
	}
	if _, ok := table[Unit(token)]; ok {
		return Unit(token)
	}
	if u, ok := aliases[token]; ok {
		return u
	}
	return Piece
}

// ClassOf returns the compatibility class of a canonical unit. Units not in
// the table (which Normalize never produces) are treated as count.
func ClassOf(u Unit) Class {
	if info, ok := table[u]; ok {
		return info.class
	}
	return ClassCount
}

// Convertible reports whether quantities of the two units can be merged.
func Convertible(from, to Unit) bool {
	if from == to {
		return true
	}
	fi, ok := table[from]
	if !ok {
		return false
	}
	ti, ok := table[to]
	if !ok {
		return false
	}
	if fi.class != ti.class {
		return false
	}
	// Atomic units only convert to themselves.
	return fi.class != ClassAtomic
}

// Convert converts a quantity between two canonical units of the same
// class. It returns ErrUnitMismatch for cross-class conversions and for
// atomic units.
func Convert(qty float64, from, to Unit) (float64, error) {
	if from == to {
		return qty, nil
	}
	if !Convertible(from, to) {
		return 0, ErrUnitMismatch
	}
	base := qty * table[from].factor
	return base / table[to].factor, nil
}
