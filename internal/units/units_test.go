package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Unit
	}{
		{"kg", Kilogram},
		{"Kilograms", Kilogram},
		{" GRAMS ", Gram},
		{"litres", Liter},
		{"ml", Milliliter},
		{"cups", Cup},
		{"tbsp.", Tablespoon},
		{"pcs", Piece},
		{"units", Piece},
		{"packages", Pack},
		{"loaves", Loaf},
		{"cloves", Clove},
		{"", Piece},
		{"glorp", Piece}, // unknown tokens degrade to the generic count unit
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestConvertWithinClass(t *testing.T) {
	got, err := Convert(2, Kilogram, Gram)
	require.NoError(t, err)
	assert.InDelta(t, 2000, got, 1e-9)

	got, err = Convert(500, Milliliter, Liter)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-9)

	got, err = Convert(1, Cup, Milliliter)
	require.NoError(t, err)
	assert.InDelta(t, 236.588, got, 1e-6)

	got, err = Convert(2, Dozen, Piece)
	require.NoError(t, err)
	assert.InDelta(t, 24, got, 1e-9)
}

func TestConvertSameUnitIsIdentity(t *testing.T) {
	got, err := Convert(3.5, Head, Head)
	require.NoError(t, err)
	assert.Equal(t, 3.5, got)
}

func TestConvertMismatch(t *testing.T) {
	_, err := Convert(1, Gram, Milliliter)
	assert.ErrorIs(t, err, ErrUnitMismatch)

	_, err = Convert(1, Head, Piece)
	assert.ErrorIs(t, err, ErrUnitMismatch)

	_, err = Convert(1, Loaf, Gram)
	assert.ErrorIs(t, err, ErrUnitMismatch)
}

func TestClassOf(t *testing.T) {
	assert.Equal(t, ClassMass, ClassOf(Pound))
	assert.Equal(t, ClassVolume, ClassOf(Teaspoon))
	assert.Equal(t, ClassCount, ClassOf(Bag))
	assert.Equal(t, ClassAtomic, ClassOf(Clove))
}
