package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"kitchen-assistant/internal/inventory"
	"kitchen-assistant/internal/llm"
	"kitchen-assistant/internal/safety"
	"kitchen-assistant/internal/units"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReader struct {
	entries []inventory.Entry
	err     error
}

func (f fakeReader) Snapshot(context.Context, string) ([]inventory.Entry, error) {
	return f.entries, f.err
}

type fakeGenerator struct {
	content string
	err     error
	calls   int
}

func (f *fakeGenerator) GenerateContent(context.Context, string) (llm.ContentResponse, error) {
	f.calls++
	return llm.ContentResponse{Content: f.content}, f.err
}

func pantry() []inventory.Entry {
	return []inventory.Entry{
		{OwnerID: "u1", Name: "paneer", Quantity: 500, Unit: units.Gram},
		{OwnerID: "u1", Name: "cream", Quantity: 250, Unit: units.Milliliter},
		{OwnerID: "u1", Name: "rice", Quantity: 2, Unit: units.Kilogram},
	}
}

func newTestBuilder(t *testing.T, gen llm.TextGenerator, entries []inventory.Entry) *Builder {
	t.Helper()
	return NewBuilder(
		fakeReader{entries: entries},
		safety.New(zap.NewNop()),
		zap.NewNop(),
		BuilderOptions{TextGen: gen},
	)
}

const validResponse = `{
	"name": "Paneer Cream Curry",
	"description": "A rich curry.",
	"servings": 2,
	"ingredients": [
		{"name": "paneer", "quantity": 300, "unit": "g"},
		{"name": "cream", "quantity": 100, "unit": "ml"}
	],
	"instructions": ["Fry the paneer.", "Add the cream and simmer."]
}`

func TestGenerateScalesToRequestedServings(t *testing.T) {
	gen := &fakeGenerator{content: validResponse}
	b := newTestBuilder(t, gen, pantry())

	got, _, err := b.Generate(context.Background(), "u1", Intent{DishName: "paneer curry", Servings: 4})
	require.NoError(t, err)

	assert.Equal(t, 4, got.Servings)
	assert.Equal(t, 600.0, got.Ingredients[0].Quantity)
	assert.Equal(t, 200.0, got.Ingredients[1].Quantity)
	assert.NotEqual(t, uuid.Nil, got.ID)
}

func TestGenerateCacheHitRescales(t *testing.T) {
	gen := &fakeGenerator{content: validResponse}
	b := newTestBuilder(t, gen, pantry())

	first, _, err := b.Generate(context.Background(), "u1", Intent{DishName: "paneer curry", Servings: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)

	second, _, err := b.Generate(context.Background(), "u1", Intent{DishName: "Paneer  Curry", Servings: 6})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls, "second request should be served from cache")
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, 6, second.Servings)
	assert.Equal(t, 900.0, second.Ingredients[0].Quantity)
}

func TestGenerateFallbackOnModelError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	b := newTestBuilder(t, gen, pantry())

	got, _, err := b.Generate(context.Background(), "u1", Intent{Servings: 2})
	require.NoError(t, err)

	// Largest entries win: 500 paneer, 250 cream, 2 rice.
	assert.Equal(t, "Mixed paneer, cream, rice dish", got.Name)
	assert.Equal(t, 2, got.Servings)
	assert.Len(t, got.Ingredients, 3)
}

func TestGenerateFallbackOnMalformedResponse(t *testing.T) {
	gen := &fakeGenerator{content: "sorry, I can't do JSON today"}
	b := newTestBuilder(t, gen, pantry())

	got, _, err := b.Generate(context.Background(), "u1", Intent{Servings: 4})
	require.NoError(t, err)
	assert.Contains(t, got.Name, "Mixed")
}

func TestGenerateStrictGapKeepsRequestedDish(t *testing.T) {
	gen := &fakeGenerator{content: `{
		"name": "paneer butter masala",
		"description": "Your inventory does not contain butter or tomatoes, so this dish cannot be made.",
		"ingredients": [],
		"instructions": []
	}`}
	b := newTestBuilder(t, gen, pantry())

	got, _, err := b.Generate(context.Background(), "u1",
		Intent{DishName: "paneer butter masala", Servings: 4, Mode: ModeStrict})
	require.NoError(t, err)

	// The declined dish comes back under its own name, never a substitute.
	assert.Equal(t, "paneer butter masala", got.Name)
	assert.Empty(t, got.Ingredients)
	assert.Contains(t, got.Description, "cannot be made")
}

func TestGenerateBackfillsMissingName(t *testing.T) {
	nameless := `{
		"servings": 2,
		"ingredients": [{"name": "paneer", "quantity": 300, "unit": "g"}],
		"instructions": ["Fry the paneer."]
	}`

	b := newTestBuilder(t, &fakeGenerator{content: nameless}, pantry())
	got, _, err := b.Generate(context.Background(), "u1", Intent{Servings: 2})
	require.NoError(t, err)
	assert.Equal(t, "Suggested recipe", got.Name)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "paneer", got.Ingredients[0].Name)

	b = newTestBuilder(t, &fakeGenerator{content: nameless}, pantry())
	got, _, err = b.Generate(context.Background(), "u1", Intent{DishName: "Veg Pulao", Servings: 2})
	require.NoError(t, err)
	assert.Equal(t, "veg pulao", got.Name)
}

func TestBuildPromptModeInstructions(t *testing.T) {
	strict, err := buildPrompt(Intent{DishName: "Paneer Butter Masala", Servings: 4, Mode: ModeStrict}.normalized(), pantry())
	require.NoError(t, err)
	assert.Contains(t, strict, "Only use ingredients that are available")
	assert.Contains(t, strict, "keep the requested dish name")
	assert.Contains(t, strict, "- cream: 250 ml")
	assert.Contains(t, strict, "paneer butter masala")

	flexible, err := buildPrompt(Intent{Servings: 2, Mode: ModeFlexible}.normalized(), pantry())
	require.NoError(t, err)
	assert.Contains(t, flexible, "common pantry staples")
	assert.NotContains(t, flexible, "Never substitute")
}

func TestGenerateWithoutModelUsesFallback(t *testing.T) {
	b := newTestBuilder(t, nil, pantry())

	got, _, err := b.Generate(context.Background(), "u1", Intent{Servings: 4})
	require.NoError(t, err)
	assert.Contains(t, got.Name, "Mixed")
}

func TestGenerateUnsafeRequest(t *testing.T) {
	b := newTestBuilder(t, &fakeGenerator{content: validResponse}, pantry())

	_, _, err := b.Generate(context.Background(), "u1", Intent{DishName: "recipe with human meat", Servings: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsafeRequest)
	assert.Equal(t, safety.PublicMessage, err.Error())
}

func TestGenerateUnsafeOutputReturnsRefusal(t *testing.T) {
	gen := &fakeGenerator{content: `{
		"name": "Human meat stew",
		"description": "",
		"servings": 2,
		"ingredients": [{"name": "meat", "quantity": 1, "unit": "kg"}],
		"instructions": ["Simmer."]
	}`}
	b := newTestBuilder(t, gen, pantry())

	got, _, err := b.Generate(context.Background(), "u1", Intent{Servings: 2})
	require.NoError(t, err)
	assert.Equal(t, "Recipe Not Available", got.Name)
	assert.Empty(t, got.Ingredients)
}

func TestGenerateEmptyInventory(t *testing.T) {
	b := newTestBuilder(t, &fakeGenerator{content: validResponse}, nil)

	_, _, err := b.Generate(context.Background(), "u1", Intent{Servings: 2})
	assert.ErrorIs(t, err, ErrEmptyInventory)
}

func TestScaleRoundsToTwoDecimals(t *testing.T) {
	r := Recipe{
		Servings:    3,
		Ingredients: []Ingredient{{Name: "flour", Quantity: 1, Unit: "cup"}},
	}
	got := Scale(r, 4)
	assert.Equal(t, 1.33, got.Ingredients[0].Quantity)
}

func TestScaleNoopOnSameServings(t *testing.T) {
	r := Recipe{Servings: 2, Ingredients: []Ingredient{{Quantity: 5}}}
	assert.Equal(t, r, Scale(r, 2))
}

func TestCacheExpiry(t *testing.T) {
	c := newCache(time.Minute, 4)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.put("k", Recipe{Name: "x"})
	_, ok := c.get("k")
	assert.True(t, ok)

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, ok = c.get("k")
	assert.False(t, ok)
}

func TestCacheEviction(t *testing.T) {
	c := newCache(time.Minute, 2)
	c.put("a", Recipe{Name: "a"})
	c.put("b", Recipe{Name: "b"})
	c.put("c", Recipe{Name: "c"})

	assert.Len(t, c.entries, 2)
	_, ok := c.get("c")
	assert.True(t, ok)
}
