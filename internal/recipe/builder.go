package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kitchen-assistant/internal/inventory"
	"kitchen-assistant/internal/llm"
	"kitchen-assistant/internal/safety"
	"kitchen-assistant/internal/shared"
	"kitchen-assistant/internal/units"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyInventory is returned when a recipe is requested against an
// inventory with no entries.
var ErrEmptyInventory = errors.New("recipe: inventory is empty")

// ErrUnsafeRequest is returned when the request itself fails the content
// check. Its message is safe to show to users.
var ErrUnsafeRequest = errors.New(safety.PublicMessage)

const agentName = "RecipeBuilder"

type inventoryReader interface {
	Snapshot(ctx context.Context, ownerID string) ([]inventory.Entry, error)
}

// Builder generates recipe suggestions from the current inventory. Model
// failures never surface to callers; they degrade to a deterministic
// fallback recipe.
type Builder struct {
	textGen llm.TextGenerator
	reader  inventoryReader
	filter  *safety.Filter
	logger  *zap.Logger
	cache   *cache
	timeout time.Duration
}

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	// TextGen may be nil; the Builder then always serves fallback recipes.
	TextGen      llm.TextGenerator
	Timeout      time.Duration
	CacheTTL     time.Duration
	CacheEntries int
}

// NewBuilder creates a Builder over the given inventory reader.
func NewBuilder(reader inventoryReader, filter *safety.Filter, logger *zap.Logger, opts BuilderOptions) *Builder {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 15 * time.Minute
	}
	if opts.CacheEntries <= 0 {
		opts.CacheEntries = 128
	}
	return &Builder{
		textGen: opts.TextGen,
		reader:  reader,
		filter:  filter,
		logger:  logger,
		cache:   newCache(opts.CacheTTL, opts.CacheEntries),
		timeout: opts.Timeout,
	}
}

// Generate produces a recipe for the given intent. The returned AgentMeta
// carries token usage for metering; it is zero on cache hits and fallbacks.
func (b *Builder) Generate(ctx context.Context, ownerID string, intent Intent) (Recipe, shared.AgentMeta, error) {
	start := time.Now()
	intent = intent.normalized()
	meta := shared.AgentMeta{AgentName: agentName}

	if v := b.filter.Evaluate(intent.DishName + " " + intent.Preferences); !v.Safe {
		return Recipe{}, meta, ErrUnsafeRequest
	}

	entries, err := b.reader.Snapshot(ctx, ownerID)
	if err != nil {
		return Recipe{}, meta, fmt.Errorf("failed to read inventory: %w", err)
	}
	if len(entries) == 0 {
		return Recipe{}, meta, ErrEmptyInventory
	}

	key := cacheKey(ownerID, intent)
	if cached, ok := b.cache.get(key); ok {
		b.logger.Debug("recipe cache hit", zap.String("owner_id", ownerID), zap.String("recipe", cached.Name))
		return Scale(cached, intent.Servings), meta, nil
	}

	generated, usage, ok := b.generateWithModel(ctx, intent, entries)
	meta.Usage = usage
	meta.Latency = time.Since(start)
	if !ok {
		return fallbackRecipe(entries, intent.Servings), meta, nil
	}

	if generated.Servings != intent.Servings {
		generated = Scale(generated, intent.Servings)
	}

	if !b.outputSafe(generated) {
		b.logger.Warn("generated recipe failed content check",
			zap.String("owner_id", ownerID),
			zap.String("recipe", generated.Name))
		return refusalRecipe(intent.Servings), meta, nil
	}

	b.cache.put(key, generated)
	return generated, meta, nil
}

// generateWithModel returns ok=false when the model path cannot produce a
// usable recipe; callers fall back.
func (b *Builder) generateWithModel(ctx context.Context, intent Intent, entries []inventory.Entry) (Recipe, shared.TokenUsage, bool) {
	if b.textGen == nil {
		return Recipe{}, shared.TokenUsage{}, false
	}

	prompt, err := buildPrompt(intent, entries)
	if err != nil {
		b.logger.Error("failed to build recipe prompt", zap.Error(err))
		return Recipe{}, shared.TokenUsage{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		b.logger.Warn("recipe generation failed, serving fallback", zap.Error(err))
		return Recipe{}, resp.Usage, false
	}

	var r Recipe
	if err := json.Unmarshal([]byte(llm.StripMarkdownFences(resp.Content)), &r); err != nil {
		b.logger.Warn("failed to parse recipe response, serving fallback", zap.Error(err))
		return Recipe{}, resp.Usage, false
	}
	if r.Name == "" && len(r.Ingredients) == 0 {
		b.logger.Warn("recipe response missing required fields, serving fallback")
		return Recipe{}, resp.Usage, false
	}
	// A named response with no ingredients is the model declining: the
	// inventory cannot make the requested dish and the description says why.
	// Keep it instead of substituting an unrelated fallback dish.
	if r.Name == "" {
		r.Name = intent.DishName
		if r.Name == "" {
			r.Name = "Suggested recipe"
		}
	}

	r.ID = uuid.New()
	if r.Servings <= 0 {
		r.Servings = intent.Servings
	}
	for i := range r.Ingredients {
		if r.Ingredients[i].Quantity <= 0 {
			r.Ingredients[i].Quantity = 1
		}
		r.Ingredients[i].Unit = string(units.Normalize(r.Ingredients[i].Unit))
	}

	return r, resp.Usage, true
}

func (b *Builder) outputSafe(r Recipe) bool {
	if v := b.filter.Evaluate(r.Name + " " + r.Description); !v.Safe {
		return false
	}
	for _, ing := range r.Ingredients {
		if v := b.filter.Evaluate(ing.Name); !v.Safe {
			return false
		}
	}
	for _, step := range r.Instructions {
		if v := b.filter.Evaluate(step); !v.Safe {
			return false
		}
	}
	return true
}
