// Package clipper imports recipes from web pages: it fetches a URL,
// strips the page down to text, and has the model structure it into a
// recipe that can be confirmed like any generated one.
package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kitchen-assistant/internal/llm"
	"kitchen-assistant/internal/recipe"
	"kitchen-assistant/internal/safety"
	"kitchen-assistant/internal/units"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxContentBytes = 24_000

// extractedRecipe is the model's raw output before normalization.
type extractedRecipe struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Servings    string   `json:"servings"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

// Clipper fetches and extracts recipes from URLs.
type Clipper struct {
	textGen    llm.TextGenerator
	filter     *safety.Filter
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Clipper. The text generator must not be nil; callers
// should not register the clipper when no model is configured.
func New(textGen llm.TextGenerator, filter *safety.Filter, logger *zap.Logger) *Clipper {
	return &Clipper{
		textGen:    textGen,
		filter:     filter,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// ClipURL fetches the URL and extracts a structured recipe from it.
func (c *Clipper) ClipURL(ctx context.Context, url string) (recipe.Recipe, error) {
	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe details from the following page text.
Return the result strictly as a JSON object with this structure and nothing else:
{
  "title": "Recipe Title",
  "description": "One sentence summary",
  "servings": "4",
  "ingredients": ["200 g flour", "2 eggs", ...],
  "steps": ["Step 1 description", "Step 2 description", ...]
}

Page content:
%s
`, content)

	resp, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("extraction failed: %w", err)
	}

	var extracted extractedRecipe
	if err := json.Unmarshal([]byte(llm.StripMarkdownFences(resp.Content)), &extracted); err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	if extracted.Title == "" {
		return recipe.Recipe{}, fmt.Errorf("no recipe found at %s", url)
	}

	if v := c.filter.Evaluate(extracted.Title + " " + strings.Join(extracted.Ingredients, " ")); !v.Safe {
		return recipe.Recipe{}, fmt.Errorf("%s", safety.PublicMessage)
	}

	c.logger.Info("clipped recipe",
		zap.String("url", url),
		zap.String("title", extracted.Title),
		zap.Int("ingredients", len(extracted.Ingredients)))

	return c.toRecipe(extracted), nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save model tokens.
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if len(text) > maxContentBytes {
		text = text[:maxContentBytes]
	}
	return text, nil
}

// toRecipe parses the loose ingredient strings into structured lines.
func (c *Clipper) toRecipe(extracted extractedRecipe) recipe.Recipe {
	servings := parseServings(extracted.Servings)
	if servings <= 0 {
		servings = 4
	}

	ingredients := make([]recipe.Ingredient, 0, len(extracted.Ingredients))
	for _, raw := range extracted.Ingredients {
		parsed := llm.ParseIngredientFallback(raw)
		if parsed.ItemName == "" {
			continue
		}
		ingredients = append(ingredients, recipe.Ingredient{
			Name:     parsed.ItemName,
			Quantity: parsed.Quantity,
			Unit:     string(units.Normalize(parsed.Unit)),
		})
	}

	return recipe.Recipe{
		ID:           uuid.New(),
		Name:         extracted.Title,
		Description:  extracted.Description,
		Servings:     servings,
		Ingredients:  ingredients,
		Instructions: extracted.Steps,
	}
}

// parseServings tolerates servings returned as a string like "4 people".
func parseServings(s string) int {
	for _, field := range strings.Fields(s) {
		if n, err := strconv.Atoi(field); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
