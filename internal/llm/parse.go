package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ParsedIngredient is the structured form of a free-text ingredient phrase
// like "2 kg of tomatoes".
type ParsedIngredient struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	ItemName string  `json:"item_name"`
}

const parsePromptTemplate = `Extract the quantity, unit and item name from the following text.
Respond with a single JSON object and nothing else:
{"quantity": <number>, "unit": "<unit or empty string>", "item_name": "<name>"}

Rules:
- quantity defaults to 1 when not stated.
- unit is the measurement word as written (kg, g, l, ml, cup, piece, ...), or "" when absent.
- item_name is the ingredient only, without quantity, unit or filler words.

Text: %q`

var (
	// "2 kg tomatoes", "2.5kg of tomatoes"
	qtyUnitNameRe = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*([a-zA-Z]+)\s+(?:of\s+)?(.+)$`)
	// "2 tomatoes"
	qtyNameRe = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s+(.+)$`)
	// "tomatoes 2 kg", "tomatoes 2"
	nameQtyUnitRe = regexp.MustCompile(`^(.+?)\s+(\d+(?:[.,]\d+)?)\s*([a-zA-Z]*)$`)

	measureWords = map[string]bool{
		"g": true, "gram": true, "grams": true, "kg": true, "kilo": true,
		"kilos": true, "kilogram": true, "kilograms": true, "mg": true,
		"lb": true, "lbs": true, "pound": true, "pounds": true, "oz": true,
		"ounce": true, "ounces": true, "ml": true, "l": true, "liter": true,
		"liters": true, "litre": true, "litres": true, "cup": true,
		"cups": true, "tbsp": true, "tablespoon": true, "tablespoons": true,
		"tsp": true, "teaspoon": true, "teaspoons": true, "piece": true,
		"pieces": true, "pc": true, "pcs": true, "pack": true, "packs": true,
		"bottle": true, "bottles": true, "can": true, "cans": true,
		"jar": true, "jars": true, "bag": true, "bags": true, "box": true,
		"boxes": true, "dozen": true, "head": true, "heads": true,
		"loaf": true, "loaves": true, "clove": true, "cloves": true,
		"bunch": true, "bunches": true,
	}
)

// IngredientParser turns free text into a ParsedIngredient. It asks the
// model first and falls back to pattern matching when the model is
// unavailable or returns garbage, so parsing never fails outright.
type IngredientParser struct {
	generator TextGenerator
	logger    *zap.Logger
}

// NewIngredientParser creates a parser. The generator may be nil, in which
// case only the pattern fallback is used.
func NewIngredientParser(generator TextGenerator, logger *zap.Logger) *IngredientParser {
	return &IngredientParser{generator: generator, logger: logger}
}

// Parse extracts quantity, unit and item name from text.
func (p *IngredientParser) Parse(ctx context.Context, text string) ParsedIngredient {
	text = strings.TrimSpace(text)
	if text == "" {
		return ParsedIngredient{Quantity: 1}
	}

	if p.generator != nil {
		if parsed, err := p.parseWithModel(ctx, text); err == nil {
			return parsed
		} else {
			p.logger.Warn("ingredient parse via model failed, using fallback",
				zap.String("text", text),
				zap.Error(err))
		}
	}

	return ParseIngredientFallback(text)
}

func (p *IngredientParser) parseWithModel(ctx context.Context, text string) (ParsedIngredient, error) {
	resp, err := p.generator.GenerateContent(ctx, fmt.Sprintf(parsePromptTemplate, text))
	if err != nil {
		return ParsedIngredient{}, err
	}

	var parsed ParsedIngredient
	if err := json.Unmarshal([]byte(StripMarkdownFences(resp.Content)), &parsed); err != nil {
		return ParsedIngredient{}, fmt.Errorf("failed to decode parse response: %w", err)
	}
	if parsed.ItemName == "" {
		return ParsedIngredient{}, fmt.Errorf("parse response missing item name")
	}
	if parsed.Quantity <= 0 {
		parsed.Quantity = 1
	}
	parsed.ItemName = strings.TrimSpace(strings.ToLower(parsed.ItemName))
	parsed.Unit = strings.TrimSpace(strings.ToLower(parsed.Unit))
	return parsed, nil
}

// ParseIngredientFallback parses text with patterns only. It always returns
// a usable result; unparseable input becomes the item name with quantity 1.
func ParseIngredientFallback(text string) ParsedIngredient {
	text = strings.ToLower(strings.TrimSpace(text))

	if m := qtyUnitNameRe.FindStringSubmatch(text); m != nil && measureWords[m[2]] {
		return ParsedIngredient{
			Quantity: parseQty(m[1]),
			Unit:     m[2],
			ItemName: strings.TrimSpace(m[3]),
		}
	}

	if m := qtyNameRe.FindStringSubmatch(text); m != nil {
		return ParsedIngredient{
			Quantity: parseQty(m[1]),
			ItemName: strings.TrimSpace(m[2]),
		}
	}

	if m := nameQtyUnitRe.FindStringSubmatch(text); m != nil {
		unit := m[3]
		if unit != "" && !measureWords[unit] {
			// Trailing word is part of the name, not a unit.
			return ParsedIngredient{Quantity: 1, ItemName: text}
		}
		return ParsedIngredient{
			Quantity: parseQty(m[2]),
			Unit:     unit,
			ItemName: strings.TrimSpace(m[1]),
		}
	}

	return ParsedIngredient{Quantity: 1, ItemName: text}
}

func parseQty(s string) float64 {
	s = strings.ReplaceAll(s, ",", ".")
	qty, err := strconv.ParseFloat(s, 64)
	if err != nil || qty <= 0 {
		return 1
	}
	return qty
}

// StripMarkdownFences removes a surrounding ```json ... ``` block that
// models sometimes wrap around JSON responses.
func StripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
