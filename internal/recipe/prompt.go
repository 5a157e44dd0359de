package recipe

import (
	"bytes"
	_ "embed"
	"sort"
	"text/template"

	"kitchen-assistant/internal/inventory"
)

//go:embed builder_prompt.md
var builderPrompt string

var builderTmpl = template.Must(template.New("builder").Parse(builderPrompt))

type promptLine struct {
	Name     string
	Quantity float64
	Unit     string
}

type promptData struct {
	Inventory   []promptLine
	DishName    string
	Preferences string
	Servings    int
	Strict      bool
}

// buildPrompt renders the generation prompt from a normalized intent and an
// inventory snapshot. Entries are sorted by name so the same pantry always
// produces the same prompt.
func buildPrompt(intent Intent, entries []inventory.Entry) (string, error) {
	lines := make([]promptLine, len(entries))
	for i, e := range entries {
		lines[i] = promptLine{Name: e.Name, Quantity: e.Quantity, Unit: string(e.Unit)}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Name < lines[j].Name })

	var buf bytes.Buffer
	err := builderTmpl.Execute(&buf, promptData{
		Inventory:   lines,
		DishName:    intent.DishName,
		Preferences: intent.Preferences,
		Servings:    intent.Servings,
		Strict:      intent.Mode == ModeStrict,
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}
