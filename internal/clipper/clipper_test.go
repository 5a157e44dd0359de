package clipper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"kitchen-assistant/internal/llm"
	"kitchen-assistant/internal/safety"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGenerator struct {
	content  string
	err      error
	lastSeen string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (llm.ContentResponse, error) {
	s.lastSeen = prompt
	return llm.ContentResponse{Content: s.content}, s.err
}

const pageHTML = `<html><head><script>tracking()</script><style>.x{}</style></head>
<body><nav>menu</nav><h1>Pancakes</h1><p>200 g flour and 2 eggs.</p><footer>legal</footer></body></html>`

func newPage(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(pageHTML))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClipURL(t *testing.T) {
	srv := newPage(t)
	gen := &stubGenerator{content: `{
		"title": "Pancakes",
		"description": "Fluffy breakfast pancakes.",
		"servings": "4 people",
		"ingredients": ["200 g flour", "2 eggs"],
		"steps": ["Mix.", "Fry."]
	}`}

	c := New(gen, safety.New(zap.NewNop()), zap.NewNop())
	got, err := c.ClipURL(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", got.Name)
	assert.Equal(t, 4, got.Servings)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, "flour", got.Ingredients[0].Name)
	assert.Equal(t, 200.0, got.Ingredients[0].Quantity)
	assert.Equal(t, "g", got.Ingredients[0].Unit)
	assert.Equal(t, "eggs", got.Ingredients[1].Name)
	assert.Equal(t, 2.0, got.Ingredients[1].Quantity)

	// Noise elements never reach the model.
	assert.NotContains(t, gen.lastSeen, "tracking()")
	assert.NotContains(t, gen.lastSeen, "menu")
	assert.Contains(t, gen.lastSeen, "200 g flour")
}

func TestClipURLRejectsUnsafeContent(t *testing.T) {
	srv := newPage(t)
	gen := &stubGenerator{content: `{
		"title": "Human meat roast",
		"servings": "2",
		"ingredients": ["1 kg meat"],
		"steps": ["Roast."]
	}`}

	c := New(gen, safety.New(zap.NewNop()), zap.NewNop())
	_, err := c.ClipURL(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, safety.PublicMessage, err.Error())
}

func TestClipURLNoRecipe(t *testing.T) {
	srv := newPage(t)
	gen := &stubGenerator{content: `{"title": ""}`}

	c := New(gen, safety.New(zap.NewNop()), zap.NewNop())
	_, err := c.ClipURL(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestParseServings(t *testing.T) {
	assert.Equal(t, 4, parseServings("4 people"))
	assert.Equal(t, 6, parseServings("serves 6"))
	assert.Equal(t, 0, parseServings("a crowd"))
}
