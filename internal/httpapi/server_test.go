package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"kitchen-assistant/internal/command"
	"kitchen-assistant/internal/inventory"
	"kitchen-assistant/internal/recipe"
	"kitchen-assistant/internal/reconcile"
	"kitchen-assistant/internal/safety"
	"kitchen-assistant/internal/shoppinglist"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	ledger := inventory.NewLedger(inventory.NewMemoryStore(), logger)
	filter := safety.New(logger)
	builder := recipe.NewBuilder(ledger, filter, logger, recipe.BuilderOptions{})
	list := shoppinglist.NewMemoryStore()
	reconciler := reconcile.New(ledger, list, logger)
	router := command.NewRouter(ledger, builder, reconciler, filter, nil, logger)

	return NewServer(router, router, ledger, list, logger).Routes(testSecret)
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthzNeedsNoAuth(t *testing.T) {
	engine := newTestEngine(t)
	rec := doJSON(t, engine, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	engine := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/inventory", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/inventory", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddAndListInventory(t *testing.T) {
	engine := newTestEngine(t)
	token := signToken(t, "u1")

	rec := doJSON(t, engine, http.MethodPost, "/api/inventory/add", token,
		addItemRequest{Name: "tomatoes", Quantity: 2, Unit: "kg"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/inventory", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Entries []inventory.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "tomatoes", resp.Entries[0].Name)
}

func TestOwnersAreIsolated(t *testing.T) {
	engine := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/inventory/add", signToken(t, "u1"),
		addItemRequest{Name: "rice", Quantity: 1, Unit: "kg"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/inventory", signToken(t, "u2"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Entries []inventory.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Entries)
}

func TestAddRejectsUnsafeName(t *testing.T) {
	engine := newTestEngine(t)
	token := signToken(t, "u1")

	rec := doJSON(t, engine, http.MethodPost, "/api/inventory/add", token,
		addItemRequest{Name: "human meat", Quantity: 1, Unit: "kg"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, safety.PublicMessage, resp.Error)
}

func TestRemoveMissingItemReportsNoop(t *testing.T) {
	engine := newTestEngine(t)
	token := signToken(t, "u1")

	rec := doJSON(t, engine, http.MethodPost, "/api/inventory/remove", token,
		removeItemRequest{Name: "unicorn steak"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Deleted bool `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Deleted)
}

func TestGenerateAgainstEmptyInventory(t *testing.T) {
	engine := newTestEngine(t)
	token := signToken(t, "u1")

	rec := doJSON(t, engine, http.MethodPost, "/api/recipes/generate", token,
		generateRecipeRequest{Servings: 2})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, emptyInventoryMessage, resp.Error)
}

func TestGenerateAndConfirmFlow(t *testing.T) {
	engine := newTestEngine(t)
	token := signToken(t, "u1")

	rec := doJSON(t, engine, http.MethodPost, "/api/inventory/add", token,
		addItemRequest{Name: "pasta", Quantity: 500, Unit: "g"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, engine, http.MethodPost, "/api/recipes/generate", token,
		generateRecipeRequest{Servings: 2})
	require.Equal(t, http.StatusOK, rec.Code)

	var generated recipe.Recipe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &generated))
	require.NotEmpty(t, generated.Ingredients)

	rec = doJSON(t, engine, http.MethodPost, "/api/recipes/confirm", token,
		confirmRequest{Recipe: generated})
	require.Equal(t, http.StatusOK, rec.Code)

	var result reconcile.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Reduced)
}

func TestSafetyCheckEndpoint(t *testing.T) {
	engine := newTestEngine(t)
	token := signToken(t, "u1")

	rec := doJSON(t, engine, http.MethodPost, "/api/safety/check", token,
		safetyCheckRequest{Text: "tiger prawn curry"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"safe":true`)

	rec = doJSON(t, engine, http.MethodPost, "/api/safety/check", token,
		safetyCheckRequest{Text: "recipe with human meat"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"safe":false`)
}

func TestShoppingListLifecycle(t *testing.T) {
	engine := newTestEngine(t)
	token := signToken(t, "u1")

	// Force a shortfall so something lands on the list.
	rec := doJSON(t, engine, http.MethodPost, "/api/inventory/add", token,
		addItemRequest{Name: "cream", Quantity: 200, Unit: "ml"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, engine, http.MethodPost, "/api/recipes/confirm", token,
		confirmRequest{Recipe: recipe.Recipe{
			Name:        "Custard",
			Ingredients: []recipe.Ingredient{{Name: "cream", Quantity: 250, Unit: "ml"}},
		}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/shopping-list", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Items []shoppinglist.Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Items, 1)
	assert.Equal(t, "cream", listResp.Items[0].Name)
	assert.Equal(t, "50 ml", listResp.Items[0].QuantityDisplay)

	itemID := strconv.FormatInt(listResp.Items[0].ID, 10)
	rec = doJSON(t, engine, http.MethodPost,
		"/api/shopping-list/"+itemID+"/check", token, checkItemRequest{Checked: true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, engine, http.MethodDelete, "/api/shopping-list/"+itemID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
