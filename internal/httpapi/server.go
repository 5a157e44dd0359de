// Package httpapi exposes the assistant over a JSON HTTP API secured by
// bearer tokens. All domain work goes through the command router so every
// front end shares validation and content checks.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"kitchen-assistant/internal/command"
	"kitchen-assistant/internal/inventory"
	"kitchen-assistant/internal/recipe"
	"kitchen-assistant/internal/shoppinglist"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const emptyInventoryMessage = "Your inventory is empty. Please add some ingredients first."

// TextChecker runs the content filter over free text.
type TextChecker interface {
	CheckText(text string) error
}

// Server holds the HTTP layer's dependencies.
type Server struct {
	handler command.Handler
	checker TextChecker
	ledger  *inventory.Ledger
	list    shoppinglist.Store
	logger  *zap.Logger
}

// NewServer creates the HTTP layer.
func NewServer(handler command.Handler, checker TextChecker, ledger *inventory.Ledger, list shoppinglist.Store, logger *zap.Logger) *Server {
	return &Server{handler: handler, checker: checker, ledger: ledger, list: list, logger: logger}
}

// Routes builds the gin engine with all endpoints registered.
func (s *Server) Routes(jwtSecret string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(s.logger))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api", Auth(jwtSecret))
	{
		api.GET("/inventory", s.listInventory)
		api.POST("/inventory/add", s.addItem)
		api.POST("/inventory/remove", s.removeItem)

		api.POST("/recipes/generate", s.generateRecipe)
		api.POST("/recipes/confirm", s.confirmRecipe)

		api.POST("/safety/check", s.safetyCheck)

		api.GET("/shopping-list", s.listShopping)
		api.GET("/shopping-list/suggestions", s.suggestShopping)
		api.POST("/shopping-list/:id/check", s.checkShoppingItem)
		api.DELETE("/shopping-list/:id", s.deleteShoppingItem)
	}

	return engine
}

func (s *Server) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: command.ErrValidation.Error()})
		return
	}

	res, err := s.handler.Handle(c.Request.Context(), command.AddCommand{
		OwnerID:  ownerID(c),
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res.Entry)
}

func (s *Server) removeItem(c *gin.Context) {
	var req removeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: command.ErrValidation.Error()})
		return
	}

	res, err := s.handler.Handle(c.Request.Context(), command.RemoveCommand{
		OwnerID:  ownerID(c),
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	if res.Entry != nil {
		c.JSON(http.StatusOK, gin.H{"deleted": false, "entry": res.Entry})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": res.Deleted})
}

func (s *Server) listInventory(c *gin.Context) {
	entries, err := s.ledger.Snapshot(c.Request.Context(), ownerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) generateRecipe(c *gin.Context) {
	var req generateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: command.ErrValidation.Error()})
		return
	}

	res, err := s.handler.Handle(c.Request.Context(), command.GenerateRecipeCommand{
		OwnerID: ownerID(c),
		Intent: recipe.Intent{
			DishName:    req.DishName,
			Preferences: req.Preferences,
			Servings:    req.Servings,
			Mode:        recipe.Mode(req.Mode),
		},
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res.Recipe)
}

func (s *Server) confirmRecipe(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: command.ErrValidation.Error()})
		return
	}

	res, err := s.handler.Handle(c.Request.Context(), command.ConfirmCommand{
		OwnerID: ownerID(c),
		Recipe:  req.Recipe,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res.Reconciliation)
}

func (s *Server) safetyCheck(c *gin.Context) {
	var req safetyCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: command.ErrValidation.Error()})
		return
	}

	if err := s.checker.CheckText(req.Text); err != nil {
		c.JSON(http.StatusOK, gin.H{"safe": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"safe": true})
}

func (s *Server) listShopping(c *gin.Context) {
	items, err := s.list.ListByOwner(c.Request.Context(), ownerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) suggestShopping(c *gin.Context) {
	entries, err := s.ledger.Snapshot(c.Request.Context(), ownerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": shoppinglist.Suggest(entries, nil)})
}

func (s *Server) checkShoppingItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid item id"})
		return
	}

	var req checkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: command.ErrValidation.Error()})
		return
	}

	if err := s.list.SetChecked(c.Request.Context(), ownerID(c), id, req.Checked); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checked": req.Checked})
}

func (s *Server) deleteShoppingItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid item id"})
		return
	}

	if err := s.list.Delete(c.Request.Context(), ownerID(c), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps domain errors to fixed user-facing messages. Anything
// unrecognized stays opaque.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, command.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse{Error: command.ErrValidation.Error()})
	case errors.Is(err, command.ErrUnsafeContent), errors.Is(err, recipe.ErrUnsafeRequest):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, recipe.ErrEmptyInventory):
		c.JSON(http.StatusBadRequest, errorResponse{Error: emptyInventoryMessage})
	default:
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
