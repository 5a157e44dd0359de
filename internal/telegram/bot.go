// Package telegram is the chat front end. Free-form messages are parsed
// into the same commands the HTTP API issues, so both surfaces share one
// behavior.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"kitchen-assistant/internal/clipper"
	"kitchen-assistant/internal/command"
	"kitchen-assistant/internal/config"
	"kitchen-assistant/internal/inventory"
	"kitchen-assistant/internal/llm"
	"kitchen-assistant/internal/metrics"
	"kitchen-assistant/internal/recipe"
	"kitchen-assistant/internal/shoppinglist"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot wraps the Telegram API and dispatches messages to the command router.
type Bot struct {
	api          *tgbotapi.BotAPI
	handler      command.Handler
	parser       *llm.IngredientParser
	clip         *clipper.Clipper
	ledger       *inventory.Ledger
	list         shoppinglist.Store
	metricsStore *metrics.Store
	cfg          *config.Config
	logger       *zap.Logger

	// lastRecipes remembers the most recent suggestion per chat so a bare
	// "confirm" knows what was cooked.
	mu          sync.Mutex
	lastRecipes map[int64]recipe.Recipe
}

// NewBot initializes the Telegram bot and registers the webhook.
func NewBot(
	cfg *config.Config,
	handler command.Handler,
	parser *llm.IngredientParser,
	clip *clipper.Clipper,
	ledger *inventory.Ledger,
	list shoppinglist.Store,
	metricsStore *metrics.Store,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}

	return &Bot{
		api:          api,
		handler:      handler,
		parser:       parser,
		clip:         clip,
		ledger:       ledger,
		list:         list,
		metricsStore: metricsStore,
		cfg:          cfg,
		logger:       logger,
		lastRecipes:  make(map[int64]recipe.Recipe),
	}, nil
}

// RegisterHandlers registers the webhook handler on the given mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.logger.Warn("failed to parse telegram update", zap.Error(err))
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.allowed(update.Message.From.ID) {
		b.logger.Warn("unauthorized telegram access attempt",
			zap.Int64("user_id", update.Message.From.ID),
			zap.String("username", update.Message.From.UserName))
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) allowed(userID int64) bool {
	if len(b.cfg.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	text := strings.TrimSpace(msg.Text)
	lower := strings.ToLower(text)
	ownerID := fmt.Sprintf("%d", msg.From.ID)

	switch {
	case text == "/start" || text == "/help":
		b.reply(msg.Chat.ID, helpText)
	case text == "/metrics":
		b.handleMetricsRequest(msg)
	case text == "/list" || lower == "list" || lower == "inventory":
		b.handleListInventory(ctx, msg.Chat.ID, ownerID)
	case text == "/shopping" || lower == "shopping list":
		b.handleShoppingList(ctx, msg.Chat.ID, ownerID)
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		b.handleClip(ctx, msg.Chat.ID, text)
	case strings.HasPrefix(lower, "add "):
		b.handleAdd(ctx, msg.Chat.ID, ownerID, text[len("add "):])
	case strings.HasPrefix(lower, "remove "):
		b.handleRemove(ctx, msg.Chat.ID, ownerID, text[len("remove "):])
	case strings.HasPrefix(lower, "used "):
		b.handleRemove(ctx, msg.Chat.ID, ownerID, text[len("used "):])
	case lower == "confirm" || lower == "cooked" || lower == "cooked it":
		b.handleConfirm(ctx, msg.Chat.ID, ownerID)
	case strings.HasPrefix(lower, "recipe"):
		b.handleRecipe(ctx, msg.Chat.ID, ownerID, strings.TrimSpace(text[len("recipe"):]))
	default:
		// Anything else reads as a dish request.
		b.handleRecipe(ctx, msg.Chat.ID, ownerID, text)
	}
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, ownerID, text string) {
	parsed := b.parser.Parse(ctx, text)

	res, err := b.handler.Handle(ctx, command.AddCommand{
		OwnerID:  ownerID,
		Name:     parsed.ItemName,
		Quantity: parsed.Quantity,
		Unit:     parsed.Unit,
	})
	if err != nil {
		b.reply(chatID, "❌ "+err.Error())
		return
	}

	e := res.Entry
	b.reply(chatID, fmt.Sprintf("✅ Added. You now have %s of %s.", formatAmount(e.Quantity, string(e.Unit)), e.Name))
}

func (b *Bot) handleRemove(ctx context.Context, chatID int64, ownerID, text string) {
	parsed := b.parser.Parse(ctx, text)

	cmd := command.RemoveCommand{OwnerID: ownerID, Name: parsed.ItemName, Unit: parsed.Unit}
	if parsed.Quantity > 0 {
		qty := parsed.Quantity
		cmd.Quantity = &qty
	}

	res, err := b.handler.Handle(ctx, cmd)
	if err != nil {
		b.reply(chatID, "❌ "+err.Error())
		return
	}

	switch {
	case res.Entry != nil:
		b.reply(chatID, fmt.Sprintf("✅ Removed. %s of %s left.",
			formatAmount(res.Entry.Quantity, string(res.Entry.Unit)), res.Entry.Name))
	case res.Deleted:
		b.reply(chatID, fmt.Sprintf("✅ %s is used up and gone from your inventory.", parsed.ItemName))
	default:
		b.reply(chatID, fmt.Sprintf("🤷 I couldn't find %s in your inventory.", parsed.ItemName))
	}
}

func (b *Bot) handleRecipe(ctx context.Context, chatID int64, ownerID, request string) {
	statusID := b.reply(chatID, "🧑‍🍳 *Thinking...*")

	res, err := b.handler.Handle(ctx, command.GenerateRecipeCommand{
		OwnerID: ownerID,
		Intent:  recipe.Intent{DishName: request, Servings: 4},
	})
	if err != nil {
		if errors.Is(err, recipe.ErrEmptyInventory) {
			b.edit(chatID, statusID, "Your inventory is empty. Please add some ingredients first.")
			return
		}
		b.edit(chatID, statusID, "❌ "+err.Error())
		return
	}

	rec := *res.Recipe
	b.mu.Lock()
	b.lastRecipes[chatID] = rec
	b.mu.Unlock()

	b.edit(chatID, statusID, formatRecipeMarkdown(rec))
}

func (b *Bot) handleConfirm(ctx context.Context, chatID int64, ownerID string) {
	b.mu.Lock()
	rec, ok := b.lastRecipes[chatID]
	b.mu.Unlock()
	if !ok {
		b.reply(chatID, "🤷 There is no recent recipe to confirm. Ask for one first.")
		return
	}

	res, err := b.handler.Handle(ctx, command.ConfirmCommand{OwnerID: ownerID, Recipe: rec})
	if err != nil {
		b.reply(chatID, "❌ "+err.Error())
		return
	}

	b.mu.Lock()
	delete(b.lastRecipes, chatID)
	b.mu.Unlock()

	b.reply(chatID, formatReconciliationMarkdown(rec.Name, *res.Reconciliation))
}

func (b *Bot) handleClip(ctx context.Context, chatID int64, url string) {
	if b.clip == nil {
		b.reply(chatID, "🤷 Recipe clipping needs the model configured.")
		return
	}

	statusID := b.reply(chatID, "✂️ *Clipping recipe...*")

	rec, err := b.clip.ClipURL(ctx, url)
	if err != nil {
		b.logger.Warn("failed to clip recipe", zap.String("url", url), zap.Error(err))
		b.edit(chatID, statusID, "❌ I couldn't extract a recipe from that page.")
		return
	}

	b.mu.Lock()
	b.lastRecipes[chatID] = rec
	b.mu.Unlock()

	b.edit(chatID, statusID, "✅ *Recipe saved!*\n\n"+formatRecipeMarkdown(rec))
}

func (b *Bot) handleListInventory(ctx context.Context, chatID int64, ownerID string) {
	entries, err := b.ledger.Snapshot(ctx, ownerID)
	if err != nil {
		b.reply(chatID, "❌ Error reading your inventory.")
		return
	}
	if len(entries) == 0 {
		b.reply(chatID, "Your inventory is empty. Try `add 2 kg tomatoes`.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🧺 *Your inventory*\n\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("• %s: %s\n", e.Name, formatAmount(e.Quantity, string(e.Unit))))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleShoppingList(ctx context.Context, chatID int64, ownerID string) {
	items, err := b.list.ListByOwner(ctx, ownerID)
	if err != nil {
		b.reply(chatID, "❌ Error reading your shopping list.")
		return
	}
	if len(items) == 0 {
		b.reply(chatID, "🛒 Your shopping list is empty.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Shopping list*\n\n")
	for _, item := range items {
		mark := "•"
		if item.Checked {
			mark = "✔"
		}
		sb.WriteString(fmt.Sprintf("%s %s %s\n", mark, item.QuantityDisplay, item.Name))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.TelegramAdminID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	usage, err := b.metricsStore.GetDailyUsage(ctx, 7)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth("data")

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")
	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n",
			d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) reply(chatID int64, text string) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Warn("failed to send telegram message", zap.Error(err))
		return 0
	}
	return sent.MessageID
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.reply(chatID, text)
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("failed to edit telegram message", zap.Error(err))
	}
}

const helpText = `👋 *Kitchen Assistant*

• ` + "`add 2 kg tomatoes`" + ` — put something in your inventory
• ` + "`remove 500 g rice`" + ` / ` + "`used 2 eggs`" + ` — take something out
• ` + "`recipe paneer curry`" + ` — get a suggestion from what you have
• ` + "`confirm`" + ` — you cooked the last suggestion
• ` + "`list`" + ` — show your inventory
• ` + "`shopping list`" + ` — show what to buy
• paste a URL to clip a recipe from the web`
