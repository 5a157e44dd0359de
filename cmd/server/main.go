package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kitchen-assistant/internal/clipper"
	"kitchen-assistant/internal/command"
	"kitchen-assistant/internal/config"
	"kitchen-assistant/internal/database"
	"kitchen-assistant/internal/httpapi"
	"kitchen-assistant/internal/inventory"
	"kitchen-assistant/internal/llm"
	"kitchen-assistant/internal/metrics"
	"kitchen-assistant/internal/recipe"
	"kitchen-assistant/internal/reconcile"
	"kitchen-assistant/internal/safety"
	"kitchen-assistant/internal/shoppinglist"
	"kitchen-assistant/internal/telegram"
	"kitchen-assistant/internal/telemetry"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	tracer, shutdownTracing, err := telemetry.Init(ctx, cfg.ServiceName, cfg.TracingEnabled)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("failed to shut down tracing", zap.Error(err))
		}
	}()

	db, err := database.New(cfg.DatabasePath, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// The model is optional: without an API key the assistant still runs,
	// serving deterministic fallback recipes.
	var textGen llm.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			logger.Fatal("failed to create Gemini client", zap.Error(err))
		}
		textGen = llm.NewInstrumentedGenerator(gemini, tracer)
		defer func() {
			if closer, ok := textGen.(llm.Closer); ok {
				_ = closer.Close()
			}
		}()
	} else {
		logger.Warn("no Gemini API key configured, recipe generation uses fallbacks only")
	}

	filter := safety.New(logger)
	ledger := inventory.NewLedger(inventory.NewSQLiteStore(db.SQL), logger)
	list := shoppinglist.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	builder := recipe.NewBuilder(ledger, filter, logger, recipe.BuilderOptions{
		TextGen:      textGen,
		Timeout:      cfg.LLMTimeout,
		CacheTTL:     cfg.RecipeCacheTTL,
		CacheEntries: cfg.RecipeCacheEntries,
	})
	reconciler := reconcile.New(ledger, list, logger)
	router := command.NewRouter(ledger, builder, reconciler, filter, metricsStore, logger)

	engine := httpapi.NewServer(router, router, ledger, list, logger).Routes(cfg.JWTSecret)

	mux := http.NewServeMux()
	mux.Handle("/", engine)

	if cfg.TelegramBotToken != "" {
		parser := llm.NewIngredientParser(textGen, logger)
		var clip *clipper.Clipper
		if textGen != nil {
			clip = clipper.New(textGen, filter, logger)
		}

		bot, err := telegram.NewBot(cfg, router, parser, clip, ledger, list, metricsStore, logger)
		if err != nil {
			logger.Fatal("failed to initialize telegram bot", zap.Error(err))
		}
		bot.RegisterHandlers(mux)
		logger.Info("telegram bot registered", zap.String("webhook", cfg.TelegramWebhookURL))
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
