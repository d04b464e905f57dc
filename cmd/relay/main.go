package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mpetrov/gptrelay/internal/config"
	"github.com/mpetrov/gptrelay/internal/genai"
	"github.com/mpetrov/gptrelay/internal/history"
	"github.com/mpetrov/gptrelay/internal/httpapi"
	"github.com/mpetrov/gptrelay/internal/observability"
	"github.com/mpetrov/gptrelay/internal/prompt"
	"github.com/mpetrov/gptrelay/internal/ratelimit"
	"github.com/mpetrov/gptrelay/internal/relay"
	"github.com/mpetrov/gptrelay/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if !cfg.Credentialed() {
		// Still serve health checks; webhook events get a configuration-error reply.
		log.Printf("missing TELEGRAM_BOT_TOKEN or OPENAI_API_KEY; webhook events will not be relayed")
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := history.NewStore(ctx, cfg.DatabaseURL, cfg.RedisURL, cfg.MaxTurns)
	if err != nil {
		log.Fatalf("history store init failed: %v", err)
	}
	defer store.Close()

	storeMode := "in-memory"
	switch {
	case cfg.DatabaseURL != "":
		storeMode = "postgres"
	case cfg.RedisURL != "":
		storeMode = "redis"
	}
	log.Printf("history store: %s (max %d turns per chat)", storeMode, cfg.MaxTurns)

	limiter := ratelimit.New(cfg.CooldownWindow)
	builder := prompt.Builder{
		Model:           cfg.Model,
		Instructions:    cfg.Instructions,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}

	var generator genai.Generator = genai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.RequestTimeout)
	notifier := telegram.NewClient(cfg.TelegramAPIBaseURL, cfg.TelegramBotToken, cfg.RequestTimeout)

	pipeline := relay.New(store, limiter, builder, generator, notifier, metrics, cfg.Credentialed())

	api := httpapi.New(pipeline, storeMode, cfg.Credentialed())
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
