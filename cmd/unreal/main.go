package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jd-hilo/unreal/internal/api"
	"github.com/jd-hilo/unreal/internal/config"
	"github.com/jd-hilo/unreal/internal/events"
	"github.com/jd-hilo/unreal/internal/llm"
	"github.com/jd-hilo/unreal/internal/oracle"
	"github.com/jd-hilo/unreal/internal/pack"
	"github.com/jd-hilo/unreal/internal/pipeline"
	"github.com/jd-hilo/unreal/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("unreal starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Oracle — live OpenAI twin, or the deterministic offline fallback when
	// no key is configured.
	var twin oracle.Oracle
	var embedder pack.Embedder
	if cfg.OpenAIAPIKey != "" {
		llmClient := llm.NewClient(cfg.OpenAIAPIKey, cfg.TwinModel, cfg.EmbeddingModel)
		twin = oracle.NewClient(llmClient, slog.Default())
		embedder = llmClient
		slog.Info("oracle ready", "model", cfg.TwinModel, "embedding_model", cfg.EmbeddingModel)
	} else {
		twin = oracle.NewMock()
		slog.Warn("OPENAI_API_KEY not set — using offline mock oracle")
	}

	// NATS (optional — the service works without events)
	var eventsClient *events.Client
	if cfg.NatsURL != "" {
		eventsClient, err = events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer eventsClient.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set — running without lifecycle events")
	}

	// Context packs
	packs := pack.NewBuilder(db, embedder, slog.Default())

	// Prediction pipeline
	var pub pipeline.Publisher
	if eventsClient != nil {
		pub = eventsClient
	}
	runner := pipeline.New(db, packs, twin, embedder, pub, cfg.Temperature, slog.Default())

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, db, runner, twin, packs, embedder, eventsClient, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if eventsClient != nil {
		if err := eventsClient.Publish(events.SubjectServiceRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("unreal ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("unreal stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
