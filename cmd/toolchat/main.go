package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tjfontaine/toolchat/internal/config"
	"github.com/tjfontaine/toolchat/internal/dialogue"
	"github.com/tjfontaine/toolchat/internal/frontdoor"
	"github.com/tjfontaine/toolchat/internal/frontdoor/chat"
	"github.com/tjfontaine/toolchat/internal/gemini"
	"github.com/tjfontaine/toolchat/internal/history"
	"github.com/tjfontaine/toolchat/internal/server"
	"github.com/tjfontaine/toolchat/internal/storage"
	"github.com/tjfontaine/toolchat/internal/storage/memory"
	"github.com/tjfontaine/toolchat/internal/storage/sqldb"
	"github.com/tjfontaine/toolchat/internal/telemetry"
	"github.com/tjfontaine/toolchat/internal/tools"
)

const serviceName = "toolchat"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: ./config.yaml if present)")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("toolchat stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(telemetry.Options{
		ServiceName: serviceName,
		Enabled:     cfg.Telemetry.Enabled,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	products, closer, err := openCatalog(cfg.Catalog)
	if err != nil {
		return err
	}
	defer closer.Close()

	locale := tools.ResolveLocale(cfg.Chat.Locale)
	registry, err := tools.NewBuiltinRegistry(tools.Deps{
		Products: products,
		Locale:   locale,
	})
	if err != nil {
		return fmt.Errorf("register tools: %w", err)
	}

	model, err := gemini.New(ctx, gemini.Config{
		APIKey:            cfg.Gemini.APIKey,
		Model:             cfg.Gemini.Model,
		Temperature:       cfg.Gemini.Temperature,
		RequestsPerSecond: cfg.Gemini.RequestsPerSecond,
		Burst:             cfg.Gemini.Burst,
	}, logger)
	if err != nil {
		return err
	}

	policy, err := dialogue.ParsePolicy(cfg.Chat.ToolCallPolicy)
	if err != nil {
		return err
	}

	orchestrator := dialogue.New(model, registry, dialogue.Options{
		SystemInstruction: cfg.Chat.SystemInstruction,
		Policy:            policy,
		CallTimeout:       cfg.Gemini.CallTimeout,
		MaxRetries:        cfg.Gemini.MaxRetries,
		Budget:            history.NewBudget(cfg.Chat.MaxHistoryTokens),
		Logger:            logger,
	})

	srv := server.New(server.Config{
		Port:              cfg.Server.Port,
		RequestTimeout:    cfg.Server.RequestTimeout,
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.Burst,
	}, logger)
	frontdoor.Mount(srv.Router, chat.NewHandler(orchestrator, registry, logger).Registrations())

	logger.Info("toolchat configured",
		slog.String("model", model.Model()),
		slog.String("catalog", cfg.Catalog.Type),
		slog.String("tool_call_policy", string(policy)),
		slog.String("locale", locale.String()),
		slog.Int("tools", len(registry.Declarations())),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server shutdown complete")
	return <-errCh
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openCatalog(cfg config.CatalogConfig) (storage.ProductLookup, io.Closer, error) {
	switch cfg.Type {
	case "sqlite":
		store, err := sqldb.NewSQLite(cfg.Path, storage.DefaultProducts())
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite catalog: %w", err)
		}
		return store, store, nil
	case "memory", "":
		return memory.NewDefault(), nopCloser{}, nil
	default:
		return nil, nil, errors.New("unknown catalog type " + cfg.Type)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
