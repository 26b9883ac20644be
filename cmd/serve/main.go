// Package main provides the tabletalk HTTP server: question answering
// over ORKG comparisons with optional pull (SSE) or push (websocket)
// streaming of the backend's intermediate thoughts.
//
// Configuration is via environment variables:
//
//	TABLETALK_PORT              - Server port (default: 8000)
//	TABLETALK_LOG_LEVEL         - debug, info, warn, error (default: info)
//	TABLETALK_PROVIDER          - openai, anthropic, or google (default: openai)
//	TABLETALK_MODEL             - Model override (optional)
//	TABLETALK_STRUCTURED_BUDGET - STRUCTURED execution budget (default: 30s)
//	ORKG_HOST                   - Comparison source host (default: https://orkg.org)
//	OPENAI_API_KEY              - OpenAI API key
//	ANTHROPIC_API_KEY           - Anthropic API key
//	GOOGLE_API_KEY              - Google API key
//
// Usage:
//
//	OPENAI_API_KEY=... go run ./cmd/serve
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ai "github.com/tabletalk-ai/tabletalk"
	"github.com/tabletalk-ai/tabletalk/compare"
	"github.com/tabletalk-ai/tabletalk/dataset/orkg"
	"github.com/tabletalk-ai/tabletalk/provider/anthropic"
	"github.com/tabletalk-ai/tabletalk/provider/google"
	"github.com/tabletalk-ai/tabletalk/provider/openai"
	"github.com/tabletalk-ai/tabletalk/ws"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	factory, err := buildFactory(cfg)
	if err != nil {
		log.Fatalf("Provider error: %v", err)
	}

	source := orkg.New(cfg.ORKGHost, orkg.WithLogger(logger))
	manager := ws.NewManager(logger)

	svc := compare.New(source, manager, compare.Config{
		Factory:          factory,
		Model:            cfg.Model,
		APIKey:           cfg.APIKey(),
		StructuredBudget: cfg.StructuredBudget,
		Logger:           logger,
	})

	handler := NewHandler(svc, manager)

	mux := http.NewServeMux()
	mux.HandleFunc("/query", handler.Query)
	mux.HandleFunc("/query/stream", handler.QueryStream)
	mux.HandleFunc("/query/push", handler.QueryPush)
	mux.HandleFunc("/ws", handler.Connect)
	mux.HandleFunc("/health", healthHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE and websockets need no write timeout
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("tabletalk server starting",
		"port", cfg.Port,
		"provider", cfg.Provider,
		"orkg_host", cfg.ORKGHost,
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	logger.Info("server stopped")
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func buildFactory(cfg *Config) (ai.ReasonerFactory, error) {
	switch cfg.Provider {
	case "openai":
		return openai.Factory, nil
	case "anthropic":
		return anthropic.Factory, nil
	case "google":
		return google.Factory, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
