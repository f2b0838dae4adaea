package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/actions"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/config"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/observability"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/policy"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/service"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/store"
	handler "github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/transport/http"
	"github.com/akflixs/AI-MentalHealth-Voice-Assistant/internal/transport/ws"
)

func main() {
	if err := run(); err != nil {
		slog.Error("assistant backend failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("starting assistant backend",
		"http_port", cfg.HTTPPort,
		"database", cfg.DatabaseURL,
		"policy_file", cfg.PolicyFile,
	)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer db.Close()

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.LoadEngine(ctx, cfg.PolicyFile)
	if err != nil {
		return fmt.Errorf("initialize policy engine: %w", err)
	}

	// Initialize service
	svc := service.New(db, actions.NewDefaultRegistry(), policyEngine, cfg, logger)

	server := handler.NewServer(svc)
	server.GET("/ws", ws.NewServer(cfg, svc, logger).HandleWebSocket)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	logger.Info("api started", "port", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("start server: %w", err)
	}

	logger.Info("shutting down assistant backend")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server did not shut down gracefully", "error", err)
	}

	logger.Info("assistant backend stopped")
	return nil
}
