package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/orbital-guard/sentinel/internal/api"
	"github.com/orbital-guard/sentinel/internal/config"
	"github.com/orbital-guard/sentinel/internal/detectorfactory"
	"github.com/orbital-guard/sentinel/internal/engine"
	"github.com/orbital-guard/sentinel/internal/monitor"
	"github.com/orbital-guard/sentinel/internal/registry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present, real environment wins
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Station Sentinel API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("detector", cfg.DetectorProvider),
	)

	reg := registry.Default()

	// Detection engine. A failed model load keeps the server up with
	// detection degraded to empty results.
	det, err := detectorfactory.New(context.Background(), cfg, reg)
	if err != nil {
		return fmt.Errorf("failed to create detector: %w", err)
	}

	eng := engine.New(det, reg, logger)
	if err := eng.Load(cfg.ModelPath, cfg.FallbackModelPath); err != nil {
		logger.Warn("detection model unavailable, running degraded",
			slog.Any("error", err),
		)
	}

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Registry:        reg,
		Engine:          eng,
		Feed:            monitor.NewSampleFeed(reg),
		MonitorInterval: cfg.MonitorInterval,
	})
	router.Setup()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")

	return nil
}
