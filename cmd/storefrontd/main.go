// storefrontd serves order status, shipment tracking and return requests
// for a WooCommerce storefront, and ingests payment gateway callbacks.
// Designed for Cloud Run deployment with stateless operation.
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

	"storefront-tracker/internal/config"
	"storefront-tracker/internal/flight"
	"storefront-tracker/internal/handler"
	"storefront-tracker/internal/middleware"
	"storefront-tracker/internal/woocommerce"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Initialize structured logger
	logger := initLogger(cfg)

	logger.Info("configuration loaded",
		slog.String("merchant_id", cfg.MerchantID),
		slog.String("environment", cfg.Environment),
		slog.String("store_domain", cfg.Merchant.StoreDomain),
		slog.String("api_version", cfg.Merchant.APIVersion),
		slog.Duration("upstream_timeout", cfg.UpstreamTimeout),
	)

	store, err := woocommerce.New(woocommerce.Config{
		StoreURL:   cfg.Merchant.StoreURL,
		APIKey:     cfg.Merchant.APIKey,
		APISecret:  cfg.Merchant.APISecret,
		APIVersion: cfg.Merchant.APIVersion,
		Timeout:    cfg.UpstreamTimeout,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating woocommerce client: %w", err)
	}

	h := handler.New(store, handler.Config{
		Currency: cfg.Merchant.Currency,
		Timeout:  cfg.UpstreamTimeout,
	}, logger)

	// Setup routes
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Apply middleware chain: recovery → flight → logging → rate limit → handler
	// Recovery must be outermost to catch panics from logging middleware
	// Flight runs before logging so request logs carry the token
	httpHandler := middleware.Chain(
		middleware.Recovery(logger),
		flight.Middleware(logger),
		middleware.Logging(logger),
		middleware.RateLimit(middleware.RateLimitConfig{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		}),
	)(mux)

	// Create HTTP server with timeouts
	// WriteTimeout covers a return submission: one projection plus one upload
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Channel for server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("addr", server.Addr),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			// Force close if graceful shutdown fails
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	// JSON for production (Cloud Logging compatible), text for development
	var logger *slog.Logger
	if cfg.Environment == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	slog.SetDefault(logger)
	return logger
}
