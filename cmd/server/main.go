package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blakestevenson/vodboard/internal/catalog"
	"github.com/blakestevenson/vodboard/internal/config"
	httpserver "github.com/blakestevenson/vodboard/internal/http"
	"github.com/blakestevenson/vodboard/internal/logging"
	"github.com/blakestevenson/vodboard/internal/secrets"
	"github.com/blakestevenson/vodboard/internal/servers"
	"github.com/blakestevenson/vodboard/internal/status"
	"github.com/blakestevenson/vodboard/internal/storage"
	"github.com/blakestevenson/vodboard/internal/xtream"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting vodboard server",
		zap.String("environment", cfg.Environment),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer backend.Close()

	key, err := cfg.CredentialKeyBytes()
	if err != nil {
		logger.Fatal("Invalid credential key", zap.Error(err))
	}
	box, err := secrets.NewBox(key)
	if err != nil {
		logger.Fatal("Failed to initialize credential sealing", zap.Error(err))
	}
	if !box.Enabled() {
		logger.Warn("CREDENTIAL_KEY not set, server passwords are stored in plaintext")
	}

	newClient := xtream.NewFactory(
		xtream.WithHTTPClient(&http.Client{Timeout: cfg.XtreamTimeout}),
		xtream.WithUserAgent(cfg.XtreamUserAgent),
		xtream.WithRateLimit(cfg.XtreamRateLimit),
		xtream.WithLogger(logger.With(zap.String("component", "xtream"))),
	)

	prober := status.NewProber(newClient, logger)
	serverService := servers.NewService(backend.Servers, box, prober, backend.Audit, logger)
	checker := status.NewChecker(serverService, prober, backend.Audit, logger, cfg.StatusCheckInterval)

	if cfg.StatusCheckInterval > 0 {
		if err := checker.Start(ctx); err != nil {
			logger.Fatal("Failed to start status checker", zap.Error(err))
		}
		defer checker.Stop()
	}

	pipeline := catalog.Pipeline{
		Search: catalog.SearchOptions{Threshold: cfg.SearchThreshold, Distance: cfg.SearchDistance},
		Locale: cfg.Locale(),
	}

	router := httpserver.NewRouter(serverService, checker, newClient, backend.Audit, httpserver.RouterConfig{
		CORSOrigin:        cfg.CORSOrigin,
		ExportConcurrency: cfg.ExportConcurrency,
		XtreamTimeout:     cfg.XtreamTimeout,
		Pipeline:          pipeline,
	}, logger)

	// Catalog and stats requests wait on at most two concurrent panel calls.
	// Exports extend their own deadline to fit the lookup fan-out.
	var writeTimeout time.Duration
	if cfg.XtreamTimeout > 0 {
		writeTimeout = 2*cfg.XtreamTimeout + 15*time.Second
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			zap.String("address", addr),
			zap.String("database", backend.Driver),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}

	case sig := <-shutdown:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				logger.Error("Failed to close server", zap.Error(err))
			}
		}

		logger.Info("Server stopped")
	}
}
