/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the reservation rule-resolution server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from the environment, then apply flag overrides
  2. Initialize the structured logger
  3. Initialize SQLite store
  4. Optionally load a seed file or demo scenario
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -addr      Listen address (APP_ADDR, default :8080)
  -db        SQLite database path (DB_PATH, default ./data/reservas.db)
             Use ":memory:" for in-memory database
  -seed      YAML seed applied at startup (SEED_FILE)
  -scenario  Demo scenario loaded at startup; resets the store

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/reservas.db"

  # Demo: in-memory database with the pousada-azul scenario
  ./server -db=":memory:" -scenario=pousada-azul

  # JSON logs for production
  LOG_FORMAT=json LOG_LEVEL=warn ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/

// Command server runs the reservation rule engine HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dcorazolla/reservas-sub002/api"
	"github.com/dcorazolla/reservas-sub002/booking"
	"github.com/dcorazolla/reservas-sub002/config"
	"github.com/dcorazolla/reservas-sub002/factory"
	"github.com/dcorazolla/reservas-sub002/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Flags
	addr := flag.String("addr", cfg.AppAddr, "HTTP listen address")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	seedFile := flag.String("seed", cfg.SeedFile, "YAML seed file applied at startup")
	scenario := flag.String("scenario", "", "demo scenario loaded at startup (resets the store)")
	flag.Parse()

	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	// Initialize store
	if *dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}
	store, err := sqlite.New(*dbPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	f := factory.New()
	service := booking.NewService(store, logger)
	handler := api.NewHandler(service, f, logger, cfg.MaxWindowDays)

	if *scenario != "" {
		if err := handler.LoadScenarioByID(ctx, *scenario); err != nil {
			return err
		}
	}
	if *seedFile != "" {
		seed, err := factory.LoadSeedFile(*seedFile)
		if err != nil {
			return err
		}
		if err := f.Apply(ctx, store, seed); err != nil {
			return fmt.Errorf("applying seed %s: %w", *seedFile, err)
		}
		logger.Info("seed applied", slog.String("file", *seedFile))
	}

	server := &http.Server{
		Addr:         *addr,
		Handler:      api.NewRouter(handler, cfg),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", *addr),
			slog.String("db", *dbPath),
			slog.Int("max_window_days", cfg.MaxWindowDays))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
