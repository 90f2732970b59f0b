/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance productivity & payroll server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Initialize SQLite store
  3. Apply the policy file, if one is configured
  4. Create API handler and router
  5. Start the month-end report scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (environment fallback in brackets):
  -port                HTTP server port [APP_PORT] (default: 8080)
  -db                  SQLite database path [DB_PATH] (default: attendance.db)
                       Use ":memory:" for in-memory database
  -policy              Policy file applied at startup [POLICY_FILE]
  -scheduler           Run the month-end scheduler [SCHEDULER_ENABLED]
  -scheduler-interval  Scheduler check interval [SCHEDULER_INTERVAL]

  Also: LOG_LEVEL (debug|info|warn|error), APP_ENV, CORS_ORIGINS

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  ./server -db="./data/attendance.db" -policy=./config/policy.yaml
  ./server -db=":memory:" -scheduler=false

SEE ALSO:
  - config/config.go: Configuration sources
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	handler := api.NewHandler(store, logger)

	// Apply the policy file
	if cfg.PolicyFile != "" {
		opts, err := handler.PolicyFactory.LoadFile(cfg.PolicyFile)
		if err != nil {
			return fmt.Errorf("policy file: %w", err)
		}
		if err := handler.ApplyPolicy(context.Background(), opts); err != nil {
			return fmt.Errorf("apply policy file: %w", err)
		}
	}

	routerOpts := api.DefaultRouterOptions()
	routerOpts.AllowedOrigins = cfg.AllowedOrigins
	routerOpts.LogLevel = cfg.LogLevel
	router := api.NewRouter(handler, routerOpts)

	scheduler := api.NewMonthlyReportScheduler(handler)
	scheduler.CheckInterval = cfg.SchedulerInterval
	scheduler.Enabled = cfg.SchedulerEnabled
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "db", cfg.DBPath, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-quit:
	}

	logger.Info("shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
