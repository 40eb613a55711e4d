// Package main implements the entry point for the Taskflow API server, a
// personal task manager exposing users and their tasks over a JSON REST API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	migrate := flag.String("migrate", "", "run a database migration command (up, down, reset, status, version) and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver)

	if *migrate != "" {
		if err := runMigrations(context.Background(), cfg, *migrate, l); err != nil {
			l.Error("migration failed", "error", err)
			os.Exit(1)
		}
		return
	}

	os.Exit(run(cfg, l))
}

// run starts the application and blocks until it has shut down, returning
// the process exit code.
func run(cfg *config.Config, l *slog.Logger) int {
	ctx := context.Background()

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		return 1
	}

	srv := newHTTPServer(cfg.Server, app.router())
	go func() {
		l.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	ops := map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			l.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	}
	for name, op := range app.closers {
		ops[name] = op
	}

	wait := gfshutdown.GracefulShutdown(ctx, shutdownTimeout, ops)
	code := <-wait
	l.Info("Server shutdown completed", "exit_code", code)
	return code
}

func runMigrations(ctx context.Context, cfg *config.Config, command string, l *slog.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations only apply to the %s driver, configured driver is %s",
			config.DriverPostgres, cfg.Database.Driver)
	}
	db, err := openPostgres(ctx, cfg.Database.URL, l)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return migratePostgres(ctx, db, command, l)
}
