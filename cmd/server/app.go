package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/phrazzld/taskflow-api/internal/api/middleware"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/cache"
	"github.com/phrazzld/taskflow-api/internal/platform/eventbus"
	"github.com/phrazzld/taskflow-api/internal/platform/memory"
	"github.com/phrazzld/taskflow-api/internal/platform/mongodb"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/platform/ratelimit"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// backend is the storage selected by database.driver.
type backend interface {
	store.TaskStore
	store.Pinger
}

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	userService service.UserService
	taskService service.TaskService
	jwtService  auth.JWTService
	pinger      store.Pinger

	// limiter is nil when rate limiting is disabled.
	limiter middleware.Limiter

	// closers release external connections; they run concurrently on shutdown.
	closers map[string]gfshutdown.Operation
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *application, err error) {
	app = &application{
		config:  cfg,
		logger:  logger,
		closers: make(map[string]gfshutdown.Operation),
	}
	defer func() {
		if err != nil {
			app.close(context.Background())
		}
	}()

	users, tasks, err := app.openStores(ctx)
	if err != nil {
		return nil, err
	}
	app.pinger = tasks

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.userService, err = service.NewUserService(users, auth.NewBcryptHasher(cfg.Auth.BcryptCost), app.jwtService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	var taskOpts []service.TaskServiceOption

	if cfg.Cache.Enabled() {
		client, err := cache.Connect(ctx, cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.closers["redis"] = func(context.Context) error { return client.Close() }

		statsCache := cache.NewStatsCache(client, time.Duration(cfg.Cache.StatsTTLSeconds)*time.Second, logger)
		emitter.RegisterHandler(statsCache)
		taskOpts = append(taskOpts, service.WithStatsCache(statsCache))
		logger.Info("stats cache enabled", "ttl_seconds", cfg.Cache.StatsTTLSeconds)

		if cfg.RateLimit.Enabled {
			app.limiter = ratelimit.NewLimiter(client, cfg.RateLimit.Requests,
				time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
			logger.Info("auth rate limiting enabled",
				"requests", cfg.RateLimit.Requests,
				"window_seconds", cfg.RateLimit.WindowSeconds)
		}
	} else if cfg.RateLimit.Enabled {
		logger.Warn("rate limiting requires cache.redis_addr, auth endpoints are not rate limited")
	}

	if cfg.Events.NATSURL != "" {
		conn, err := eventbus.Connect(cfg.Events.NATSURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to nats: %w", err)
		}
		app.closers["nats"] = func(context.Context) error { return conn.Drain() }
		emitter.RegisterHandler(eventbus.NewPublisher(conn, cfg.Events.SubjectPrefix, logger))
		logger.Info("task events published to nats", "subject_prefix", cfg.Events.SubjectPrefix)
	}

	app.taskService, err = service.NewTaskService(tasks, emitter, logger, taskOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	return app, nil
}

// openStores connects the configured storage backend.
func (app *application) openStores(ctx context.Context) (store.UserStore, backend, error) {
	cfg := app.config.Database
	switch cfg.Driver {
	case config.DriverMemory:
		app.logger.Warn("using the in-memory store, data is lost on restart")
		return memory.NewUserStore(app.logger), memory.NewTaskStore(app.logger), nil

	case config.DriverPostgres:
		db, err := openPostgres(ctx, cfg.URL, app.logger)
		if err != nil {
			return nil, nil, err
		}
		app.closers["postgres"] = func(context.Context) error { return db.Close() }
		return postgres.NewPostgresUserStore(db, app.logger), postgres.NewPostgresTaskStore(db, app.logger), nil

	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, cfg.URL, cfg.Name, app.logger)
		if err != nil {
			return nil, nil, err
		}
		app.closers["mongo"] = client.Disconnect
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return nil, nil, err
		}
		return mongodb.NewMongoUserStore(db, app.logger), mongodb.NewMongoTaskStore(db, app.logger), nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// close runs every closer, logging failures.
func (app *application) close(ctx context.Context) {
	for name, closeFn := range app.closers {
		if err := closeFn(ctx); err != nil {
			app.logger.Error("failed to close resource", "resource", name, "error", err)
		}
	}
}
