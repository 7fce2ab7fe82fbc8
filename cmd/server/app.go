package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/tasktrack/internal/cache"
	"github.com/phrazzld/tasktrack/internal/config"
	"github.com/phrazzld/tasktrack/internal/platform/memstore"
	"github.com/phrazzld/tasktrack/internal/platform/postgres"
	"github.com/phrazzld/tasktrack/internal/platform/redis"
	"github.com/phrazzld/tasktrack/internal/policy"
	"github.com/phrazzld/tasktrack/internal/service"
	"github.com/phrazzld/tasktrack/internal/service/auth"
	"github.com/phrazzld/tasktrack/internal/store"
)

// Store kinds selectable with --store.
const (
	storePostgres = "postgres"
	storeMemory   = "memory"
)

// application holds all the dependencies for our application
type application struct {
	config      *config.Config
	logger      *slog.Logger
	clock       func() time.Time
	db          *sql.DB
	redis       *goredis.Client
	taskStore   store.TaskStore
	pgStore     *postgres.PostgresTaskStore
	cacheIndex  *cache.Index
	jwtService  auth.JWTService
	taskService service.TaskService
}

// newApplication wires every dependency of the server. storeKind selects
// between the PostgreSQL store and the in-process memory store. Without a
// configured Redis URL list results are cached in process. A nil clock reads
// the wall clock in the configured timezone.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	storeKind string,
	clock func() time.Time,
) (*application, error) {
	if clock == nil {
		loc := cfg.Server.Location()
		clock = func() time.Time { return time.Now().In(loc) }
	}
	app := &application{
		config: cfg,
		logger: logger,
		clock:  clock,
	}

	switch storeKind {
	case storePostgres:
		db, err := setupAppDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		app.db = db
		app.pgStore = postgres.NewPostgresTaskStore(db, logger)
		app.taskStore = app.pgStore
	case storeMemory:
		app.taskStore = memstore.NewTaskStore(app.clock)
		logger.Warn("Using in-memory task store; data is lost on restart")
	default:
		return nil, fmt.Errorf("unknown store %q (want %s or %s)", storeKind, storePostgres, storeMemory)
	}

	var backend cache.Backend
	if cfg.Cache.RedisURL != "" {
		client, err := redis.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			app.cleanup()
			return nil, err
		}
		app.redis = client
		backend = redis.NewBackend(client)
		logger.Info("Result cache backed by Redis")
	} else {
		backend = cache.NewMemoryBackend(app.clock)
		logger.Info("Result cache held in process")
	}

	guarded := cache.NewGuardedBackend(backend, cache.BreakerConfig{
		FailureThreshold: cfg.Cache.BreakerFailureThreshold,
		Timeout:          cfg.Cache.BreakerTimeout,
	}, logger)
	app.cacheIndex = cache.NewIndex(guarded, cache.Options{
		ResultTTL:   cfg.Cache.ResultTTL,
		RegistryTTL: cfg.Cache.RegistryTTL,
	}, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.jwtService = jwtService

	taskService, err := service.NewTaskService(
		app.taskStore,
		app.cacheIndex,
		policy.OwnerPolicy{},
		app.clock,
		logger,
	)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}
	app.taskService = taskService

	return app, nil
}

// cleanup releases external connections held by the application.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Failed to close Redis connection", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
	}
}
