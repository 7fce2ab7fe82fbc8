package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/filter"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/platform/metrics"
)

// Default lifetimes of cached results and of the per-user key registry.
const (
	DefaultResultTTL   = 5 * time.Minute
	DefaultRegistryTTL = 24 * time.Hour
)

// Options configures an Index. Zero values fall back to the defaults.
type Options struct {
	ResultTTL   time.Duration
	RegistryTTL time.Duration
}

// ComputeFunc produces the authoritative result on a cache miss.
type ComputeFunc func(ctx context.Context) ([]domain.Task, error)

// Index caches task list results keyed by user and filter fingerprint and
// tracks, per user, every key it has handed out.
type Index struct {
	backend     Backend
	resultTTL   time.Duration
	registryTTL time.Duration
	logger      *slog.Logger
}

// NewIndex creates an Index over backend. A nil logger defaults to slog.Default().
func NewIndex(backend Backend, opts Options, log *slog.Logger) *Index {
	if backend == nil {
		panic("cache backend cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if opts.ResultTTL <= 0 {
		opts.ResultTTL = DefaultResultTTL
	}
	if opts.RegistryTTL <= 0 {
		opts.RegistryTTL = DefaultRegistryTTL
	}
	return &Index{
		backend:     backend,
		resultTTL:   opts.ResultTTL,
		registryTTL: opts.RegistryTTL,
		logger:      log.With(slog.String("component", "cache_index")),
	}
}

// Key returns the cache key of a user's result for a filter fingerprint.
func Key(userID uuid.UUID, fingerprint string) string {
	return fmt.Sprintf("tasks:%s:%s", userID, fingerprint)
}

// RegistryKey returns the key of the set listing a user's cache keys.
func RegistryKey(userID uuid.UUID) string {
	return fmt.Sprintf("tasks:%s:keys", userID)
}

// GetOrCompute returns the cached result for userID and params, or runs
// compute and caches what it returns. Errors from compute are returned and
// nothing is cached; cache errors are logged and treated as misses.
//
// The key is registered before the lookup so that an invalidation racing
// with this call can always find it.
func (ix *Index) GetOrCompute(
	ctx context.Context,
	userID uuid.UUID,
	params filter.Params,
	compute ComputeFunc,
) ([]domain.Task, error) {
	log := ix.loggerFor(ctx)
	key := Key(userID, params.Fingerprint())

	if err := ix.backend.AddMember(ctx, RegistryKey(userID), key, ix.registryTTL); err != nil {
		log.Warn("failed to register cache key",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}

	if tasks, ok := ix.lookup(ctx, log, key); ok {
		return tasks, nil
	}

	tasks, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	data, err := json.Marshal(tasks)
	if err != nil {
		log.Warn("failed to encode tasks for cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return tasks, nil
	}
	if err := ix.backend.Set(ctx, key, data, ix.resultTTL); err != nil {
		log.Warn("failed to store cached tasks",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
	return tasks, nil
}

func (ix *Index) lookup(ctx context.Context, log *slog.Logger, key string) ([]domain.Task, bool) {
	data, err := ix.backend.Get(ctx, key)
	switch {
	case errors.Is(err, ErrMiss):
		metrics.RecordCacheLookup(metrics.CacheMiss)
		return nil, false
	case err != nil:
		metrics.RecordCacheLookup(metrics.CacheError)
		log.Warn("cache lookup failed, recomputing",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		metrics.RecordCacheLookup(metrics.CacheError)
		log.Warn("discarding undecodable cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}

	metrics.RecordCacheLookup(metrics.CacheHit)
	log.Debug("cache hit", slog.String("key", key))
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, true
}

// InvalidateUser removes every cached result of userID along with the
// registry itself. Keys that already expired are ignored, so calling it
// repeatedly is harmless.
func (ix *Index) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	registry := RegistryKey(userID)

	keys, err := ix.backend.Members(ctx, registry)
	if err != nil {
		metrics.RecordCacheInvalidation(metrics.InvalidationError)
		return fmt.Errorf("failed to read cache registry: %w", err)
	}

	if err := ix.backend.Delete(ctx, append(keys, registry)...); err != nil {
		metrics.RecordCacheInvalidation(metrics.InvalidationError)
		return fmt.Errorf("failed to delete cached results: %w", err)
	}

	metrics.RecordCacheInvalidation(metrics.InvalidationOK)
	ix.loggerFor(ctx).Debug("invalidated cached results",
		slog.String("user_id", userID.String()),
		slog.Int("keys", len(keys)))
	return nil
}

func (ix *Index) loggerFor(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, ix.logger)
}
