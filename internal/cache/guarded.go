package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("cache unavailable")

// BreakerConfig configures GuardedBackend.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

// DefaultBreakerConfig returns the breaker settings used when none are configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
	}
}

// GuardedBackend wraps a Backend with a circuit breaker. While the breaker
// is open every call fails immediately with ErrUnavailable.
type GuardedBackend struct {
	inner   Backend
	breaker *gobreaker.CircuitBreaker[any]
}

var _ Backend = (*GuardedBackend)(nil)

// NewGuardedBackend wraps inner. A nil logger defaults to slog.Default().
func NewGuardedBackend(inner Backend, cfg BreakerConfig, logger *slog.Logger) *GuardedBackend {
	if inner == nil {
		panic("inner backend cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultBreakerConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	settings := gobreaker.Settings{
		Name:        "cache",
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrMiss) || errors.Is(err, context.Canceled)
		},
	}

	return &GuardedBackend{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// State returns the current breaker state.
func (g *GuardedBackend) State() gobreaker.State {
	return g.breaker.State()
}

// Get implements Backend.
func (g *GuardedBackend) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := g.execute(func() (any, error) {
		return g.inner.Get(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	data, _ := v.([]byte)
	return data, nil
}

// Set implements Backend.
func (g *GuardedBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := g.execute(func() (any, error) {
		return nil, g.inner.Set(ctx, key, value, ttl)
	})
	return err
}

// Delete implements Backend.
func (g *GuardedBackend) Delete(ctx context.Context, keys ...string) error {
	_, err := g.execute(func() (any, error) {
		return nil, g.inner.Delete(ctx, keys...)
	})
	return err
}

// AddMember implements Backend.
func (g *GuardedBackend) AddMember(ctx context.Context, setKey, member string, ttl time.Duration) error {
	_, err := g.execute(func() (any, error) {
		return nil, g.inner.AddMember(ctx, setKey, member, ttl)
	})
	return err
}

// Members implements Backend.
func (g *GuardedBackend) Members(ctx context.Context, setKey string) ([]string, error) {
	v, err := g.execute(func() (any, error) {
		return g.inner.Members(ctx, setKey)
	})
	if err != nil {
		return nil, err
	}
	members, _ := v.([]string)
	return members, nil
}

func (g *GuardedBackend) execute(fn func() (any, error)) (any, error) {
	v, err := g.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return v, err
}
