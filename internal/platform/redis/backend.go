package redis

import (
	"context"
	"errors"
	"time"

	"github.com/phrazzld/tasktrack/internal/cache"
	goredis "github.com/redis/go-redis/v9"
)

// Backend implements cache.Backend on a Redis server. Registries are Redis
// sets; adding a member and refreshing the set's TTL happen in one MULTI.
type Backend struct {
	client goredis.UniversalClient
}

var _ cache.Backend = (*Backend)(nil)

// NewBackend wraps client.
func NewBackend(client goredis.UniversalClient) *Backend {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &Backend{client: client}
}

// Get implements cache.Backend.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, cache.ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set implements cache.Backend.
func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

// Delete implements cache.Backend.
func (b *Backend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return b.client.Del(ctx, keys...).Err()
}

// AddMember implements cache.Backend.
func (b *Backend) AddMember(ctx context.Context, setKey, member string, ttl time.Duration) error {
	_, err := b.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.SAdd(ctx, setKey, member)
		pipe.Expire(ctx, setKey, ttl)
		return nil
	})
	return err
}

// Members implements cache.Backend.
func (b *Backend) Members(ctx context.Context, setKey string) ([]string, error) {
	return b.client.SMembers(ctx, setKey).Result()
}
