package redis

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/cache"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/filter"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) (*Backend, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBackend(client), srv
}

func TestBackend_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	b, srv := newTestBackend(t)

	_, err := b.Get(ctx, "tasks:u:f")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, b.Set(ctx, "tasks:u:f", []byte(`[]`), 5*time.Minute))
	got, err := b.Get(ctx, "tasks:u:f")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)
	assert.Equal(t, 5*time.Minute, srv.TTL("tasks:u:f"))

	require.NoError(t, b.Delete(ctx, "tasks:u:f", "does-not-exist"))
	assert.False(t, srv.Exists("tasks:u:f"))
	require.NoError(t, b.Delete(ctx))
}

func TestBackend_Expiry(t *testing.T) {
	ctx := context.Background()
	b, srv := newTestBackend(t)

	require.NoError(t, b.Set(ctx, "k", []byte("v"), time.Minute))
	srv.FastForward(time.Minute)

	_, err := b.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestBackend_Registry(t *testing.T) {
	ctx := context.Background()
	b, srv := newTestBackend(t)

	require.NoError(t, b.AddMember(ctx, "tasks:u:keys", "tasks:u:a", time.Hour))
	require.NoError(t, b.AddMember(ctx, "tasks:u:keys", "tasks:u:b", 24*time.Hour))

	members, err := b.Members(ctx, "tasks:u:keys")
	require.NoError(t, err)
	sort.Strings(members)
	assert.Equal(t, []string{"tasks:u:a", "tasks:u:b"}, members)
	assert.Equal(t, 24*time.Hour, srv.TTL("tasks:u:keys"))

	members, err = b.Members(ctx, "tasks:nobody:keys")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestBackend_ServerDown(t *testing.T) {
	ctx := context.Background()
	b, srv := newTestBackend(t)
	srv.Close()

	_, err := b.Get(ctx, "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrMiss)
}

func TestBackend_WithIndex(t *testing.T) {
	ctx := context.Background()
	b, srv := newTestBackend(t)
	ix := cache.NewIndex(b, cache.Options{}, nil)
	userID := uuid.New()
	calls := 0
	compute := func(context.Context) ([]domain.Task, error) {
		calls++
		return []domain.Task{{ID: uuid.New(), UserID: userID, Title: "Call mum", Category: domain.CategoryPersonal}}, nil
	}

	for i := 0; i < 2; i++ {
		got, err := ix.GetOrCompute(ctx, userID, filter.Params{}, compute)
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	assert.Equal(t, 1, calls)
	assert.True(t, srv.Exists(cache.RegistryKey(userID)))

	require.NoError(t, ix.InvalidateUser(ctx, userID))
	assert.False(t, srv.Exists(cache.RegistryKey(userID)))
	assert.False(t, srv.Exists(cache.Key(userID, filter.Params{}.Fingerprint())))
}

func TestConnect(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+srv.Addr()+"/0")
	require.NoError(t, err)
	_ = client.Close()

	_, err = Connect(context.Background(), "not a url")
	assert.Error(t, err)
}
