//go:build integration

package persistence

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// These tests require a running Redis instance.
// Run with: REDIS_URL=redis://localhost:6379/0 go test -tags=integration ./internal/persistence/...

// newIntegrationStore connects to the Redis named by REDIS_URL, skipping
// the test when none is configured or reachable.
func newIntegrationStore(t *testing.T) *RedisStore {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := NewRedisStore(ctx, url)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIntegrationRedisStore_PutGet(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()
	key := "it-" + uuid.NewString()

	require.NoError(t, store.Put(ctx, key, []byte("payload"), time.Minute))

	data, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), data)
}

func TestIntegrationRedisStore_MissIsNotAnError(t *testing.T) {
	store := newIntegrationStore(t)

	_, ok, err := store.Get(context.Background(), "it-"+uuid.NewString())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIntegrationRedisStore_TTLExpiry(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()
	key := "it-" + uuid.NewString()

	require.NoError(t, store.Put(ctx, key, []byte("payload"), time.Second))
	time.Sleep(1500 * time.Millisecond)

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok, "expired record must read as a miss")
}

func TestIntegrationRedisStore_TouchExtends(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()
	key := "it-" + uuid.NewString()

	require.NoError(t, store.Put(ctx, key, []byte("payload"), time.Second))
	require.NoError(t, store.Touch(ctx, key, time.Minute))
	time.Sleep(1500 * time.Millisecond)

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok, "touched record must outlive its original TTL")
}
