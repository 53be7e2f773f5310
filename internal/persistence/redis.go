package persistence

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces session records within the Redis keyspace.
	keyPrefix = "session:"

	// opTimeout bounds every Redis operation so a hung connection cannot
	// stall a request indefinitely.
	opTimeout = 5 * time.Second
)

// RedisStore implements Store on a Redis backend. Expiration is delegated
// to Redis key TTLs, so expired records disappear server-side and lookups
// after expiry are plain misses.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore from a connection URL
// (e.g. "redis://localhost:6379/0") and verifies connectivity with a ping.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(ErrUnavailable, "ping: %v", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client. Used by tests.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get implements Store. redis.Nil is mapped to a miss; every other error
// surfaces as ErrUnavailable.
func (s *RedisStore) Get(ctx context.Context, sessionID string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(ErrUnavailable, "get %s: %v", sessionID, err)
	}
	return data, true, nil
}

// Put implements Store using SET with an expiration.
func (s *RedisStore) Put(ctx context.Context, sessionID string, data []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, keyPrefix+sessionID, data, ttl).Err(); err != nil {
		return errors.Wrapf(ErrUnavailable, "put %s: %v", sessionID, err)
	}
	return nil
}

// Touch implements Store using EXPIRE. Redis returns false for a missing
// key, which is treated as a successful no-op.
func (s *RedisStore) Touch(ctx context.Context, sessionID string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.Expire(ctx, keyPrefix+sessionID, ttl).Err(); err != nil {
		return errors.Wrapf(ErrUnavailable, "touch %s: %v", sessionID, err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
