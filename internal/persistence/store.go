// Package persistence provides the session store: a key-value mapping from
// session identifier to encoded conversation history, with sliding
// time-based expiration.
//
// The Store interface is the stable contract regardless of backing
// implementation. RedisStore is the production backend; MemoryStore backs
// tests and single-process deployments without Redis.
//
// A miss (key never existed, or its TTL elapsed) is signalled by ok=false
// with a nil error. Connectivity and backend failures are signalled by an
// error wrapping ErrUnavailable. Callers must not collapse the two: a store
// failure maps to a 503 at the HTTP boundary, never to a silently minted
// new session.
package persistence

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrUnavailable indicates the session store backend could not be reached
// or failed. It is distinct from a normal miss.
var ErrUnavailable = errors.New("persistence: session store unavailable")

// Store is a TTL-aware key-value store for session records.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the record for the given session ID.
	// ok is false when the key never existed or has expired; this is not
	// an error. An error wrapping ErrUnavailable is returned on backend
	// failure.
	Get(ctx context.Context, sessionID string) (data []byte, ok bool, err error)

	// Put writes or overwrites the record and (re)sets its expiration to
	// ttl from now.
	Put(ctx context.Context, sessionID string, data []byte, ttl time.Duration) error

	// Touch refreshes the record's expiration to ttl from now without
	// changing its content. Touching a missing record is a no-op.
	Touch(ctx context.Context, sessionID string, ttl time.Duration) error
}
