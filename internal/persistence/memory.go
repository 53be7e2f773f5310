package persistence

import (
	"context"
	"sync"
	"time"
)

// sweepInterval is how often the background sweep removes expired records.
// Expiry is also checked lazily on every read, so the sweep only bounds
// memory growth from abandoned sessions.
const sweepInterval = 1 * time.Minute

// record holds stored bytes with their expiration deadline.
type record struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore implements Store with a mutex-guarded in-process map.
// Records expire lazily on read and via a background sweep goroutine.
//
// MemoryStore does not survive process restarts and is not shared across
// nodes; it exists for tests and for running without a Redis backend.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]record

	cancelSweep context.CancelFunc
	sweepDone   chan struct{}

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewMemoryStore creates an empty MemoryStore and starts its sweep
// goroutine. Call Close to stop it.
func NewMemoryStore() *MemoryStore {
	ctx, cancel := context.WithCancel(context.Background())

	s := &MemoryStore{
		records:     make(map[string]record),
		cancelSweep: cancel,
		sweepDone:   make(chan struct{}),
		now:         time.Now,
	}

	go s.sweepLoop(ctx)

	return s
}

// Get implements Store. An expired record is removed and reported as a miss.
func (s *MemoryStore) Get(_ context.Context, sessionID string) ([]byte, bool, error) {
	s.mu.RLock()
	rec, ok := s.records[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if s.now().After(rec.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have
		// refreshed the record.
		if cur, ok := s.records[sessionID]; ok && s.now().After(cur.expiresAt) {
			delete(s.records, sessionID)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	data := make([]byte, len(rec.data))
	copy(data, rec.data)
	return data, true, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, sessionID string, data []byte, ttl time.Duration) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[sessionID] = record{
		data:      stored,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Touch implements Store. Touching a missing or expired record is a no-op.
func (s *MemoryStore) Touch(_ context.Context, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[sessionID]
	if !ok || s.now().After(rec.expiresAt) {
		return nil
	}
	rec.expiresAt = s.now().Add(ttl)
	s.records[sessionID] = rec
	return nil
}

// Count returns the number of stored records, including any not yet swept.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close stops the sweep goroutine and waits for it to finish.
func (s *MemoryStore) Close() error {
	s.cancelSweep()
	<-s.sweepDone
	return nil
}

// sweepLoop periodically removes expired records.
func (s *MemoryStore) sweepLoop(ctx context.Context) {
	defer close(s.sweepDone)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepExpired()
		}
	}
}

// sweepExpired removes all records whose deadline has passed.
func (s *MemoryStore) sweepExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, rec := range s.records {
		if now.After(rec.expiresAt) {
			delete(s.records, id)
		}
	}
}
