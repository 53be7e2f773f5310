package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tagarela/internal/persistence"
)

// SessionTTL is the sliding expiration applied to stored sessions.
// Every read and write pushes the deadline 30 minutes from now.
const SessionTTL = 1800 * time.Second

// Manager resolves inbound session identifiers to conversation histories and
// commits updated histories back to the session store. It owns a history
// only for the duration of a single request; between requests the store is
// the single source of truth.
type Manager struct {
	store  persistence.Store
	ttl    time.Duration
	logger zerolog.Logger
}

// NewManager creates a Manager backed by the given store, using SessionTTL.
func NewManager(store persistence.Store, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		ttl:    SessionTTL,
		logger: logger,
	}
}

// NewManagerWithTTL creates a Manager with a custom TTL. Used by tests to
// exercise expiration without waiting 30 minutes.
func NewManagerWithTTL(store persistence.Store, ttl time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Resolve maps a requested session identifier to a (sessionID, history) pair.
//
// If requested names a stored, decodable, non-empty history, that session is
// continued and its expiration refreshed. In every other case (no identifier,
// miss, expired record, corrupt record, or empty stored history) a fresh
// identifier is minted with an empty history. Nothing is written to the
// store for a fresh session; a session with no committed turn must not
// persist.
//
// A store failure is returned as an error wrapping persistence.ErrUnavailable
// and must not be treated as "start fresh": doing so would silently mask
// data loss.
func (m *Manager) Resolve(ctx context.Context, requested string) (string, History, error) {
	if requested != "" {
		data, ok, err := m.store.Get(ctx, requested)
		if err != nil {
			return "", nil, err
		}
		if ok {
			history, err := DecodeHistory(data)
			switch {
			case err != nil:
				// A corrupt record is unrecoverable; treat it as a miss
				// and start over rather than failing the request.
				m.logger.Warn().
					Str("session_id", requested).
					Err(err).
					Msg("discarding undecodable session record")
			case len(history) > 0:
				if err := m.store.Touch(ctx, requested, m.ttl); err != nil {
					return "", nil, err
				}
				m.logger.Info().
					Str("session_id", requested).
					Int("turns", len(history)).
					Msg("continuing chat session")
				return requested, history, nil
			default:
				// Stored-but-empty history: treated the same as not
				// found. An empty session carries no context worth
				// continuing, so a fresh identifier is minted.
			}
		}
	}

	sessionID := uuid.NewString()
	m.logger.Info().Str("session_id", sessionID).Msg("starting new chat session")
	return sessionID, History{}, nil
}

// Commit encodes the updated history and writes it to the store under the
// session identifier, resetting the sliding expiration. It is called only
// after a successful stateful text exchange; the stateless image flow never
// commits.
func (m *Manager) Commit(ctx context.Context, sessionID string, history History) error {
	data, err := EncodeHistory(history)
	if err != nil {
		return err
	}
	if err := m.store.Put(ctx, sessionID, data, m.ttl); err != nil {
		return err
	}
	m.logger.Info().
		Str("session_id", sessionID).
		Int("turns", len(history)).
		Msg("session history saved")
	return nil
}
