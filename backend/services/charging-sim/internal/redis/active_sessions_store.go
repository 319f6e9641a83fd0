package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chargesim/backend/services/charging-sim/internal/models"
)

const keyPrefix = "chargesim:sessions:active:"

// ErrNotCached is returned by Get when the session is not mirrored.
var ErrNotCached = errors.New("session not cached")

// Store mirrors non-terminal sessions into redis so external tools can watch
// what is reserved or charging. The in-memory registry stays authoritative.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns redis-backed store. A zero ttl keeps keys forever.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(sessionID string) string {
	return keyPrefix + sessionID
}

// Save caches session.
func (s *Store) Save(ctx context.Context, session models.ChargingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.ID, err)
	}
	return s.client.Set(ctx, s.key(session.ID), data, s.ttl).Err()
}

// Get returns cached session.
func (s *Store) Get(ctx context.Context, sessionID string) (models.ChargingSession, error) {
	result, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ChargingSession{}, ErrNotCached
	}
	if err != nil {
		return models.ChargingSession{}, err
	}
	var session models.ChargingSession
	if err := json.Unmarshal(result, &session); err != nil {
		return models.ChargingSession{}, fmt.Errorf("decode cached session %s: %w", sessionID, err)
	}
	return session, nil
}

// Delete removes cached session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

// Name implements events.Sink.
func (s *Store) Name() string { return "redis" }

// Handle implements events.Sink: completed sessions leave the mirror, every
// other transition refreshes it.
func (s *Store) Handle(ctx context.Context, event models.SessionEvent) error {
	if event.Session.Status == models.SessionCompleted {
		return s.Delete(ctx, event.Session.ID)
	}
	return s.Save(ctx, event.Session)
}
