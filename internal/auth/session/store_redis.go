package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"greensquirrel/pkg/platform/sentinel"
)

const pendingSessionKeyPrefix = "pairing:session:"

// RedisStore is the shared-store implementation for multi-instance
// deployments. GETDEL makes Consume atomic across instances, and Redis TTLs
// replace the sweep.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed pairing session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, pending *PendingSession) error {
	raw, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pairing session: %w", err)
	}
	ttl := time.Until(pending.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("pairing session: %w", sentinel.ErrExpired)
	}
	key := pendingSessionKeyPrefix + pending.Token
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("store pairing session: %w", err)
	}
	return nil
}

// Consume atomically fetches and deletes the session. Redis expiry means a
// stale token is simply absent, which callers treat the same as expired.
func (s *RedisStore) Consume(ctx context.Context, token string, now time.Time) (*PendingSession, error) {
	key := pendingSessionKeyPrefix + token
	raw, err := s.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("pairing session: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume pairing session: %w", err)
	}

	var pending PendingSession
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, fmt.Errorf("decode pairing session: %w", err)
	}
	if pending.ExpiresAt.Before(now) {
		return nil, fmt.Errorf("pairing session: %w", sentinel.ErrExpired)
	}
	return &pending, nil
}

// DeleteExpired is a no-op: Redis TTLs evict stale sessions.
func (s *RedisStore) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

var _ Store = (*RedisStore)(nil)
