package session

import (
	"context"
	"fmt"
	"time"
)

// ListCache is the list API RedisStore needs; *cache.Cache implements it.
type ListCache interface {
	AppendCapped(ctx context.Context, key string, limit int, ttl time.Duration, values ...string) error
	Tail(ctx context.Context, key string, n int) ([]string, error)
}

// RedisStore keeps each session's history in a capped Redis list whose TTL
// is refreshed on every append.
type RedisStore struct {
	cache ListCache
	limit int
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(cache ListCache, limit int, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: cache, limit: limit, ttl: ttl}
}

func (s *RedisStore) Recent(ctx context.Context, sessionID string) ([]string, error) {
	n := s.limit
	if n <= 0 {
		n = 100
	}
	vals, err := s.cache.Tail(ctx, storageKey(sessionID), n)
	if err != nil {
		return nil, fmt.Errorf("session history: %w", err)
	}
	return vals, nil
}

func (s *RedisStore) Append(ctx context.Context, sessionID, question string) error {
	if err := s.cache.AppendCapped(ctx, storageKey(sessionID), s.limit, s.ttl, question); err != nil {
		return fmt.Errorf("session append: %w", err)
	}
	return nil
}
