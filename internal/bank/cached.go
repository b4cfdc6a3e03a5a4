package bank

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/p-n-ai/stemblast/internal/quiz"
)

const cacheKeyPrefix = "bank:"

// RowCache is the byte cache CachedStore stores decoded banks in.
// A miss is reported as ok == false with a nil error.
type RowCache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedStore serves banks from a RowCache, loading from the inner store on
// a miss. Cache failures are logged and bypassed; missing banks are not
// cached.
type CachedStore struct {
	inner Store
	cache RowCache
	ttl   time.Duration
}

// NewCachedStore wraps inner with cache. Entries live for ttl.
func NewCachedStore(inner Store, cache RowCache, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, cache: cache, ttl: ttl}
}

func (s *CachedStore) Load(ctx context.Context, key string) ([]quiz.RawRecord, error) {
	ck := cacheKeyPrefix + key

	data, ok, err := s.cache.Get(ctx, ck)
	switch {
	case err != nil:
		slog.Warn("bank cache read failed", "bank_key", key, "error", err)
	case ok:
		var rows []quiz.RawRecord
		if err := json.Unmarshal(data, &rows); err == nil {
			return rows, nil
		}
		slog.Warn("discarding undecodable cached bank", "bank_key", key)
	}

	rows, err := s.inner.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rows); err == nil {
		if err := s.cache.Set(ctx, ck, data, s.ttl); err != nil {
			slog.Warn("bank cache write failed", "bank_key", key, "error", err)
		}
	}
	return rows, nil
}
