// Package session remembers which questions a learner session has recently
// been served, so the server can avoid repeats even when the client sends no
// history. Nothing here outlives the configured TTL.
package session

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

const keyPrefix = "session:"

// Store records recently served question texts per session.
type Store interface {
	// Recent returns the remembered questions, oldest first.
	Recent(ctx context.Context, sessionID string) ([]string, error)
	// Append remembers a served question.
	Append(ctx context.Context, sessionID, question string) error
}

// HashID derives the opaque identifier stored and logged for a session, so
// raw client identifiers never reach the cache or the database.
func HashID(sessionID string) string {
	sum := blake2b.Sum256([]byte(strings.TrimSpace(sessionID)))
	return hex.EncodeToString(sum[:16])
}

func storageKey(sessionID string) string {
	return keyPrefix + HashID(sessionID)
}

// Merge combines server-remembered and client-sent history. Duplicates are
// dropped, keeping the most recent occurrence; the result is oldest first
// and at most limit long (limit <= 0 means unbounded).
func Merge(remembered, client []string, limit int) []string {
	all := make([]string, 0, len(remembered)+len(client))
	all = append(all, remembered...)
	all = append(all, client...)

	seen := make(map[string]bool, len(all))
	out := make([]string, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		q := strings.TrimSpace(all[i])
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

const (
	// sweepEvery is how many appends pass between scans for expired sessions.
	sweepEvery = 256
	// defaultMaxSessions bounds the sessions a MemoryStore holds at once.
	defaultMaxSessions = 100_000
)

// MemoryStore is an in-memory Store for single-instance deployments and tests.
// Expired sessions are swept periodically on Append; when maxSessions is
// reached the least recently touched session is evicted.
type MemoryStore struct {
	limit       int
	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*memorySession
	appends  int
}

type memorySession struct {
	questions []string
	touched   time.Time
	expires   time.Time
}

// NewMemoryStore keeps up to limit questions per session for ttl after the
// last append. A zero ttl never expires.
func NewMemoryStore(limit int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		limit:       limit,
		ttl:         ttl,
		maxSessions: defaultMaxSessions,
		now:         time.Now,
		sessions:    make(map[string]*memorySession),
	}
}

func (s *MemoryStore) Recent(_ context.Context, sessionID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storageKey(sessionID)
	sess, ok := s.sessions[key]
	if !ok {
		return nil, nil
	}
	if s.expired(sess) {
		delete(s.sessions, key)
		return nil, nil
	}
	return append([]string(nil), sess.questions...), nil
}

func (s *MemoryStore) Append(_ context.Context, sessionID, question string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appends++
	if s.appends%sweepEvery == 0 {
		s.sweep()
	}

	key := storageKey(sessionID)
	sess, ok := s.sessions[key]
	if !ok || s.expired(sess) {
		if !ok && s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
			s.sweep()
			if len(s.sessions) >= s.maxSessions {
				s.evictOldest()
			}
		}
		sess = &memorySession{}
		s.sessions[key] = sess
	}

	now := s.now()
	sess.questions = append(sess.questions, question)
	if s.limit > 0 && len(sess.questions) > s.limit {
		sess.questions = append([]string(nil), sess.questions[len(sess.questions)-s.limit:]...)
	}
	sess.touched = now
	if s.ttl > 0 {
		sess.expires = now.Add(s.ttl)
	}
	return nil
}

// Len reports how many sessions are held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweep drops expired sessions. Callers hold s.mu.
func (s *MemoryStore) sweep() {
	for key, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, key)
		}
	}
}

// evictOldest drops the least recently touched session. Callers hold s.mu.
func (s *MemoryStore) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, sess := range s.sessions {
		if oldestKey == "" || sess.touched.Before(oldest) {
			oldestKey, oldest = key, sess.touched
		}
	}
	delete(s.sessions, oldestKey)
}

func (s *MemoryStore) expired(sess *memorySession) bool {
	return !sess.expires.IsZero() && s.now().After(sess.expires)
}
