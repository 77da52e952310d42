// Package sessionstore keeps conversation sessions in process memory or in
// redis.
package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"filesend-bot/internal/domain/conversation"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore is a mutex-based in-memory session store. Sessions are stored
// serialized so callers never share a value.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]memoryEntry
	locks    sync.Map // user id -> *sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewMemoryStore creates a new in-memory session store. A zero ttl keeps
// sessions until they are deleted.
func NewMemoryStore(ttl time.Duration, log zerolog.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
		log:      log.With().Str("component", "session-store").Str("backend", "memory").Logger(),
	}
}

// Get retrieves a session, or an idle one when missing or expired.
func (s *MemoryStore) Get(_ context.Context, userID int64) (*conversation.Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[userID]
	s.mu.RUnlock()

	if !ok || (!entry.expires.IsZero() && s.now().After(entry.expires)) {
		return conversation.NewSession(), nil
	}

	var sess conversation.Session
	if err := json.Unmarshal(entry.data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", userID, err)
	}
	return &sess, nil
}

// Save stores the session and refreshes its expiry.
func (s *MemoryStore) Save(_ context.Context, userID int64, sess *conversation.Session) error {
	sess.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", userID, err)
	}

	entry := memoryEntry{data: data}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.sessions[userID] = entry
	s.mu.Unlock()
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return nil
}

// WithLock serializes fn per user inside this process.
func (s *MemoryStore) WithLock(ctx context.Context, userID int64, fn func(ctx context.Context) error) error {
	value, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	return fn(ctx)
}

// Purge drops expired sessions and returns how many were removed.
func (s *MemoryStore) Purge() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.sessions {
		if now.After(entry.expires) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.log.Debug().Int("removed", removed).Msg("expired sessions purged")
	}
	return removed
}
