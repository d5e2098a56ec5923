package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/weddingguard/backend/config"
	"github.com/weddingguard/backend/shell"
)

// SessionStore keeps one ViewState per browser session in memory. States
// are stored msgpack-encoded so callers always work on their own copy.
type SessionStore struct {
	sessions    map[string]*sessionEntry
	mu          sync.Mutex
	maxSessions int // 0 = unlimited
	ttl         time.Duration
	now         func() time.Time
}

type sessionEntry struct {
	state     []byte
	createdAt time.Time
	touchedAt time.Time
	// loading marks an upload in flight; such sessions are never evicted
	// so the analysis result has a state to land in.
	loading bool
}

func NewSessionStore(cfg *config.SessionConfig) *SessionStore {
	maxSessions := cfg.MaxSessions
	if maxSessions < 0 {
		maxSessions = 0
	}
	slog.Info("session store initialized", "max_sessions", maxSessions, "ttl", cfg.TTL())
	return &SessionStore{
		sessions:    make(map[string]*sessionEntry),
		maxSessions: maxSessions,
		ttl:         cfg.TTL(),
		now:         time.Now,
	}
}

// Get returns a copy of the session's state, or a fresh state for an
// unknown session.
func (s *SessionStore) Get(id string) (*shell.ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

// Update applies fn to the session's state and saves the result. fn runs
// under the store lock and must not block.
func (s *SessionStore) Update(id string, fn func(*shell.ViewState) error) (*shell.ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return state, err
	}

	data, err := msgpack.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session state: %w", err)
	}

	now := s.now()
	entry, ok := s.sessions[id]
	if !ok {
		entry = &sessionEntry{createdAt: now}
		s.sessions[id] = entry
	}
	entry.state = data
	entry.touchedAt = now
	entry.loading = state.Loading()

	s.cleanupIfNeeded()
	return state, nil
}

// Must be called with lock held
func (s *SessionStore) load(id string) (*shell.ViewState, error) {
	entry, ok := s.sessions[id]
	if !ok {
		return shell.New(), nil
	}
	var state shell.ViewState
	if err := msgpack.Unmarshal(entry.state, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	return &state, nil
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Count returns the number of stored sessions.
func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CleanupExpired removes sessions idle for longer than the TTL and returns
// how many were removed. Sessions waiting on an analysis are kept.
func (s *SessionStore) CleanupExpired() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, entry := range s.sessions {
		if !entry.loading && entry.touchedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("expired sessions removed", "count", removed, "remaining", len(s.sessions))
	}
	return removed
}

// Run removes expired sessions every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.CleanupExpired()
		}
	}
}

// cleanupIfNeeded evicts the least recently used sessions above maxSessions.
// Sessions with an upload in flight are skipped, so the store may briefly
// hold more than maxSessions.
// Must be called with lock held
func (s *SessionStore) cleanupIfNeeded() {
	if s.maxSessions <= 0 || len(s.sessions) <= s.maxSessions {
		return
	}

	ids := make([]string, 0, len(s.sessions))
	for id, entry := range s.sessions {
		if !entry.loading {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.sessions[ids[i]].touchedAt.Before(s.sessions[ids[j]].touchedAt)
	})

	removeCount := min(len(s.sessions)-s.maxSessions, len(ids))
	if removeCount < len(s.sessions)-s.maxSessions {
		slog.Warn("session cap exceeded by in-flight analyses",
			"sessions", len(s.sessions),
			"max_sessions", s.maxSessions,
		)
	}
	for _, id := range ids[:removeCount] {
		slog.Info("evicting idle session",
			"session_id", id,
			"created_at", s.sessions[id].createdAt,
		)
		delete(s.sessions, id)
	}
}
