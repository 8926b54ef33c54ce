// Package memstore is an in-memory history store, used in tests and
// when no database path is configured.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/history"
)

// Store is an in-memory implementation of history.Store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]history.Session
	results  map[string][]history.Result
}

// New creates an empty store.
func New() *Store {
	return &Store{
		sessions: make(map[string]history.Session),
		results:  make(map[string][]history.Result),
	}
}

// Close implements history.Store.
func (s *Store) Close() error { return nil }

// SaveSession inserts or replaces a session.
func (s *Store) SaveSession(ctx context.Context, sess history.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

// SaveResult appends a result to its session.
func (s *Store) SaveResult(ctx context.Context, r history.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.SessionID] = append(s.results[r.SessionID], r)
	return nil
}

// RecentSessions returns up to limit sessions, newest first.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]history.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 10
	}
	out := make([]history.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SessionResults returns the results recorded for one session.
func (s *Store) SessionResults(ctx context.Context, sessionID string) ([]history.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]history.Result(nil), s.results[sessionID]...), nil
}
