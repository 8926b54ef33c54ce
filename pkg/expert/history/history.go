// Package history records query sessions and their results. This is
// operational history of runs for the interactive mode; resolved
// values are never fed back into inference.
package history

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Session is one run of the engine over a fact state.
type Session struct {
	ID           string
	StartedAt    time.Time
	Source       string // input file path or "interactive"
	InitialFacts string // e.g. "ABG"
}

// Result is one resolved query within a session.
type Result struct {
	SessionID string
	Fact      string
	Value     string
	AskedAt   time.Time
}

// Store persists sessions and results.
type Store interface {
	Close() error
	SaveSession(ctx context.Context, s Session) error
	SaveResult(ctx context.Context, r Result) error
	RecentSessions(ctx context.Context, limit int) ([]Session, error)
	SessionResults(ctx context.Context, sessionID string) ([]Result, error)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewSessionID returns a fresh monotonic ULID.
func NewSessionID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}
