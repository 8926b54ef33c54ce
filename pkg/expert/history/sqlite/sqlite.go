// Package sqlite is the SQLite-backed history store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/history"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens (and if needed initializes) a history database with WAL
// mode enabled.
func Open(ctx context.Context, path string) (history.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	source TEXT,
	initial_facts TEXT
);

CREATE TABLE IF NOT EXISTS results (
	session_id TEXT NOT NULL,
	fact TEXT NOT NULL,
	value TEXT NOT NULL,
	asked_at TEXT NOT NULL,
	FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_results_session ON results(session_id);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init history schema: %w", err)
	}
	return nil
}

func (s *sqliteStore) SaveSession(ctx context.Context, sess history.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (id, started_at, source, initial_facts) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.StartedAt.UTC().Format(time.RFC3339Nano), sess.Source, sess.InitialFacts)
	return err
}

func (s *sqliteStore) SaveResult(ctx context.Context, r history.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (session_id, fact, value, asked_at) VALUES (?, ?, ?, ?)`,
		r.SessionID, r.Fact, r.Value, r.AskedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *sqliteStore) RecentSessions(ctx context.Context, limit int) ([]history.Session, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, source, initial_facts FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []history.Session
	for rows.Next() {
		var sess history.Session
		var started string
		if err := rows.Scan(&sess.ID, &started, &sess.Source, &sess.InitialFacts); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			sess.StartedAt = t
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SessionResults(ctx context.Context, sessionID string) ([]history.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, fact, value, asked_at FROM results WHERE session_id = ? ORDER BY asked_at`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []history.Result
	for rows.Next() {
		var r history.Result
		var asked string
		if err := rows.Scan(&r.SessionID, &r.Fact, &r.Value, &asked); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, asked); err == nil {
			r.AskedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
