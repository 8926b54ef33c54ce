package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/history"
)

func openTemp(t *testing.T) history.Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := history.Session{ID: "s1", StartedAt: base, Source: "rules.txt", InitialFacts: "AB"}
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResult(ctx, history.Result{SessionID: "s1", Fact: "C", Value: "TRUE", AskedAt: base}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResult(ctx, history.Result{SessionID: "s1", Fact: "D", Value: "FALSE", AskedAt: base.Add(time.Second)}); err != nil {
		t.Fatal(err)
	}

	recent, err := s.RecentSessions(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Fatalf("RecentSessions = %+v", recent)
	}
	got := recent[0]
	if got.ID != "s1" || got.Source != "rules.txt" || got.InitialFacts != "AB" {
		t.Errorf("session = %+v", got)
	}
	if !got.StartedAt.Equal(base) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, base)
	}

	results, err := s.SessionResults(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].Fact != "C" || results[1].Fact != "D" {
		t.Errorf("SessionResults = %+v", results)
	}
	if results[0].Value != "TRUE" || results[1].Value != "FALSE" {
		t.Errorf("values = %q, %q", results[0].Value, results[1].Value)
	}
}

func TestRecentSessionsOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"s1", "s2", "s3"} {
		err := s.SaveSession(ctx, history.Session{
			ID:        id,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Source:    "rules.txt",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	recent, err := s.RecentSessions(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].ID != "s3" || recent[1].ID != "s2" {
		t.Errorf("RecentSessions = %+v", recent)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSession(ctx, history.Session{ID: "s1", StartedAt: time.Now(), Source: "a.txt"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	recent, err := s.RecentSessions(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].ID != "s1" {
		t.Errorf("RecentSessions after reopen = %+v", recent)
	}
}
