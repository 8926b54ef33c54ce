package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/history"
)

func TestSaveAndQuery(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := []history.Session{
		{ID: "s1", StartedAt: base, Source: "rules.txt", InitialFacts: "AB"},
		{ID: "s2", StartedAt: base.Add(time.Minute), Source: "interactive", InitialFacts: ""},
		{ID: "s3", StartedAt: base.Add(2 * time.Minute), Source: "rules.txt", InitialFacts: "A"},
	}
	for _, sess := range sessions {
		if err := s.SaveSession(ctx, sess); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SaveResult(ctx, history.Result{SessionID: "s1", Fact: "C", Value: "TRUE", AskedAt: base}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResult(ctx, history.Result{SessionID: "s1", Fact: "D", Value: "FALSE", AskedAt: base.Add(time.Second)}); err != nil {
		t.Fatal(err)
	}

	recent, err := s.RecentSessions(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].ID != "s3" || recent[1].ID != "s2" {
		t.Errorf("RecentSessions = %+v", recent)
	}

	results, err := s.SessionResults(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].Fact != "C" || results[1].Fact != "D" {
		t.Errorf("SessionResults = %+v", results)
	}

	empty, err := s.SessionResults(ctx, "missing")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("results for unknown session: %+v", empty)
	}
}

func TestSaveSessionReplaces(t *testing.T) {
	ctx := context.Background()
	s := New()
	sess := history.Session{ID: "s1", StartedAt: time.Now(), Source: "a.txt"}
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	sess.Source = "b.txt"
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	recent, err := s.RecentSessions(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Fatalf("RecentSessions = %+v", recent)
	}
	if diff := cmp.Diff("b.txt", recent[0].Source); diff != "" {
		t.Errorf("source mismatch (-want +got):\n%s", diff)
	}
}
