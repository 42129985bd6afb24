package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTopVisitedRankingAndWindow(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		if err := s.LogVisit(ctx, 721, "EIP", now.Add(-time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("log visit: %v", err)
		}
	}
	if err := s.LogVisit(ctx, 20, "EIP", now.Add(-time.Hour)); err != nil {
		t.Fatalf("log visit: %v", err)
	}
	// outside the window, must not count
	if err := s.LogVisit(ctx, 20, "EIP", now.Add(-8*24*time.Hour)); err != nil {
		t.Fatalf("log visit: %v", err)
	}

	top, err := s.TopVisited(ctx, now.Add(-7*24*time.Hour), 5)
	if err != nil {
		t.Fatalf("top visited: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(top), top)
	}
	if top[0].EIPNo != 721 || top[0].Count != 3 {
		t.Fatalf("unexpected leader: %+v", top[0])
	}
	if top[1].EIPNo != 20 || top[1].Count != 1 {
		t.Fatalf("unexpected runner-up: %+v", top[1])
	}
}

func TestTopVisitedTieBreak(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	now := time.Now().UTC()
	for _, no := range []int{4337, 155} {
		if err := s.LogVisit(ctx, no, "EIP", now); err != nil {
			t.Fatalf("log visit: %v", err)
		}
	}
	top, err := s.TopVisited(ctx, now.Add(-time.Hour), 5)
	if err != nil {
		t.Fatalf("top visited: %v", err)
	}
	if len(top) != 2 || top[0].EIPNo != 155 || top[1].EIPNo != 4337 {
		t.Fatalf("ties must order by ascending number, got %v", top)
	}
}

func TestTopVisitedLimit(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	now := time.Now().UTC()
	for no := 1; no <= 10; no++ {
		if err := s.LogVisit(ctx, no, "", now); err != nil {
			t.Fatalf("log visit: %v", err)
		}
	}
	top, err := s.TopVisited(ctx, now.Add(-time.Hour), 5)
	if err != nil {
		t.Fatalf("top visited: %v", err)
	}
	if len(top) != 5 {
		t.Fatalf("expected limit of 5, got %d", len(top))
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	rec, err := s.FindSummary(ctx, 1559)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected cache miss, got %+v", rec)
	}

	want := SummaryRecord{EIPNo: 1559, Summary: "Burns the base fee.", EIPStatus: "Final", CreatedAt: time.Now().UTC()}
	if err := s.SaveSummary(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec, err = s.FindSummary(ctx, 1559)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if rec == nil || rec.Summary != want.Summary || rec.EIPStatus != "Final" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestHealth(t *testing.T) {
	s := openTest(t)
	if err := s.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}
