package visits

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"eip_explorer/internal/store"
)

func TestRecorderWritesThrough(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()

	r := NewRecorder(st, 16)
	r.Start(context.Background())
	if !r.Record(Event{EIPNo: 721, Family: "EIP"}) {
		t.Fatal("record should accept while buffer has room")
	}
	if !r.Record(Event{EIPNo: 721, Family: "EIP"}) {
		t.Fatal("record should accept while buffer has room")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.Stop(stopCtx)

	top, err := st.TopVisited(context.Background(), time.Now().UTC().Add(-time.Hour), 5)
	if err != nil {
		t.Fatalf("top visited: %v", err)
	}
	if len(top) != 1 || top[0].EIPNo != 721 || top[0].Count != 2 {
		t.Fatalf("unexpected ranking after drain: %v", top)
	}
}

func TestRecorderDropsWhenFull(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()

	// never started, so nothing drains the buffer
	r := NewRecorder(st, 1)
	if !r.Record(Event{EIPNo: 1}) {
		t.Fatal("first event should fit")
	}
	if r.Record(Event{EIPNo: 2}) {
		t.Fatal("second event should be dropped")
	}
	if r.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", r.Pending())
	}
}
