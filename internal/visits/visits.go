// Package visits buffers page-visit events and writes them to the store
// off the request path.
package visits

import (
	"context"
	"log"
	"sync"
	"time"

	"eip_explorer/internal/metrics"
	"eip_explorer/internal/store"
)

// Event is one observed proposal page view.
type Event struct {
	EIPNo  int
	Family string
	At     time.Time
}

// Recorder drains a bounded channel of visit events into the store.
// Record never blocks a request: when the buffer is full the event is
// dropped and counted.
type Recorder struct {
	store   *store.Store
	events  chan Event
	started bool
	mu      sync.Mutex
	wg      sync.WaitGroup
}

func NewRecorder(st *store.Store, capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 256
	}
	return &Recorder{store: st, events: make(chan Event, capacity)}
}

// Start launches the writer goroutine.
func (r *Recorder) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()
	r.wg.Add(1)
	go r.run()
}

// Record enqueues a visit event without blocking. Returns false when the
// event was dropped.
func (r *Recorder) Record(ev Event) bool {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case r.events <- ev:
		return true
	default:
		metrics.IncVisitsDropped()
		log.Printf("visit buffer full, dropping visit for %d", ev.EIPNo)
		return false
	}
}

// Stop stops accepting events and waits for the writer to drain until the
// context is done.
func (r *Recorder) Stop(ctx context.Context) {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	close(r.events)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Pending reports how many events are buffered but not yet written.
func (r *Recorder) Pending() int { return len(r.events) }

func (r *Recorder) run() {
	defer r.wg.Done()
	// Writes use a fresh timeout so buffered events still drain during
	// shutdown; the channel close from Stop ends the loop.
	for ev := range r.events {
		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := r.store.LogVisit(writeCtx, ev.EIPNo, ev.Family, ev.At)
		cancel()
		if err != nil {
			log.Printf("visit write failed for %d: %v", ev.EIPNo, err)
			continue
		}
		metrics.IncVisitsLogged()
	}
}
