package barrier

import (
	"context"
	"sync"
)

// Tracker is an explicit completion handle for writers that can report when
// they finish, as an alternative to polling directory counts.
type Tracker struct {
	mu      sync.Mutex
	pending int
	idle    chan struct{}
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	idle := make(chan struct{})
	close(idle)
	return &Tracker{idle: idle}
}

// Begin registers one in-flight write. The returned func marks it done and
// is safe to call more than once.
func (t *Tracker) Begin() func() {
	t.mu.Lock()
	if t.pending == 0 {
		t.idle = make(chan struct{})
	}
	t.pending++
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(t.done)
	}
}

func (t *Tracker) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending--
	if t.pending == 0 {
		close(t.idle)
	}
}

// Pending returns the number of writes not yet marked done.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Wait blocks until no writes are pending or ctx ends.
func (t *Tracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	idle := t.idle
	t.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
