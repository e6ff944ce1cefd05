// Package scheduler provides deferred execution: a single in-flight timer,
// a fixed-window debouncer built on it, and a worker pool with ordered
// results.
package scheduler

import (
	"sync"
	"time"
)

// Scheduler holds at most one pending callback. Scheduling replaces the
// pending callback; a replaced or cancelled callback never runs.
type Scheduler struct {
	clock Clock

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// New creates a Scheduler. A nil clock means RealClock.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock
	}
	return &Scheduler{clock: clock}
}

// Schedule runs fn after delay, superseding any pending callback.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		// A timer that already fired cannot be stopped; the generation
		// check drops it.
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
}

// CancelPending drops the pending callback, reporting whether there was one.
func (s *Scheduler) CancelPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.gen++
	return true
}

// Pending reports whether a callback is waiting to run.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
