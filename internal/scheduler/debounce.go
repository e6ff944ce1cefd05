package scheduler

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of calls into one invocation of fn over a fixed
// window: fn runs delay after the first call of the burst, with the most recent
// arguments. Calls inside the window replace the arguments but never extend it.
type Debouncer[A any] struct {
	delay time.Duration
	fn    func(A)
	sched *Scheduler

	mu    sync.Mutex
	args  A
	armed bool
}

func NewDebouncer[A any](clock Clock, delay time.Duration, fn func(A)) *Debouncer[A] {
	return &Debouncer[A]{delay: delay, fn: fn, sched: New(clock)}
}

// Delay returns the window length.
func (d *Debouncer[A]) Delay() time.Duration { return d.delay }

// Call records args and opens a window if none is open.
func (d *Debouncer[A]) Call(args A) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.args = args
	if d.armed {
		return
	}
	d.armed = true
	d.sched.Schedule(d.delay, d.fire)
}

func (d *Debouncer[A]) fire() {
	d.mu.Lock()
	args := d.args
	var zero A
	d.args = zero
	d.armed = false
	d.mu.Unlock()
	d.fn(args)
}

// Pending reports whether a window is open.
func (d *Debouncer[A]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

// Cancel closes the open window without running fn.
func (d *Debouncer[A]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.armed = false
	var zero A
	d.args = zero
	d.sched.CancelPending()
}
