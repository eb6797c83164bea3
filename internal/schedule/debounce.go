// Package schedule provides the coalescing timer primitive behind the sync
// engine. Keeping it separate from the stores makes the window and the
// cancel-on-supersede semantics testable in isolation from trigger sites.
package schedule

import (
	"sync"
	"time"
)

// Debouncer delays fn until a burst of Trigger calls has quieted: every
// Trigger cancels the pending timer and arms a new one, so fn runs once per
// coalescing window, trailing-edge.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	fn      func()
	timer   *time.Timer
	stopped bool
}

// NewDebouncer returns a debouncer that runs fn window after the last
// Trigger. fn runs on a timer goroutine.
func NewDebouncer(window time.Duration, fn func()) *Debouncer {
	return &Debouncer{window: window, fn: fn}
}

// Trigger schedules (or reschedules) the pending run.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fn)
}

// Flush cancels any pending run and invokes fn immediately on the calling
// goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	fn := d.fn
	d.mu.Unlock()

	fn()
}

// Stop cancels any pending run and makes further Trigger calls no-ops.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
