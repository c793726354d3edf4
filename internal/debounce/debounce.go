// Package debounce provides a single-slot pending task: triggering
// while a task is pending replaces it, so a rapid burst of triggers
// collapses to the one most recent task.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds at most one pending task. Last write wins at the
// debounce boundary; there is no queue.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a debouncer with the given settle delay. A zero delay
// still defers the task to a separate goroutine tick, preserving the
// write-then-notify ordering.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the settle delay, replacing any
// task that has not fired yet.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels the pending task, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
