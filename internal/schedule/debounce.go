// Package schedule provides debounced, cancelable tasks keyed by input
// value. Input-driven side effects (postal lookup, customer lookup, distance
// calculation) reschedule on every keystroke; only the last-scheduled task
// for a key may run, and a task never re-fires for an unchanged value.
package schedule

import (
	"sync"
	"time"
)

// Debouncer schedules at most one pending task per key. Scheduling a new
// task for a key cancels the previous pending one. A value that equals the
// last fired value for the key is ignored entirely.
type Debouncer struct {
	delay time.Duration

	mu        sync.Mutex
	pending   map[string]*time.Timer
	lastFired map[string]string
	closed    bool
}

// NewDebouncer creates a Debouncer with the given settle delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:     delay,
		pending:   make(map[string]*time.Timer),
		lastFired: make(map[string]string),
	}
}

// Schedule queues fn to run after the settle delay, replacing any pending
// task for the same key. If value matches the last value that actually fired
// for this key, the call is a no-op. fn runs on a timer goroutine.
func (d *Debouncer) Schedule(key, value string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if last, ok := d.lastFired[key]; ok && last == value {
		return
	}

	if timer, ok := d.pending[key]; ok {
		timer.Stop()
	}

	d.pending[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.lastFired[key] = value
		d.mu.Unlock()

		fn()
	})
}

// Cancel drops any pending task for the key without running it.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.pending[key]; ok {
		timer.Stop()
		delete(d.pending, key)
	}
}

// Forget clears the last-fired value for a key so the next Schedule for the
// same value fires again. Used after a lookup result is discarded (e.g. the
// user logged out).
func (d *Debouncer) Forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.lastFired, key)
}

// Close cancels all pending tasks and rejects future scheduling.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	for key, timer := range d.pending {
		timer.Stop()
		delete(d.pending, key)
	}
}
