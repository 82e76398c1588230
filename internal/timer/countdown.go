// Package timer provides an explicit countdown service decoupled from any
// rendering concern.
package timer

import (
	"sync"
	"time"
)

// Countdown is a restartable countdown driven by a repeating one-second tick.
// The tick stops once expired or once Stop is called, so a torn-down checkout
// step never leaks a ticker.
type Countdown struct {
	duration time.Duration
	interval time.Duration

	onTick   func(remaining time.Duration)
	onExpire func()

	mu       sync.Mutex
	deadline time.Time
	running  bool
	stop     chan struct{}
}

// Option configures a Countdown.
type Option func(*Countdown)

// WithInterval overrides the one-second tick interval (used by tests).
func WithInterval(interval time.Duration) Option {
	return func(c *Countdown) { c.interval = interval }
}

// WithOnTick sets a callback invoked with the remaining time on every tick.
func WithOnTick(fn func(remaining time.Duration)) Option {
	return func(c *Countdown) { c.onTick = fn }
}

// WithOnExpire sets a callback invoked once when the countdown reaches zero.
func WithOnExpire(fn func()) Option {
	return func(c *Countdown) { c.onExpire = fn }
}

// NewCountdown creates a countdown for the given duration. It does not start
// ticking until Start is called.
func NewCountdown(duration time.Duration, opts ...Option) *Countdown {
	c := &Countdown{
		duration: duration,
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins (or restarts) the countdown from the full duration.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.deadline = time.Now().Add(c.duration)
	c.running = true
	c.stop = make(chan struct{})
	go c.loop(c.stop)
}

// Reset restarts the countdown from the full duration. Identical to Start;
// named separately because renewal after expiry is a distinct user action.
func (c *Countdown) Reset() {
	c.Start()
}

// Stop halts ticking without firing onExpire. Safe to call repeatedly and
// after expiry.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Countdown) stopLocked() {
	if c.running {
		close(c.stop)
		c.running = false
	}
}

// Remaining returns the time left, clamped at zero.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.deadline.IsZero() {
		return c.duration
	}
	remaining := time.Until(c.deadline)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether the countdown has run out.
func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.deadline.IsZero() && !time.Now().Before(c.deadline)
}

func (c *Countdown) loop(stop chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			remaining := time.Until(c.deadline)
			expired := remaining <= 0
			if expired {
				c.stopLocked()
			}
			c.mu.Unlock()

			if expired {
				if c.onExpire != nil {
					c.onExpire()
				}
				return
			}
			if c.onTick != nil {
				c.onTick(remaining)
			}
		}
	}
}
