package game

import (
	"sync"
	"time"
)

// ClockState represents the lifecycle state of a RoundClock.
type ClockState int

const (
	ClockIdle ClockState = iota
	ClockRunning
	ClockSuspended
	ClockExpired
)

// RoundClock is a single-round countdown. It emits one tick per interval
// with the remaining count, and exactly one expiry when the count reaches
// zero. Restarting while a countdown is active implicitly cancels the
// prior run, so at most one countdown is ever live per clock instance.
type RoundClock struct {
	mu        sync.Mutex
	state     ClockState
	interval  time.Duration
	remaining int
	gen       int

	onTick   func(remaining int)
	onExpire func()
}

// NewRoundClock creates a clock ticking at the given interval.
// An interval of 0 defaults to one second.
func NewRoundClock(interval time.Duration) *RoundClock {
	if interval == 0 {
		interval = time.Second
	}
	return &RoundClock{interval: interval}
}

// SetHandlers registers the single subscriber for tick and expiry events.
// Handlers are invoked outside the clock's lock and may call back into it.
func (c *RoundClock) SetHandlers(onTick func(remaining int), onExpire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTick = onTick
	c.onExpire = onExpire
}

// Start begins a countdown of duration ticks. A countdown already Running
// or Suspended is cancelled first.
func (c *RoundClock) Start(duration int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.state = ClockRunning
	c.remaining = duration

	go c.run(c.gen)
}

// Cancel stops the countdown without firing expiry. Valid from Running or
// Suspended; a no-op otherwise.
func (c *RoundClock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != ClockRunning && c.state != ClockSuspended {
		return
	}
	c.gen++
	c.state = ClockIdle
	c.remaining = 0
}

// Pause suspends the countdown. Time does not elapse while suspended.
func (c *RoundClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == ClockRunning {
		c.state = ClockSuspended
	}
}

// Resume continues a suspended countdown.
func (c *RoundClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == ClockSuspended {
		c.state = ClockRunning
	}
}

// State returns the current clock state.
func (c *RoundClock) State() ClockState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Remaining returns the remaining tick count.
func (c *RoundClock) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// run drives one countdown. The generation counter identifies this run;
// any Start or Cancel bumps it, which makes a stale run exit on its next
// tick without emitting anything.
func (c *RoundClock) run(gen int) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		if c.state == ClockSuspended {
			c.mu.Unlock()
			continue
		}

		c.remaining--
		if c.remaining <= 0 {
			c.remaining = 0
			c.state = ClockExpired
			onExpire := c.onExpire
			c.mu.Unlock()
			if onExpire != nil {
				onExpire()
			}
			return
		}

		remaining := c.remaining
		onTick := c.onTick
		c.mu.Unlock()
		if onTick != nil {
			onTick(remaining)
		}
	}
}
