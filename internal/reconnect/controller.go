package reconnect

import (
	"sync"
	"time"
)

// Controller owns the connection state and the backoff schedule.
//
// It decides when an attempt should start; it never connects by itself.
type Controller struct {
	policy Policy

	mu            sync.Mutex
	state         State
	backoff       time.Duration
	lastFailureAt time.Time
	failures      int
	retrying      bool // the in-flight attempt was started by Due
	stopped       bool
}

// New creates a Controller in StateDisconnected.
// An invalid policy is replaced by DefaultPolicy.
func New(policy Policy) *Controller {
	if policy.Validate() != nil {
		policy = DefaultPolicy()
	}
	return &Controller{
		policy:  policy,
		state:   StateDisconnected,
		backoff: policy.Initial,
	}
}

// Policy returns the backoff policy in use.
func (c *Controller) Policy() Policy {
	return c.policy
}

// Begin moves Disconnected to Connecting for the first attempt.
// It returns true when the caller should now perform a connect.
func (c *Controller) Begin(_ time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || c.state != StateDisconnected {
		return false
	}
	c.state = StateConnecting
	c.retrying = false
	return true
}

// Due is the watchdog check. When backing off and the deadline has passed it
// moves to Connecting and returns true; the caller should then reconnect.
func (c *Controller) Due(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || c.state != StateBackingOff {
		return false
	}
	if now.Before(c.lastFailureAt.Add(c.backoff)) {
		return false
	}
	c.state = StateConnecting
	c.retrying = true
	return true
}

// Connected records the broker's answer to a connect attempt.
//
// Return code 0 moves Connecting to Connected and resets the backoff. Any
// other code is a failed attempt. The result is false when the event was not
// accepted (not connecting, or shut down); a caller holding a live
// connection must then release it.
func (c *Controller) Connected(code byte, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || c.state != StateConnecting {
		return false
	}
	if code != 0 {
		c.failLocked(now)
		return true
	}

	c.state = StateConnected
	c.backoff = c.policy.Initial
	c.failures = 0
	c.retrying = false
	return true
}

// ConnectFailed records a connect attempt that failed before the broker
// answered (network unreachable, timeout).
func (c *Controller) ConnectFailed(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || c.state != StateConnecting {
		return
	}
	c.failLocked(now)
}

// Lost records an unexpected disconnect. Connected moves to BackingOff;
// a loss while Connecting counts as a failed attempt.
func (c *Controller) Lost(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	switch c.state {
	case StateConnected:
		c.state = StateBackingOff
		c.lastFailureAt = now
		c.failures = 0
		c.retrying = false
	case StateConnecting:
		c.failLocked(now)
	}
}

// failLocked moves to BackingOff. Only a failed retry grows the backoff.
func (c *Controller) failLocked(now time.Time) {
	if c.retrying {
		c.backoff = c.policy.Next(c.backoff)
	}
	c.state = StateBackingOff
	c.lastFailureAt = now
	c.failures++
	c.retrying = false
}

// Shutdown forces Disconnected. No further attempt will be started.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.state = StateDisconnected
	c.retrying = false
}

// IsShutdown reports whether Shutdown has been called.
func (c *Controller) IsShutdown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// Status returns a copy of the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		State:         c.state,
		Backoff:       c.backoff,
		LastFailureAt: c.lastFailureAt,
		Failures:      c.failures,
	}
	if c.state == StateBackingOff {
		s.NextAttemptAt = c.lastFailureAt.Add(c.backoff)
	}
	return s
}
