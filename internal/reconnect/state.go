package reconnect

import (
	"encoding/json"
	"time"
)

// State is the connection state of the telemetry link.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateBackingOff   State = "backing_off"
)

// Status is a point-in-time copy of the controller state.
type Status struct {
	State State

	// Backoff is the delay applied after the most recent failure.
	Backoff time.Duration

	// LastFailureAt is when the most recent failure or disconnect was recorded.
	LastFailureAt time.Time

	// NextAttemptAt is set only in StateBackingOff.
	NextAttemptAt time.Time

	// Failures counts consecutive failed attempts since the last successful connect.
	Failures int
}

// IsConnected reports whether the link is up.
func (s Status) IsConnected() bool {
	return s.State == StateConnected
}

// statusJSON is the wire form of Status.
type statusJSON struct {
	State          State      `json:"state"`
	BackoffSeconds float64    `json:"backoff_seconds"`
	NextAttemptAt  *time.Time `json:"next_attempt_at,omitempty"`
	Failures       int        `json:"failures"`
}

// MarshalJSON encodes the status with the backoff in seconds.
func (s Status) MarshalJSON() ([]byte, error) {
	out := statusJSON{
		State:          s.State,
		BackoffSeconds: s.Backoff.Seconds(),
		Failures:       s.Failures,
	}
	if !s.NextAttemptAt.IsZero() {
		next := s.NextAttemptAt.UTC()
		out.NextAttemptAt = &next
	}
	return json.Marshal(out)
}
