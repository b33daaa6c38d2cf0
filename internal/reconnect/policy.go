package reconnect

import (
	"errors"
	"fmt"
	"time"
)

// Default backoff bounds.
const (
	DefaultInitial = 5 * time.Second
	DefaultMax     = 300 * time.Second
)

// ErrInvalidPolicy is returned when backoff bounds are unusable.
var ErrInvalidPolicy = errors.New("reconnect: invalid backoff policy")

// Policy is a binary exponential backoff bounded by [Initial, Max].
type Policy struct {
	Initial time.Duration
	Max     time.Duration
}

// DefaultPolicy returns the 5s..300s policy.
func DefaultPolicy() Policy {
	return Policy{Initial: DefaultInitial, Max: DefaultMax}
}

// Validate checks that Initial is positive and not above Max.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return fmt.Errorf("%w: initial %v must be positive", ErrInvalidPolicy, p.Initial)
	}
	if p.Max < p.Initial {
		return fmt.Errorf("%w: max %v below initial %v", ErrInvalidPolicy, p.Max, p.Initial)
	}
	return nil
}

// Next returns the delay that follows d: twice d, capped at Max.
func (p Policy) Next(d time.Duration) time.Duration {
	if d > p.Max/2 {
		return p.Max
	}
	next := d * 2
	switch {
	case next > p.Max:
		return p.Max
	case next < p.Initial:
		return p.Initial
	}
	return next
}
