package reading

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Default bounds for distance readings in centimetres.
const (
	DefaultMin = 0
	DefaultMax = 10000
)

// Reading is one timestamped distance value. It is immutable once created.
type Reading struct {
	Value      int       `json:"value"`
	ObservedAt time.Time `json:"observed_at"`
}

// New creates a Reading observed at the given time.
func New(value int, observedAt time.Time) Reading {
	return Reading{Value: value, ObservedAt: observedAt}
}

// Age returns how long ago the reading was observed relative to now.
func (r Reading) Age(now time.Time) time.Duration {
	return now.Sub(r.ObservedAt)
}

// Range is the inclusive interval of valid reading values.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// DefaultRange returns the 0..10000 cm range.
func DefaultRange() Range {
	return Range{Min: DefaultMin, Max: DefaultMax}
}

// Validate checks that Min does not exceed Max.
func (r Range) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("%w: min %d > max %d", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

// Clamp limits v to the range.
func (r Range) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Parse decodes a payload carrying the decimal ASCII text of an integer.
//
// Invalid UTF-8 bytes are discarded and surrounding whitespace is trimmed,
// so "  37\n" parses as 37. An optional leading sign is accepted, as are
// leading zeros. Digit strings of any length that do not fit in int
// saturate to math.MaxInt or math.MinInt; callers clamp the result to their
// Range.
//
// Returns an error wrapping ErrMalformedPayload for anything else
// (empty text, decimals such as "12.5", words).
func Parse(payload []byte) (int, error) {
	text := strings.TrimSpace(strings.ToValidUTF8(string(payload), ""))
	if text == "" {
		return 0, fmt.Errorf("%w: empty", ErrMalformedPayload)
	}

	v, err := strconv.Atoi(text)
	if err == nil {
		return v, nil
	}

	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(text, "-") {
			return math.MinInt, nil
		}
		return math.MaxInt, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrMalformedPayload, text)
}
