package telemetry

import (
	"context"
	"time"

	"github.com/nerrad567/rangeview/internal/infrastructure/mqtt"
	"github.com/nerrad567/rangeview/internal/session"
)

// DefaultTickInterval is the watchdog period (10 frames per second).
const DefaultTickInterval = 100 * time.Millisecond

// Ingest outcomes passed to Recorder.RecordIngest.
const (
	OutcomeAccepted  = "accepted"
	OutcomeMalformed = "malformed"
	OutcomeGated     = "gated"
)

// Transport is the broker connection used by the Client.
// *mqtt.Client satisfies it.
type Transport interface {
	Connect(ctx context.Context) error
	Subscribe(topic string, qos byte) (byte, error)
	Disconnect()
	Close() error
	Events() <-chan mqtt.Event
}

// Recorder receives link and ingest metrics. *influxdb.Client satisfies it.
type Recorder interface {
	RecordLinkState(state string, backoff time.Duration, at time.Time)
	RecordIngest(outcome string, at time.Time)
}

// Logger defines the logging interface for the telemetry client.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures a Client.
type Options struct {
	// Topic is the single topic carrying readings.
	Topic string

	// QoS is the subscription QoS.
	QoS byte

	// TickInterval is the watchdog and frame period. Default: 100ms.
	TickInterval time.Duration

	// Clock returns the current time. Default: time.Now.
	Clock func() time.Time

	// Recorder is optional.
	Recorder Recorder

	// OnFrame, if set, receives the Snapshot of every watchdog tick.
	// It runs on the watchdog goroutine and must not block.
	OnFrame func(session.Snapshot)
}

func (o Options) withDefaults() Options {
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}
