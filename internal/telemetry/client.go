package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/rangeview/internal/infrastructure/mqtt"
	"github.com/nerrad567/rangeview/internal/reading"
	"github.com/nerrad567/rangeview/internal/reconnect"
	"github.com/nerrad567/rangeview/internal/session"
)

// Client owns the telemetry lifecycle for one sensor topic.
type Client struct {
	transport Transport
	link      *reconnect.Controller
	sess      *session.Controller
	opts      Options
	logger    Logger

	mu       sync.Mutex
	started  bool
	closed   bool
	ctx      context.Context
	cancel   context.CancelFunc
	loops    sync.WaitGroup
	attempts sync.WaitGroup

	stateMu   sync.Mutex
	lastState reconnect.State
}

// New creates a Client. It does not connect until Start.
func New(transport Transport, link *reconnect.Controller, sess *session.Controller, opts Options) *Client {
	return &Client{
		transport: transport,
		link:      link,
		sess:      sess,
		opts:      opts.withDefaults(),
		logger:    noopLogger{},
		lastState: link.Status().State,
	}
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// Start launches the event pump and the watchdog and makes the first
// connection attempt in the background. A broker that cannot be reached is
// not an error here; the Client keeps retrying with backoff.
func (c *Client) Start(ctx context.Context) error {
	if err := mqtt.ValidateTopic(c.opts.Topic); err != nil {
		return fmt.Errorf("starting telemetry: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	ctx, cancel := context.WithCancel(ctx)
	c.ctx = ctx
	c.cancel = cancel
	c.mu.Unlock()

	c.loops.Add(2)
	go c.pump(ctx)
	go c.watchdog(ctx)

	now := c.now()
	if c.link.Begin(now) {
		c.noteTransition(now)
		c.launchAttempt(ctx)
	}

	c.logger.Info("telemetry started",
		"topic", c.opts.Topic,
		"qos", c.opts.QoS,
		"tick", c.opts.TickInterval,
	)
	return nil
}

// Close stops the Client and disconnects from the broker. It is safe to call
// more than once; transport errors are logged and swallowed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cancel := c.cancel
	c.mu.Unlock()

	// No attempt may start, or complete a connection, after this point.
	c.link.Shutdown()

	if cancel != nil {
		cancel()
	}
	c.loops.Wait()
	c.attempts.Wait()

	if err := c.transport.Close(); err != nil {
		c.logger.Debug("closing transport", "error", err)
	}

	c.noteTransition(c.now())
	c.logger.Info("telemetry stopped")
	return nil
}

// Tick runs one watchdog step at now: it starts a reconnect attempt when the
// backoff deadline has passed and returns the frame Snapshot, which also
// evaluates staleness. It never blocks on the network.
func (c *Client) Tick(now time.Time) session.Snapshot {
	if c.link.Due(now) {
		c.noteTransition(now)
		c.logger.Info("retrying broker connection")

		c.launchAttempt(c.runContext())
	}
	return c.sess.CurrentSnapshot(now)
}

// Snapshot returns the current display state.
func (c *Client) Snapshot(now time.Time) session.Snapshot {
	return c.sess.CurrentSnapshot(now)
}

// StartSession enables ingestion. Any previous reading is discarded.
func (c *Client) StartSession() {
	c.sess.Start()
	c.logger.Info("session started")
}

// StopSession disables ingestion and clears the stored reading.
func (c *Client) StopSession() {
	c.sess.Stop()
	c.logger.Info("session stopped")
}

// Status returns the connection status.
func (c *Client) Status() reconnect.Status {
	return c.link.Status()
}

// Dropped returns the number of messages the transport discarded, when the
// transport reports it.
func (c *Client) Dropped() uint64 {
	if d, ok := c.transport.(interface{ Dropped() uint64 }); ok {
		return d.Dropped()
	}
	return 0
}

func (c *Client) now() time.Time {
	return c.opts.Clock()
}

// runContext returns the context of the running Client.
func (c *Client) runContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// launchAttempt starts one connect attempt unless the Client is closed.
func (c *Client) launchAttempt(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.attempts.Add(1)
	c.mu.Unlock()

	go c.attempt(ctx)
}

// attempt performs one Connect and reports failures to the controller. A
// successful connect is reported by the pump when EventConnected arrives.
func (c *Client) attempt(ctx context.Context) {
	defer c.attempts.Done()

	err := c.transport.Connect(ctx)
	if err == nil {
		return
	}

	now := c.now()
	var refused *mqtt.ConnectError
	if errors.As(err, &refused) {
		c.link.Connected(refused.Code, now)
	} else {
		c.link.ConnectFailed(now)
	}

	status := c.link.Status()
	if status.State == reconnect.StateBackingOff {
		c.logger.Warn("broker connection failed",
			"error", err,
			"retry_in", status.Backoff,
			"failures", status.Failures,
		)
	}
	c.noteTransition(now)
}

// pump applies transport events in arrival order.
func (c *Client) pump(ctx context.Context) {
	defer c.loops.Done()

	events := c.transport.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			c.handleEvent(ev)
		}
	}
}

func (c *Client) handleEvent(ev mqtt.Event) {
	now := c.now()

	switch ev.Kind {
	case mqtt.EventConnected:
		c.handleConnected(ev, now)

	case mqtt.EventDisconnected:
		c.link.Lost(now)
		c.logger.Warn("broker connection lost", "error", ev.Err)
		c.noteTransition(now)

	case mqtt.EventMessage:
		c.handleMessage(ev, now)

	case mqtt.EventSubscribed:
		c.logger.Debug("subscription acknowledged", "topic", ev.Topic, "qos", ev.QoS)
	}
}

func (c *Client) handleConnected(ev mqtt.Event, now time.Time) {
	if !c.link.Connected(ev.Code, now) {
		// Not expecting a connection (shut down, or superseded): release it.
		c.logger.Debug("releasing unexpected connection")
		c.transport.Disconnect()
		return
	}
	c.noteTransition(now)
	if ev.Code != 0 {
		return
	}

	c.logger.Info("connected to broker")

	granted, err := c.transport.Subscribe(c.opts.Topic, c.opts.QoS)
	if err != nil {
		c.logger.Warn("subscribe failed, dropping connection",
			"topic", c.opts.Topic,
			"error", err,
		)
		c.transport.Disconnect()
		lostAt := c.now()
		c.link.Lost(lostAt)
		c.noteTransition(lostAt)
		return
	}

	c.logger.Info("subscribed", "topic", c.opts.Topic, "qos", granted)
}

func (c *Client) handleMessage(ev mqtt.Event, now time.Time) {
	if ev.Topic != c.opts.Topic {
		c.logger.Debug("ignoring message on unexpected topic", "topic", ev.Topic)
		return
	}

	r, err := c.sess.Store().RecordPayload(ev.Payload, now)
	outcome := OutcomeAccepted
	switch {
	case errors.Is(err, session.ErrSessionDisabled):
		outcome = OutcomeGated
		c.logger.Debug("reading ignored, session stopped")
	case errors.Is(err, reading.ErrMalformedPayload):
		outcome = OutcomeMalformed
		c.logger.Warn("malformed reading dropped", "error", err)
	case err != nil:
		outcome = OutcomeMalformed
		c.logger.Warn("reading dropped", "error", err)
	default:
		c.logger.Debug("reading recorded", "value", r.Value)
	}

	if rec := c.opts.Recorder; rec != nil {
		rec.RecordIngest(outcome, now)
	}
}

// watchdog ticks at the frame rate until ctx ends.
func (c *Client) watchdog(ctx context.Context) {
	defer c.loops.Done()

	ticker := time.NewTicker(c.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := c.Tick(c.now())
			if c.opts.OnFrame != nil {
				c.opts.OnFrame(snap)
			}
		}
	}
}

// noteTransition logs and records a change of connection state.
func (c *Client) noteTransition(now time.Time) {
	status := c.link.Status()

	c.stateMu.Lock()
	prev := c.lastState
	changed := status.State != prev
	c.lastState = status.State
	c.stateMu.Unlock()

	if !changed {
		return
	}

	c.logger.Debug("link state changed",
		"from", prev,
		"to", status.State,
		"backoff", status.Backoff,
	)
	if rec := c.opts.Recorder; rec != nil {
		rec.RecordLinkState(string(status.State), status.Backoff, now)
	}
}
