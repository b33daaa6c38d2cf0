package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/rangeview/internal/infrastructure/config"
)

// eventBuffer is the capacity of the event channel.
const eventBuffer = 64

// Client wraps paho.mqtt.golang as a single-connection transport.
//
// It performs one connection attempt per Connect call and reports what
// happens on the connection as an ordered stream of Events. It never
// reconnects by itself.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Lifecycle events are always delivered; message events are dropped
//     (and counted) only when the consumer is a full buffer behind.
type Client struct {
	options *pahomqtt.ClientOptions
	cfg     config.MQTTConfig

	// client is the paho client of the current attempt. A fresh one is
	// created per Connect so callbacks from an abandoned attempt are ignored.
	client    pahomqtt.Client
	connected bool
	connMu    sync.RWMutex

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Uint64

	// logger for error/panic logging (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// New builds a Client from config. It does not connect.
//
// The last will (clients/<clientId>/status = "offline", QoS 1, retained) is
// registered here once and applies to every later attempt.
func New(cfg config.MQTTConfig) *Client {
	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)

	c := &Client{
		cfg:     cfg,
		options: opts,
		events:  make(chan Event, eventBuffer),
		done:    make(chan struct{}),
	}

	opts.SetOnConnectHandler(c.handleConnect)
	opts.SetConnectionLostHandler(c.handleConnectionLost)

	return c
}

// Connect performs one connection attempt and waits for its outcome.
//
// A nil error means the broker accepted and EventConnected follows. A broker
// refusal is a *ConnectError carrying the return code. Network failures,
// timeouts and an ended ctx wrap ErrConnectionFailed.
func (c *Client) Connect(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}

	cl := pahomqtt.NewClient(c.options)

	c.connMu.Lock()
	c.client = cl
	c.connected = false
	c.connMu.Unlock()

	timeout := c.options.ConnectTimeout + defaultPublishTimeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	token := cl.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		cl.Disconnect(0)
		return fmt.Errorf("%w: %w", ErrConnectionFailed, ctx.Err())
	case <-timer.C:
		cl.Disconnect(0)
		return fmt.Errorf("%w: %w after %v", ErrConnectionFailed, ErrTimeout, timeout)
	}

	if err := token.Error(); err != nil {
		if ct, ok := token.(*pahomqtt.ConnectToken); ok && isRefusal(ct.ReturnCode()) {
			return &ConnectError{Code: ct.ReturnCode(), Err: err}
		}
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect callback runs asynchronously and may not have executed
	// yet, so mark the state here to make IsConnected() true on return.
	c.connMu.Lock()
	if c.client == cl {
		c.connected = true
	}
	c.connMu.Unlock()

	return nil
}

// isRefusal reports whether rc is a CONNACK refusal code (1-5) rather than
// paho's local network or protocol failure codes.
func isRefusal(rc byte) bool {
	return rc >= 0x01 && rc <= 0x05
}

// handleConnect is called by paho when the connection is established.
func (c *Client) handleConnect(cl pahomqtt.Client) {
	c.connMu.Lock()
	if c.client != cl {
		c.connMu.Unlock()
		return
	}
	c.connected = true
	c.connMu.Unlock()

	c.emitLifecycle(Event{Kind: EventConnected, Code: 0})

	// Replace any retained will left by an earlier unclean disconnect.
	topic := Topics{}.ClientStatus(c.cfg.Broker.ClientID)
	if err := c.Publish(topic, []byte(StatusOnline), willQoS, true); err != nil {
		if logger := c.getLogger(); logger != nil {
			logger.Warn("publishing online status failed", "topic", topic, "error", err)
		}
	}
}

// handleConnectionLost is called by paho when an established connection drops.
func (c *Client) handleConnectionLost(cl pahomqtt.Client, err error) {
	c.connMu.Lock()
	if c.client != cl {
		c.connMu.Unlock()
		return
	}
	c.connected = false
	c.connMu.Unlock()

	c.emitLifecycle(Event{Kind: EventDisconnected, Err: err})
}

// emitLifecycle delivers an event, waiting for buffer space unless the
// client is closed.
func (c *Client) emitLifecycle(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// emitMessage delivers an event without waiting. It must not block the
// paho router, which would stall acknowledgements on the connection.
func (c *Client) emitMessage(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.dropped.Add(1)
	}
}

// Events returns the event stream. The channel is never closed.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Dropped returns how many message events were discarded because the
// consumer fell behind.
func (c *Client) Dropped() uint64 {
	return c.dropped.Load()
}

// Disconnect ends the current connection.
//
// When connected it first publishes a retained "offline" on the status topic
// (a graceful offline, unlike the will) and then disconnects with a short
// quiesce period. Calling it while disconnected is a no-op. Errors are
// logged, not returned.
func (c *Client) Disconnect() {
	c.connMu.RLock()
	cl := c.client
	c.connMu.RUnlock()

	if cl == nil {
		return
	}

	if c.IsConnected() {
		topic := Topics{}.ClientStatus(c.cfg.Broker.ClientID)
		if err := c.Publish(topic, []byte(StatusOffline), willQoS, true); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("publishing offline status failed", "topic", topic, "error", err)
			}
		}
	}

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	// Disconnect with quiesce period for pending operations
	cl.Disconnect(defaultDisconnectQuiesce)
}

// Close disconnects and releases any callback waiting to deliver an event.
// Connect fails with ErrClosed afterwards. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.Disconnect()
		close(c.done)
	})
	return nil
}

func (c *Client) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// HealthCheck reports ErrNotConnected unless a broker connection is up.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

// ClientID returns the client ID sent to the broker.
func (c *Client) ClientID() string {
	return c.cfg.Broker.ClientID
}

// SetLogger sets a logger for error and panic logging.
// If not set, errors are silently ignored.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// current returns the paho client of the live connection, or nil.
func (c *Client) current() pahomqtt.Client {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	if !c.connected {
		return nil
	}
	return c.client
}
