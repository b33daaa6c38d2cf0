package session

import (
	"sync"
	"time"

	"github.com/nerrad567/rangeview/internal/reading"
	"github.com/nerrad567/rangeview/internal/reconnect"
)

// ConnectionReporter supplies the link status attached to each Snapshot.
// *reconnect.Controller satisfies it.
type ConnectionReporter interface {
	Status() reconnect.Status
}

// Config holds the session settings.
type Config struct {
	Range           reading.Range
	StalenessWindow time.Duration
	StartEnabled    bool
}

// Controller owns the start/stop gate and composes display snapshots.
type Controller struct {
	store  *Store
	window time.Duration
	conn   ConnectionReporter

	mu      sync.RWMutex
	enabled bool
}

// New creates a Controller with its own Store gated on the session.
// A nil conn reports a disconnected link.
func New(cfg Config, conn ConnectionReporter) *Controller {
	if cfg.StalenessWindow <= 0 {
		cfg.StalenessWindow = DefaultStalenessWindow
	}
	if cfg.Range == (reading.Range{}) || cfg.Range.Validate() != nil {
		cfg.Range = reading.DefaultRange()
	}

	c := &Controller{
		window:  cfg.StalenessWindow,
		conn:    conn,
		enabled: cfg.StartEnabled,
	}
	c.store = NewStore(cfg.Range, c)
	return c
}

// Store returns the Store fed by the telemetry client.
func (c *Controller) Store() *Store {
	return c.store
}

// StalenessWindow returns the configured staleness window.
func (c *Controller) StalenessWindow() time.Duration {
	return c.window
}

// Enabled reports whether the session is running.
func (c *Controller) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Start enables the session and discards any previous reading, so the
// display shows "Waiting for data..." until a fresh value arrives.
func (c *Controller) Start() {
	c.mu.Lock()
	c.enabled = true
	c.mu.Unlock()

	c.store.Clear()
}

// Stop disables the session and discards the stored reading. Calling Stop on
// a stopped session has no further effect.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.enabled = false
	c.mu.Unlock()

	c.store.Clear()
}

// CurrentSnapshot composes the Snapshot for the frame drawn at now.
func (c *Controller) CurrentSnapshot(now time.Time) Snapshot {
	conn := c.connection()

	if !c.Enabled() {
		return idleSnapshot(conn)
	}

	r, ok := c.store.Snapshot(now, c.window)
	if !ok {
		return waitingSnapshot(conn)
	}
	return activeSnapshot(r, conn)
}

func (c *Controller) connection() reconnect.Status {
	if c.conn == nil {
		return reconnect.Status{State: reconnect.StateDisconnected}
	}
	return c.conn.Status()
}
