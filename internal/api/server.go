// Package api provides the HTTP REST API and WebSocket server for rangeview.
//
// It is the render bridge: the presentation layer reads display snapshots,
// toggles the session, and receives a frame over WebSocket whenever the
// display state changes.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/rangeview/internal/infrastructure/config"
	"github.com/nerrad567/rangeview/internal/infrastructure/logging"
	"github.com/nerrad567/rangeview/internal/reconnect"
	"github.com/nerrad567/rangeview/internal/session"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Telemetry is the view of the telemetry client used by the server.
// *telemetry.Client satisfies it.
type Telemetry interface {
	Snapshot(now time.Time) session.Snapshot
	StartSession()
	StopSession()
	Status() reconnect.Status
	Dropped() uint64
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Logger    *logging.Logger
	Telemetry Telemetry
	Version   string

	// Clock returns the current time. Default: time.Now.
	Clock func() time.Time
}

// Server is the HTTP API server for rangeview.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	telemetry Telemetry
	version   string
	clock     func() time.Time
	startTime time.Time
	server    *http.Server
	hub       *Hub
	cancel    context.CancelFunc // cancels the hub on Close()

	frameMu   sync.Mutex
	lastFrame session.Snapshot
	hasFrame  bool
}

// New creates a Server. Logger and Telemetry are required. Nothing listens
// until Start.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Telemetry == nil {
		return nil, fmt.Errorf("telemetry client is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		telemetry: deps.Telemetry,
		version:   deps.Version,
		clock:     clock,
		startTime: time.Now(),
	}
	s.hub = NewHub(deps.WS, deps.Logger, s)

	return s, nil
}

// Start runs the WebSocket hub under ctx and serves HTTP in the background.
// Listener errors are logged, not returned; stop the server with Close.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// PublishSnapshot broadcasts snap to WebSocket clients when it differs from
// the previously published frame. It never blocks and is intended to be
// called once per display tick.
func (s *Server) PublishSnapshot(snap session.Snapshot) {
	s.frameMu.Lock()
	if s.hasFrame && s.lastFrame.Equal(snap) {
		s.frameMu.Unlock()
		return
	}
	s.lastFrame = snap
	s.hasFrame = true
	s.frameMu.Unlock()

	s.hub.Broadcast(ChannelSnapshot, snap)
}

// currentSnapshot reads the display state at the server clock.
func (s *Server) currentSnapshot() session.Snapshot {
	return s.telemetry.Snapshot(s.clock())
}
