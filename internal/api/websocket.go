package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/rangeview/internal/infrastructure/config"
	"github.com/nerrad567/rangeview/internal/infrastructure/logging"
	"github.com/nerrad567/rangeview/internal/session"
)

// Message types exchanged over the WebSocket.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeStart       = "start"
	WSTypeStop        = "stop"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"
)

// ChannelSnapshot carries display frames. Clients join it on connect.
const ChannelSnapshot = "snapshot"

// wsSendBufferSize is how many frames a client may lag before frames are
// skipped for it.
const wsSendBufferSize = 64

// WSMessage is the envelope of every outbound message.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload is the payload of subscribe and unsubscribe requests.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// wsRequest is an inbound message. The payload is decoded per type.
type wsRequest struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// sessionControl is what WebSocket clients may do to the session.
// *Server implements it.
type sessionControl interface {
	currentSnapshot() session.Snapshot
	startSession() session.Snapshot
	stopSession() session.Snapshot
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are filtered by the CORS middleware.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub tracks connected display clients and fans frames out to them.
//
// A client's send channel is only written and closed while the hub lock is
// held, and only while the client is registered, so a disconnect can never
// race a delivery.
type Hub struct {
	cfg     config.WebSocketConfig
	logger  *logging.Logger
	control sessionControl

	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

// WSClient is one connected display.
type WSClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu            sync.RWMutex
	subscriptions map[string]struct{}
}

// NewHub creates a Hub. With a nil control, start and stop requests are
// answered with an error.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger, control sessionControl) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		control: control,
		clients: make(map[*WSClient]struct{}),
	}
}

// Run blocks until ctx ends, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	n := len(h.clients)
	for client := range h.clients {
		h.dropLocked(client)
	}
	h.mu.Unlock()

	if n > 0 {
		h.logger.Debug("websocket clients closed", "clients", n)
	}
}

// Register starts delivering frames to client.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("websocket client connected", "clients", n)
}

// Unregister stops delivery to client and closes its send channel. It is
// safe to call more than once.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Debug("websocket client disconnected", "clients", n)
	}
}

// dropLocked removes client and closes its connection. h.mu must be held.
func (h *Hub) dropLocked(client *WSClient) {
	delete(h.clients, client)
	close(client.send)
	if client.conn != nil {
		client.conn.Close()
	}
}

// Broadcast queues an event for every client subscribed to channel. A client
// whose buffer is full misses the event; the caller never waits.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := encode(WSMessage{Type: WSTypeEvent, EventType: channel, Payload: payload})
	if err != nil {
		h.logger.Error("encoding websocket event", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent, skipped := 0, 0
	for client := range h.clients {
		if !client.isSubscribed(channel) {
			continue
		}
		if offer(client.send, data) {
			sent++
		} else {
			skipped++
		}
	}
	if sent+skipped > 0 {
		h.logger.Debug("websocket event queued",
			"channel", channel,
			"recipients", sent,
			"skipped", skipped,
		)
	}
}

// deliver queues data for a single registered client.
func (h *Hub) deliver(client *WSClient, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	offer(client.send, data)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) newClient(conn *websocket.Conn) *WSClient {
	return &WSClient{
		hub:           h,
		conn:          conn,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: map[string]struct{}{ChannelSnapshot: {}},
	}
}

// offer is a non-blocking channel send.
func offer(ch chan<- []byte, data []byte) bool {
	select {
	case ch <- data:
		return true
	default:
		return false
	}
}

// encode stamps msg with the current time and marshals it.
func encode(msg WSMessage) ([]byte, error) {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return json.Marshal(msg)
}

// handleWebSocket upgrades the request, registers the client and sends it
// the current frame before any broadcast.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	client := s.hub.newClient(conn)
	s.hub.Register(client)
	client.event(ChannelSnapshot, s.currentSnapshot())

	go client.writePump(s.wsCfg)
	go client.readPump(s.wsCfg)
}

// readPump handles inbound requests until the connection fails or goes
// quiet for longer than a ping interval plus the pong timeout.
func (c *WSClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	idle := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	extend := func() error {
		return c.conn.SetReadDeadline(time.Now().Add(idle))
	}

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	_ = extend() //nolint:errcheck
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		_ = extend() //nolint:errcheck
		c.handleMessage(data)
	}
}

// writePump drains the send channel and keeps the connection alive with
// pings. It exits when the hub closes the channel or a write fails.
func (c *WSClient) writePump(cfg config.WebSocketConfig) {
	ping := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	timeout := time.Duration(cfg.PongTimeout) * time.Second
	write := func(kind int, data []byte) error {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout)) //nolint:errcheck
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = write(websocket.CloseMessage, nil) //nolint:errcheck
				return
			}
			if err := write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) handleMessage(data []byte) {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.fail("", "invalid JSON message")
		return
	}

	switch req.Type {
	case WSTypePing:
		c.reply(req.ID, WSTypePong, nil)
	case WSTypeSubscribe:
		if channels, ok := c.channels(req); ok {
			c.setSubscribed(channels, true)
			c.reply(req.ID, WSTypeResponse, map[string]any{"subscribed": channels})
		}
	case WSTypeUnsubscribe:
		if channels, ok := c.channels(req); ok {
			c.setSubscribed(channels, false)
			c.reply(req.ID, WSTypeResponse, map[string]any{"unsubscribed": channels})
		}
	case WSTypeStart, WSTypeStop:
		c.toggleSession(req)
	default:
		c.fail(req.ID, "unknown message type: "+req.Type)
	}
}

// toggleSession applies a start or stop intent and answers with the frame
// that results.
func (c *WSClient) toggleSession(req wsRequest) {
	control := c.hub.control
	if control == nil {
		c.fail(req.ID, "session control unavailable")
		return
	}

	var snap session.Snapshot
	if req.Type == WSTypeStart {
		snap = control.startSession()
	} else {
		snap = control.stopSession()
	}
	c.hub.logger.Info("session changed via websocket", "action", req.Type)

	c.reply(req.ID, WSTypeResponse, snap)
}

// channels decodes the channel list of a subscribe or unsubscribe request.
func (c *WSClient) channels(req wsRequest) ([]string, bool) {
	var p WSSubscribePayload
	if err := json.Unmarshal(req.Payload, &p); err != nil {
		c.fail(req.ID, "invalid "+req.Type+" payload")
		return nil, false
	}
	return p.Channels, true
}

func (c *WSClient) setSubscribed(channels []string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range channels {
		if on {
			c.subscriptions[ch] = struct{}{}
		} else {
			delete(c.subscriptions, ch)
		}
	}
}

func (c *WSClient) isSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscriptions[channel]
	return ok
}

// event sends one channel event to this client only.
func (c *WSClient) event(channel string, payload any) {
	c.push(WSMessage{Type: WSTypeEvent, EventType: channel, Payload: payload})
}

func (c *WSClient) reply(id, msgType string, payload any) {
	c.push(WSMessage{Type: msgType, ID: id, Payload: payload})
}

func (c *WSClient) fail(id, message string) {
	c.reply(id, WSTypeError, map[string]string{"message": message})
}

func (c *WSClient) push(msg WSMessage) {
	data, err := encode(msg)
	if err != nil {
		c.hub.logger.Error("encoding websocket message", "type", msg.Type, "error", err)
		return
	}
	c.hub.deliver(c, data)
}
