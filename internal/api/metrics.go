package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Runtime       RuntimeMetrics `json:"runtime"`
	WebSocket     WSMetrics      `json:"websocket"`
	Link          LinkMetrics    `json:"link"`
	Messages      MessageMetrics `json:"messages"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// LinkMetrics describes the broker connection.
type LinkMetrics struct {
	State          string  `json:"state"`
	BackoffSeconds float64 `json:"backoff_seconds"`
	Failures       int     `json:"failures"`
	NextAttemptAt  string  `json:"next_attempt_at,omitempty"`
}

// MessageMetrics contains transport message statistics.
type MessageMetrics struct {
	Dropped uint64 `json:"dropped"`
}

// handleMetrics returns runtime and link metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := s.telemetry.Status()

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Link: LinkMetrics{
			State:          string(status.State),
			BackoffSeconds: status.Backoff.Seconds(),
			Failures:       status.Failures,
		},
		Messages: MessageMetrics{
			Dropped: s.telemetry.Dropped(),
		},
	}
	if !status.NextAttemptAt.IsZero() {
		metrics.Link.NextAttemptAt = status.NextAttemptAt.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, metrics)
}
