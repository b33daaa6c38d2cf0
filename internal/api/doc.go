// Package api implements the HTTP REST API and WebSocket server for rangeview.
//
// This package provides:
//   - REST endpoints for the display snapshot and session start/stop
//   - WebSocket hub that pushes a frame whenever the display state changes
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - Runtime and broker-link metrics
//
// # Architecture
//
// The server sits between the telemetry client and whatever draws the
// display. The telemetry watchdog hands every frame to PublishSnapshot,
// which broadcasts only frames that differ from the previous one. Readers
// never block ingestion: every handler takes a Snapshot, which is a copy.
//
// # Graceful Degradation
//
// The server runs whether or not the broker is reachable; the snapshot
// carries the connection state so the display can show it.
package api
