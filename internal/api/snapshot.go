package api

import (
	"net/http"

	"github.com/nerrad567/rangeview/internal/session"
)

// handleSnapshot returns the current display state.
func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.currentSnapshot())
}

// handleSessionStart enables ingestion and returns the resulting state.
func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	snap := s.startSession()
	s.logger.Info("session started via API", "request_id", r.Context().Value(ctxKeyRequestID))
	writeJSON(w, http.StatusOK, snap)
}

// handleSessionStop disables ingestion and returns the resulting state.
func (s *Server) handleSessionStop(w http.ResponseWriter, r *http.Request) {
	snap := s.stopSession()
	s.logger.Info("session stopped via API", "request_id", r.Context().Value(ctxKeyRequestID))
	writeJSON(w, http.StatusOK, snap)
}

// startSession applies the start intent and pushes the new frame to
// WebSocket clients straight away instead of waiting for the next tick.
func (s *Server) startSession() session.Snapshot {
	s.telemetry.StartSession()
	snap := s.currentSnapshot()
	s.PublishSnapshot(snap)
	return snap
}

func (s *Server) stopSession() session.Snapshot {
	s.telemetry.StopSession()
	snap := s.currentSnapshot()
	s.PublishSnapshot(snap)
	return snap
}
