// Package session holds the latest sensor reading and the start/stop gate
// that decides whether readings are accepted at all.
//
// # Architecture
//
// Store keeps at most one Reading. Writes are clamped to the configured
// Range and are refused while the gate is closed. A Reading older than the
// staleness window is treated as absent and cleared on the next read.
//
// Controller owns the enabled flag, acts as the Store's gate and composes a
// Snapshot for the display:
//
//	disabled             → PhaseIdle            "Press Start to begin"
//	enabled, no reading  → PhaseWaitingForData  "Waiting for data..."
//	enabled, fresh value → PhaseActive          "Near (37 cm)"
//
// Every Snapshot carries the connection Status reported by the
// ConnectionReporter, so the display can draw a link indicator in any phase.
//
// Thread Safety: Store and Controller are safe for concurrent use. Each
// guards its own state with its own mutex and never calls the other while
// holding it.
package session
