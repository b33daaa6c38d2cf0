// Package panel serves a minimal browser display for rangeview.
//
// The page is embedded into the binary with go:embed. It opens the API
// WebSocket, draws the label and colour of each snapshot frame, shows the
// broker connection state, and offers Start and Stop buttons. It holds no
// state of its own; everything it shows comes from the frames.
package panel
