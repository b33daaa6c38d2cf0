package telemetry

import "errors"

var (
	// ErrAlreadyStarted is returned by Start on a running Client.
	ErrAlreadyStarted = errors.New("telemetry: already started")

	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("telemetry: client closed")
)
