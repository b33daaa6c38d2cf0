package influxdb

import "errors"

var (
	// ErrDisabled is returned by Connect when influxdb.enabled is false.
	ErrDisabled = errors.New("influxdb: sink disabled")

	// ErrConnectionFailed wraps the reason the server could not be reached
	// at startup.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrNotConnected is returned by operations on a closed Client.
	ErrNotConnected = errors.New("influxdb: client closed")
)
