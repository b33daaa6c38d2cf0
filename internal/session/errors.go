package session

import "errors"

// ErrSessionDisabled is returned when a reading arrives while the session is stopped.
var ErrSessionDisabled = errors.New("session: disabled")
