package reading

import "errors"

// Domain errors for the reading package.
var (
	// ErrMalformedPayload is returned when a payload is not the decimal text of an integer.
	ErrMalformedPayload = errors.New("reading: malformed payload")

	// ErrInvalidRange is returned when a range has Min greater than Max.
	ErrInvalidRange = errors.New("reading: invalid range")
)
