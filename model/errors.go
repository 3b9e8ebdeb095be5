package model

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the provider answered without a usable message.
var ErrEmptyResponse = errors.New("no output received from model")

// TransportError reports a failed exchange with the model endpoint: either a
// non-2xx status or a response without a body.
type TransportError struct {
	StatusCode int
	NoBody     bool
	Err        error // Underlying SDK or network error, if any
}

func (e *TransportError) Error() string {
	var msg string
	if e.NoBody {
		msg = "transport error: response body is missing"
	} else {
		msg = fmt.Sprintf("transport error: HTTP status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying error.
func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err carries a TransportError and returns it.
func IsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
