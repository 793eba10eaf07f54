package common

import "errors"

// --------------------------------------------------------------------------
// Shared error values
// --------------------------------------------------------------------------

var (
	// ErrClosed is returned when an operation is attempted on a closed channel
	ErrClosed = errors.New("channel is closed")

	// ErrHandshakeNotPerformed is returned when a request is sent before the
	// handshake has completed
	ErrHandshakeNotPerformed = errors.New("handshake has not been performed")

	// ErrTimeout is returned when a synchronous request is not answered in time
	ErrTimeout = errors.New("request timed out")

	// ErrDisconnected is the generic error used to fail pending requests
	// when the connection is lost without a more specific cause
	ErrDisconnected = errors.New("connection lost")
)
