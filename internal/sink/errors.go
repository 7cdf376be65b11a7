package sink

import "errors"

// Ошибки sink.
var (
	// ErrSinkClosed — endpoint sink закрылся посреди прогона.
	ErrSinkClosed = errors.New("sink endpoint closed")

	// ErrNoTransport — Config без Transport.
	ErrNoTransport = errors.New("transport is required")
)
