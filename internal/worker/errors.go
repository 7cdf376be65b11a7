package worker

import "errors"

// Ошибки воркера.
var (
	// ErrNoTransport — Worker создан без транспорта.
	ErrNoTransport = errors.New("worker has no transport")
)
