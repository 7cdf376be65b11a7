package fireable

import "errors"

var (
	// ErrFired — получен сигнал отмены.
	ErrFired = errors.New("fired")

	// ErrSourceClosed — источник сообщений закрылся раньше отмены.
	ErrSourceClosed = errors.New("source closed")

	// errIgnored — в die пришло постороннее сообщение.
	errIgnored = errors.New("ignored die message")
)
