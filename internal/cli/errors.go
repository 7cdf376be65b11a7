package cli

import "errors"

// Ошибки команд.
var (
	// ErrNoWork — не задан ни манифест, ни feature-файлы.
	ErrNoWork = errors.New("no work given: pass --manifest or feature paths")

	// ErrUnsupportedTransport — транспорт не подходит для команды.
	ErrUnsupportedTransport = errors.New("unsupported transport")

	// ErrInvalidIndex — номер воркера вне диапазона.
	ErrInvalidIndex = errors.New("worker index out of range")
)
