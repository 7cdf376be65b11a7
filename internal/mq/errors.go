package mq

import "errors"

// Ошибки транспорта.
var (
	// ErrTransportUnavailable — брокер недоступен; для роли binder это фатально.
	ErrTransportUnavailable = errors.New("transport unavailable")

	// ErrAlreadyBound — endpoint уже забинжен другим владельцем.
	ErrAlreadyBound = errors.New("endpoint already bound")

	// ErrClosed — endpoint уже закрыт.
	ErrClosed = errors.New("endpoint closed")

	// ErrBufferFull — получатель не успевает; отправка не блокируется.
	ErrBufferFull = errors.New("endpoint buffer full")

	// ErrDecode — конверт не удалось разобрать.
	ErrDecode = errors.New("decode message")
)
