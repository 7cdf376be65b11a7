package config

import "errors"

// ErrInvalidValue — значение настройки не разбирается.
var ErrInvalidValue = errors.New("invalid config value")
