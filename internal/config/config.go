// Package config читает настройки процессов flatware из окружения.
//
// Флаги команд перекрывают значения из окружения.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shaiso/flatware/internal/mq"
)

// Транспорты.
const (
	TransportAMQP   = "amqp"
	TransportMemory = "memory"
)

// Config — настройки процесса.
type Config struct {
	// RabbitMQURL — адрес брокера (RABBITMQ_URL).
	RabbitMQURL string

	// Transport — amqp или memory (FLATWARE_TRANSPORT, default: amqp).
	Transport string

	// MetricsAddr — адрес /metrics и /healthz (FLATWARE_METRICS_ADDR).
	// Пустой — HTTP не поднимается.
	MetricsAddr string

	// StallTimeout — порог простоя агрегатора (FLATWARE_STALL_TIMEOUT).
	StallTimeout time.Duration

	// Color — раскрашивать вывод (выключается NO_COLOR).
	Color bool
}

// Load читает Config из окружения.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom читает Config через getenv.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		RabbitMQURL: getenv("RABBITMQ_URL"),
		Transport:   strings.ToLower(getenv("FLATWARE_TRANSPORT")),
		MetricsAddr: getenv("FLATWARE_METRICS_ADDR"),
		Color:       getenv("NO_COLOR") == "",
	}

	if cfg.RabbitMQURL == "" {
		cfg.RabbitMQURL = mq.DefaultURL()
	}

	if cfg.Transport == "" {
		cfg.Transport = TransportAMQP
	}
	if err := ValidateTransport(cfg.Transport); err != nil {
		return nil, err
	}

	if v := getenv("FLATWARE_STALL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%w: FLATWARE_STALL_TIMEOUT=%q", ErrInvalidValue, v)
		}
		cfg.StallTimeout = d
	}

	return cfg, nil
}

// ValidateTransport проверяет имя транспорта.
func ValidateTransport(name string) error {
	switch name {
	case TransportAMQP, TransportMemory:
		return nil
	default:
		return fmt.Errorf("%w: transport %q (want %s or %s)", ErrInvalidValue, name, TransportAMQP, TransportMemory)
	}
}
