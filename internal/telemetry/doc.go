// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//   - http.go — middleware HTTP-эндпоинта метрик
//
// Агрегатор и воркеры используют единый формат логирования
// и при заданном адресе экспортируют метрики на /metrics endpoint.
package telemetry
