// Package plan определяет ожидаемую работу прогона и делит её между воркерами.
//
// Discover разбирает feature-файлы и возвращает идентификаторы всех сценариев
// ("uri:name") — это множество агрегатор ждёт до завершения прогона.
// LoadManifest читает то же самое из YAML-манифеста, Split раздаёт
// feature-файлы воркерам по кругу непересекающимися частями.
package plan
