package plan

import "errors"

// Ошибки планирования.
var (
	// ErrNoFeatures — по заданным путям не найдено ни одного feature-файла.
	ErrNoFeatures = errors.New("no feature files found")

	// ErrParseFeature — feature-файл не разбирается.
	ErrParseFeature = errors.New("failed to parse feature file")

	// ErrInvalidManifest — манифест не читается или пуст.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrInvalidWorkers — число воркеров должно быть положительным.
	ErrInvalidWorkers = errors.New("worker count must be positive")
)
