package domain

import "fmt"

// Status — итоговый статус шага сценария.
//
// Порядок констант в Statuses — фиксированный порядок приоритета,
// в котором статусы выводятся в сводке:
//
//	passed → failed → undefined → pending → skipped
type Status string

const (
	// StatusPassed — шаг выполнен успешно.
	StatusPassed Status = "passed"

	// StatusFailed — шаг завершился ошибкой.
	StatusFailed Status = "failed"

	// StatusUndefined — для шага нет определения.
	StatusUndefined Status = "undefined"

	// StatusPending — определение шага помечено как незавершённое.
	StatusPending Status = "pending"

	// StatusSkipped — шаг пропущен (предыдущий шаг упал или run отменён).
	StatusSkipped Status = "skipped"
)

// Statuses — все статусы в порядке приоритета.
var Statuses = []Status{
	StatusPassed,
	StatusFailed,
	StatusUndefined,
	StatusPending,
	StatusSkipped,
}

// glyphs — символы прогресса, печатаемые сразу при получении результата.
var glyphs = map[Status]string{
	StatusPassed:    ".",
	StatusFailed:    "F",
	StatusUndefined: "U",
	StatusPending:   "P",
	StatusSkipped:   "-",
}

// Glyph возвращает символ прогресса для статуса.
// Для неизвестного статуса возвращает "?".
func (s Status) Glyph() string {
	if g, ok := glyphs[s]; ok {
		return g
	}
	return "?"
}

// IsValid проверяет, что статус — один из известных.
func (s Status) IsValid() bool {
	_, ok := glyphs[s]
	return ok
}

// String возвращает строковое представление Status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus парсит строку в Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}
