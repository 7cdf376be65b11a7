// Package exitcodes определяет коды завершения процессов flatware.
package exitcodes

// Коды завершения:
//
//   - Success (0): вся ожидаемая работа завершена, упавших шагов нет
//   - TestFailure (1): есть упавшие шаги или прогон прерван
//   - RuntimeErr (2): транспорт недоступен, неверная конфигурация и т.п.
const (
	Success     = 0 // All scenarios passed
	TestFailure = 1 // Failed steps or interrupted run
	RuntimeErr  = 2 // Runtime errors
)
