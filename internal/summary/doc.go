// Package summary сворачивает поток результатов шагов в текстовую сводку.
//
// Формат:
//
//	Failing steps:
//
//	F features/math.feature:Division
//	    *errors.errorString: division by zero
//
//	2 scenarios (1 passed, 1 failed)
//	2 steps (1 passed, 1 failed)
//
// Статусы перечисляются в порядке passed, failed, undefined, pending,
// skipped; нулевые счётчики опускаются.
package summary
