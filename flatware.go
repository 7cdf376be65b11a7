// Package flatware — точка входа для проектов, собирающих свой бинарник
// flatware со своими определениями шагов.
//
// Определения шагов godog компилируются в бинарник, поэтому проект
// пишет короткий main:
//
//	package main
//
//	import (
//	    "os"
//
//	    "github.com/shaiso/flatware"
//	)
//
//	func main() {
//	    os.Exit(flatware.Execute(flatware.Options{
//	        Initializer: InitializeScenario,
//	    }))
//	}
//
// Полученный бинарник умеет все команды flatware: sink, work, fire, plan, run.
package flatware

import "github.com/shaiso/flatware/internal/cli"

// Options — параметры сборки бинарника: версия, определения шагов,
// вывод и аргументы.
type Options = cli.Options

// Execute разбирает аргументы, выполняет команду и возвращает код
// завершения процесса: 0 — успех, 1 — упавшие шаги или прерванный прогон,
// 2 — ошибка выполнения.
func Execute(opts Options) int {
	return cli.Execute(opts)
}
