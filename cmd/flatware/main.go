// Flatware — распределённый прогон cucumber-набора с живым агрегатором.
//
// Использование:
//
//	flatware [--transport amqp|memory] [--rabbitmq-url URL] [--json] <command> [flags]
//
// Команды:
//
//	sink  Агрегатор результатов
//	work  Воркер: своя часть feature-файлов
//	fire  Отмена прогона
//	plan  Ожидаемая работа и её разбиение
//	run   Агрегатор и воркеры в одном процессе
//
// Этот бинарник не содержит определений шагов: work и run отметят все
// шаги как undefined. Проекты собирают свой main с
// flatware.Options.Initializer (пакет github.com/shaiso/flatware).
package main

import (
	"os"

	"github.com/shaiso/flatware"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	os.Exit(flatware.Execute(flatware.Options{Version: version}))
}
