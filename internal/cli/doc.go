// Package cli реализует команды flatware.
//
// # Обзор
//
// Один бинарник выполняет все роли распределённого прогона:
//
//   - sink — агрегатор: ждёт результаты, печатает прогресс и сводку
//   - work — воркер: выполняет свою часть feature-файлов
//   - fire — отмена прогона (напрямую воркерам или через агрегатор)
//   - plan — ожидаемая работа и её разбиение между воркерами
//   - run  — агрегатор и воркеры в одном процессе
//
// Определения шагов компилируются в бинарник, поэтому пакет отдаёт
// NewRootCmd/Execute с Options.Initializer. Внешние проекты используют
// их через корневой пакет github.com/shaiso/flatware.
//
// # Ключевые компоненты
//
// ## Env
//
// Конфигурация (internal/config) с учётом флагов, логгер и Output.
// Собирается в PersistentPreRunE корневой команды; фабрики команд
// получают его через замыкание envFn после парсинга флагов.
//
// ## Output
//
// Данные — в stdout (таблица через text/tabwriter или JSON с --json),
// сообщения — в stderr. Логи тоже идут в stderr.
//
// # Коды завершения
//
// См. internal/exitcodes: 0 — успех, 1 — упавшие шаги или прерванный
// прогон, 2 — ошибка выполнения (транспорт недоступен и т.п.).
package cli
