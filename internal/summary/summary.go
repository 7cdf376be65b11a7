package summary

import (
	"fmt"
	"io"
	"strings"

	"github.com/shaiso/flatware/internal/domain"
)

// Input — накопленные агрегатором данные одного прогона.
type Input struct {
	// Steps — все полученные шаги в порядке получения.
	Steps []domain.StepResult

	// Completed — id завершённых сценариев в порядке завершения, без повторов.
	Completed []string

	// Partial — прогон прерван до завершения всей ожидаемой работы.
	Partial bool
}

// Options — настройки отображения.
type Options struct {
	// Color включает раскраску символов и счётчиков по статусу.
	Color bool
}

// Scenarios группирует шаги по ScenarioID.
//
// В сводку попадают только завершённые сценарии, в порядке завершения.
// Шаги без ScenarioID ни в один сценарий не попадают.
func Scenarios(in Input) []domain.ScenarioResult {
	byID := make(map[string][]domain.StepResult)
	for _, step := range in.Steps {
		if !step.HasScenario() {
			continue
		}
		byID[step.ScenarioID] = append(byID[step.ScenarioID], step)
	}

	scenarios := make([]domain.ScenarioResult, 0, len(in.Completed))
	seen := make(map[string]bool, len(in.Completed))
	for _, id := range in.Completed {
		if seen[id] {
			continue
		}
		seen[id] = true
		scenarios = append(scenarios, domain.ScenarioResult{ID: id, Steps: byID[id]})
	}
	return scenarios
}

// Render строит текст сводки. Функция чистая: одинаковый Input даёт
// побайтно одинаковый текст.
func Render(in Input, opts Options) string {
	var b strings.Builder

	b.WriteString("\n\n")
	writeFailedSteps(&b, in.Steps, opts)

	if in.Partial {
		b.WriteString(paint("Interrupted: summary covers only results received before cancellation", domain.StatusSkipped, opts))
		b.WriteString("\n")
	}

	scenarios := Scenarios(in)
	scenarioStatuses := make([]domain.Status, len(scenarios))
	for i, sc := range scenarios {
		scenarioStatuses[i] = sc.Status()
	}
	b.WriteString(Pluralize("scenario", len(scenarios)))
	b.WriteString(CountSummary(scenarioStatuses, opts))
	b.WriteString("\n")

	stepStatuses := make([]domain.Status, len(in.Steps))
	for i, step := range in.Steps {
		stepStatuses[i] = step.Status
	}
	b.WriteString(Pluralize("step", len(in.Steps)))
	b.WriteString(CountSummary(stepStatuses, opts))
	b.WriteString("\n")

	return b.String()
}

// Write выводит сводку в w.
func Write(w io.Writer, in Input, opts Options) error {
	if _, err := io.WriteString(w, Render(in, opts)); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// Pluralize возвращает "1 step", "0 steps", "2 steps".
func Pluralize(word string, n int) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// CountSummary возвращает разбивку вида " (1 passed, 1 failed)".
//
// Выводятся только статусы с ненулевым счётчиком, в порядке
// domain.Statuses. Для пустого набора — пустая строка.
func CountSummary(statuses []domain.Status, opts Options) string {
	if len(statuses) == 0 {
		return ""
	}

	counts := make(map[domain.Status]int, len(domain.Statuses))
	for _, s := range statuses {
		counts[s]++
	}

	parts := make([]string, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		if counts[s] == 0 {
			continue
		}
		parts = append(parts, paint(fmt.Sprintf("%d %s", counts[s], s), s, opts))
	}

	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// writeFailedSteps печатает блок упавших шагов со снимками ошибок.
func writeFailedSteps(b *strings.Builder, steps []domain.StepResult, opts Options) {
	var failed []domain.StepResult
	for _, step := range steps {
		if step.Failed() {
			failed = append(failed, step)
		}
	}
	if len(failed) == 0 {
		return
	}

	b.WriteString(paint("Failing steps:", domain.StatusFailed, opts))
	b.WriteString("\n\n")

	for _, step := range failed {
		scenario := step.ScenarioID
		if scenario == "" {
			scenario = "(outside scenario)"
		}
		b.WriteString(Glyph(step.Status, opts))
		b.WriteString(" ")
		b.WriteString(scenario)
		b.WriteString("\n")

		if step.Error != nil {
			b.WriteString("    ")
			b.WriteString(paint(step.Error.String(), domain.StatusFailed, opts))
			b.WriteString("\n")
			for _, line := range step.Error.Backtrace {
				b.WriteString("      ")
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}
	b.WriteString("\n")
}
