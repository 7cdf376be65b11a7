package sink

import (
	"github.com/shaiso/flatware/internal/domain"
	"github.com/shaiso/flatware/internal/summary"
)

// Collection — накопленные результаты одного прогона.
//
// Принадлежит одному Server и меняется только из его цикла,
// поэтому без блокировок.
type Collection struct {
	// steps — все полученные шаги в порядке получения.
	steps []domain.StepResult

	// completed — завершённые сценарии в порядке завершения.
	completed []string

	// completedSet — те же id для проверки повторов.
	completedSet map[string]struct{}
}

// NewCollection создаёт пустую Collection.
func NewCollection() *Collection {
	return &Collection{
		completedSet: make(map[string]struct{}),
	}
}

// AddStep добавляет результат шага.
func (c *Collection) AddStep(step domain.StepResult) {
	c.steps = append(c.steps, step)
}

// Complete отмечает сценарий завершённым.
// Возвращает false, если сценарий уже был отмечен (повтор игнорируется).
func (c *Collection) Complete(scenarioID string) bool {
	if _, ok := c.completedSet[scenarioID]; ok {
		return false
	}
	c.completedSet[scenarioID] = struct{}{}
	c.completed = append(c.completed, scenarioID)
	return true
}

// IsCompleted проверяет, завершён ли сценарий.
func (c *Collection) IsCompleted(scenarioID string) bool {
	_, ok := c.completedSet[scenarioID]
	return ok
}

// Remaining возвращает ожидаемую работу, которая ещё не завершена,
// в исходном порядке.
func (c *Collection) Remaining(expected []string) []string {
	var remaining []string
	for _, id := range expected {
		if !c.IsCompleted(id) {
			remaining = append(remaining, id)
		}
	}
	return remaining
}

// Done — вся ожидаемая работа завершена.
func (c *Collection) Done(expected []string) bool {
	for _, id := range expected {
		if !c.IsCompleted(id) {
			return false
		}
	}
	return true
}

// Steps возвращает копию полученных шагов.
func (c *Collection) Steps() []domain.StepResult {
	return append([]domain.StepResult(nil), c.steps...)
}

// Completed возвращает копию списка завершённых сценариев.
func (c *Collection) Completed() []string {
	return append([]string(nil), c.completed...)
}

// SummaryInput готовит вход для summary.Render.
func (c *Collection) SummaryInput(partial bool) summary.Input {
	return summary.Input{
		Steps:     c.Steps(),
		Completed: c.Completed(),
		Partial:   partial,
	}
}
