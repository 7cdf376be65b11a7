package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownStatus — строка не соответствует ни одному Status.
var ErrUnknownStatus = errors.New("unknown status")

// SerializedFailure — снимок ошибки, пригодный для передачи между процессами.
//
// Хранит только данные для отображения. Исходный объект ошибки
// (его тип, поведение, errors.Is/As) через границу процесса не передаётся.
type SerializedFailure struct {
	// TypeName — динамический тип ошибки, например "*fs.PathError".
	TypeName string `json:"type_name"`

	// Message — текст ошибки (err.Error()).
	Message string `json:"message"`

	// Backtrace — цепочка обёрнутых ошибок, от внешней к внутренней.
	Backtrace []string `json:"backtrace,omitempty"`
}

// NewSerializedFailure снимает снимок ошибки. Для nil возвращает nil.
func NewSerializedFailure(err error) *SerializedFailure {
	if err == nil {
		return nil
	}

	var backtrace []string
	for inner := errors.Unwrap(err); inner != nil; inner = errors.Unwrap(inner) {
		backtrace = append(backtrace, fmt.Sprintf("%T: %s", inner, inner.Error()))
	}

	return &SerializedFailure{
		TypeName:  fmt.Sprintf("%T", err),
		Message:   err.Error(),
		Backtrace: backtrace,
	}
}

// String возвращает "TypeName: Message".
func (f *SerializedFailure) String() string {
	if f == nil {
		return ""
	}
	return f.TypeName + ": " + f.Message
}

// StepResult — результат одного шага.
//
// Создаётся исполнителем в момент завершения шага и дальше не меняется.
// ScenarioID пустой для шагов вне контекста сценария (например, строки
// заголовка таблицы Examples) — такие шаги не участвуют в группировке
// по сценариям, но учитываются в общем подсчёте шагов.
type StepResult struct {
	// Status — итоговый статус шага.
	Status Status `json:"status"`

	// Error — снимок ошибки для упавшего шага.
	Error *SerializedFailure `json:"error,omitempty"`

	// ScenarioID — идентификатор сценария, к которому относится шаг.
	ScenarioID string `json:"scenario_id,omitempty"`
}

// NewStepResult создаёт StepResult, снимая снимок ошибки.
func NewStepResult(status Status, err error, scenarioID string) StepResult {
	return StepResult{
		Status:     status,
		Error:      NewSerializedFailure(err),
		ScenarioID: scenarioID,
	}
}

// Failed возвращает true для упавшего шага.
func (r StepResult) Failed() bool {
	return r.Status == StatusFailed
}

// HasScenario возвращает true, если шаг привязан к сценарию.
func (r StepResult) HasScenario() bool {
	return r.ScenarioID != ""
}

// ScenarioResult — агрегированный результат сценария.
//
// Не передаётся по сети: восстанавливается агрегатором
// группировкой полученных StepResult по ScenarioID.
type ScenarioResult struct {
	// ID — идентификатор сценария.
	ID string `json:"id"`

	// Steps — шаги сценария в порядке получения.
	Steps []StepResult `json:"steps"`
}

// Failed возвращает true, если хотя бы один шаг упал.
func (s ScenarioResult) Failed() bool {
	for _, step := range s.Steps {
		if step.Failed() {
			return true
		}
	}
	return false
}

// Status — failed, если упал хоть один шаг, иначе passed.
func (s ScenarioResult) Status() Status {
	if s.Failed() {
		return StatusFailed
	}
	return StatusPassed
}

// ScenarioID — идентификатор сценария: путь к feature-файлу и имя.
// Строки Examples одного outline получают общий идентификатор.
func ScenarioID(uri, name string) string {
	return uri + ":" + name
}
