package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/shaiso/flatware/internal/domain"
	"github.com/shaiso/flatware/internal/telemetry"
)

// formatName — имя formatter'а, через который godog отдаёт результаты шагов.
const formatName = "flatware"

// Publisher — то, куда Reporter отправляет результаты.
// Реализуется *sink.Client.
type Publisher interface {
	PushStep(ctx context.Context, step domain.StepResult) error
	PushScenarioCompleted(ctx context.Context, scenarioID string) error
}

// Reporter транслирует события godog в сообщения sink.
//
// Результаты приходят через formatter: godog вызывает его ровно один раз
// на каждый шаг pickle, включая шаги, пропущенные после падения.
// ScenarioCompletion уходит после последнего шага сценария, поэтому
// агрегатор получает все шаги сценария до его завершения.
// Ошибки отправки логируются и не прерывают прогон.
type Reporter struct {
	publisher Publisher
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]int // pickle id → число ещё не отправленных шагов

	steps  atomic.Int64
	failed atomic.Int64
}

// NewReporter создаёт Reporter.
func NewReporter(publisher Publisher, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		publisher: publisher,
		logger:    logger,
		pending:   make(map[string]int),
	}
}

// Steps — число отправленных шагов.
func (r *Reporter) Steps() int64 {
	return r.steps.Load()
}

// Failed — число упавших шагов.
func (r *Reporter) Failed() int64 {
	return r.failed.Load()
}

// startScenario отмечает начало pickle. Сценарий без шагов завершается сразу.
func (r *Reporter) startScenario(ctx context.Context, pickle *messages.Pickle) {
	if len(pickle.Steps) == 0 {
		r.completeScenario(ctx, scenarioIDOf(pickle))
		return
	}

	r.mu.Lock()
	r.pending[pickle.Id] = len(pickle.Steps)
	r.mu.Unlock()
}

// step отправляет результат шага и, если шаг последний, завершение сценария.
func (r *Reporter) step(ctx context.Context, pickle *messages.Pickle, status domain.Status, err error) {
	scenarioID := scenarioIDOf(pickle)

	var failure error
	if status == domain.StatusFailed {
		failure = err
		r.failed.Add(1)
	}
	r.steps.Add(1)
	telemetry.StepsReported.WithLabelValues(string(status)).Inc()

	if pushErr := r.publisher.PushStep(ctx, domain.NewStepResult(status, failure, scenarioID)); pushErr != nil {
		telemetry.WithScenarioID(r.logger, scenarioID).Warn("failed to push step result",
			"status", status,
			"error", pushErr,
		)
	}

	r.mu.Lock()
	left, tracked := r.pending[pickle.Id]
	if tracked {
		left--
		if left == 0 {
			delete(r.pending, pickle.Id)
		} else {
			r.pending[pickle.Id] = left
		}
	}
	r.mu.Unlock()

	if tracked && left == 0 {
		r.completeScenario(ctx, scenarioID)
	}
}

func (r *Reporter) completeScenario(ctx context.Context, scenarioID string) {
	if err := r.publisher.PushScenarioCompleted(ctx, scenarioID); err != nil {
		telemetry.WithScenarioID(r.logger, scenarioID).Warn("failed to push scenario completion",
			"error", err,
		)
	}
}

func scenarioIDOf(pickle *messages.Pickle) string {
	return domain.ScenarioID(pickle.Uri, pickle.Name)
}

// --- godog formatter ---

// bindings сопоставляет имя godog-suite с Reporter'ом текущей единицы работы:
// godog создаёт formatter по имени suite, без доступа к воркеру.
var (
	registerOnce sync.Once
	bindings     sync.Map // suite name → binding
)

type binding struct {
	ctx      context.Context
	reporter *Reporter
}

func registerFormatter() {
	registerOnce.Do(func() {
		godog.Format(formatName, "Streams step results to the flatware sink", newFormatter)
	})
}

// bind делает reporter доступным formatter'у suite с именем suite.
// Возвращённая функция снимает привязку.
func bind(ctx context.Context, suite string, reporter *Reporter) func() {
	registerFormatter()
	bindings.Store(suite, binding{ctx: ctx, reporter: reporter})
	return func() { bindings.Delete(suite) }
}

func newFormatter(suite string, out io.Writer) godog.Formatter {
	f := &formatter{BaseFmt: godog.NewBaseFmt(suite, out)}
	if b, ok := bindings.Load(suite); ok {
		f.binding = b.(binding)
	}
	return f
}

// formatter — godog.Formatter, отправляющий результаты в Reporter.
// Ничего не печатает: вывод для человека остаётся за основным форматом.
type formatter struct {
	*godog.BaseFmt
	binding
}

func (f *formatter) Pickle(pickle *messages.Pickle) {
	if f.reporter != nil {
		f.reporter.startScenario(f.ctx, pickle)
	}
}

func (f *formatter) Passed(pickle *messages.Pickle, _ *messages.PickleStep, _ *godog.StepDefinition) {
	f.report(pickle, domain.StatusPassed, nil)
}

func (f *formatter) Skipped(pickle *messages.Pickle, _ *messages.PickleStep, _ *godog.StepDefinition) {
	f.report(pickle, domain.StatusSkipped, nil)
}

func (f *formatter) Undefined(pickle *messages.Pickle, _ *messages.PickleStep, _ *godog.StepDefinition) {
	f.report(pickle, domain.StatusUndefined, nil)
}

func (f *formatter) Pending(pickle *messages.Pickle, _ *messages.PickleStep, _ *godog.StepDefinition) {
	f.report(pickle, domain.StatusPending, nil)
}

func (f *formatter) Failed(pickle *messages.Pickle, _ *messages.PickleStep, _ *godog.StepDefinition, err error) {
	f.report(pickle, domain.StatusFailed, err)
}

// Ambiguous считается падением: шаг не может быть выполнен однозначно.
func (f *formatter) Ambiguous(pickle *messages.Pickle, _ *messages.PickleStep, _ *godog.StepDefinition, err error) {
	f.report(pickle, domain.StatusFailed, err)
}

func (f *formatter) Summary() {}

func (f *formatter) report(pickle *messages.Pickle, status domain.Status, err error) {
	if f.reporter != nil {
		f.reporter.step(f.ctx, pickle, status, err)
	}
}
