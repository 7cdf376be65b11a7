package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	"github.com/shaiso/flatware/internal/fireable"
	"github.com/shaiso/flatware/internal/mq"
	"github.com/shaiso/flatware/internal/sink"
	"github.com/shaiso/flatware/internal/telemetry"
)

// Default configuration values.
const (
	defaultFormat = "progress"
)

// Worker выполняет свою часть набора feature-файлов.
//
// Worker:
//   - Подписывается на die до начала работы
//   - Подключается к sink
//   - Выполняет единицы работы по одной через godog
//   - Отправляет результат каждого шага и завершение каждого сценария
//   - Выходит, как только приходит Sentinel
//
// Отмена проверяется между единицами работы: единица, уже начатая
// godog, доигрывается до конца.
type Worker struct {
	id          string
	transport   mq.Transport
	features    []string
	initializer func(*godog.ScenarioContext)
	format      string
	output      io.Writer
	strict      bool

	logger *slog.Logger
}

// Config — конфигурация Worker.
type Config struct {
	// ID — идентификатор воркера для логов (default: uuid).
	ID string

	// Transport — транспорт sink/die.
	Transport mq.Transport

	// Features — пути к feature-файлам, назначенные этому воркеру.
	Features []string

	// Initializer регистрирует определения шагов.
	Initializer func(*godog.ScenarioContext)

	// Format — формат вывода godog (default: progress).
	Format string

	// Output — вывод godog (default: os.Stdout).
	Output io.Writer

	// Strict — считать undefined и pending шаги провалом suite.
	Strict bool

	// Logger
	Logger *slog.Logger
}

// Report — итог работы воркера.
type Report struct {
	// Fired — воркер остановлен Sentinel'ом.
	Fired bool

	// Units — число выполненных единиц работы.
	Units int

	// Steps — число отправленных шагов.
	Steps int64

	// Failed — число упавших шагов.
	Failed int64
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}

	format := cfg.Format
	if format == "" {
		format = defaultFormat
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		id:          id,
		transport:   cfg.Transport,
		features:    append([]string(nil), cfg.Features...),
		initializer: cfg.Initializer,
		format:      format,
		output:      output,
		strict:      cfg.Strict,
		logger:      telemetry.WithWorkerID(telemetry.WithComponent(logger, "worker"), id),
	}
}

// ID возвращает идентификатор воркера.
func (w *Worker) ID() string {
	return w.id
}

// Run выполняет назначенные единицы работы до Sentinel'а.
//
// Закончив свою часть, воркер продолжает ждать Sentinel: агрегатор
// рассылает его, когда вся работа прогона завершена.
func (w *Worker) Run(ctx context.Context) (*Report, error) {
	if w.transport == nil {
		return nil, ErrNoTransport
	}

	// Подписка до подключения к sink: Sentinel не должен потеряться.
	f, err := fireable.New(ctx, w.transport, w.logger)
	if err != nil {
		return nil, err
	}

	client, err := sink.NewClient(ctx, w.transport, w.logger)
	if err != nil {
		f.Close()
		return nil, err
	}
	defer client.Close()

	reporter := NewReporter(client, w.logger)
	report := &Report{}

	// Канал работы не закрывается: после своей части воркер ждёт Sentinel.
	work := make(chan []byte, len(w.features))
	for _, path := range w.features {
		work <- []byte(path)
	}

	w.logger.Info("worker started", "units", len(w.features))

	err = f.UntilFired(ctx, []<-chan []byte{work}, func(body []byte) error {
		w.runUnit(ctx, string(body), reporter)
		report.Units++
		if report.Units == len(w.features) {
			w.logger.Info("assigned work finished, waiting for cancellation")
		}
		return nil
	})

	report.Steps = reporter.Steps()
	report.Failed = reporter.Failed()

	switch {
	case err == nil:
		report.Fired = true
		w.logger.Info("worker fired", "units", report.Units, "steps", report.Steps)
		return report, nil
	case errors.Is(err, context.Canceled):
		w.logger.Info("worker interrupted", "units", report.Units)
		return report, nil
	default:
		return report, fmt.Errorf("worker loop: %w", err)
	}
}

// runUnit выполняет один feature-файл.
func (w *Worker) runUnit(ctx context.Context, path string, reporter *Reporter) {
	logger := w.logger.With("feature", path)
	logger.Debug("running unit")

	// Имя suite уникально на единицу: по нему formatter находит reporter.
	name := "flatware-" + w.id + "-" + uuid.NewString()
	unbind := bind(ctx, name, reporter)
	defer unbind()

	suite := godog.TestSuite{
		Name:                name,
		ScenarioInitializer: w.initializer,
		Options: &godog.Options{
			Format:         w.format + "," + formatName,
			Output:         w.output,
			Paths:          []string{path},
			Strict:         w.strict,
			NoColors:       true,
			DefaultContext: ctx,
		},
	}

	result := "passed"
	if suite.Run() != 0 {
		result = "failed"
	}
	telemetry.UnitsRun.WithLabelValues(result).Inc()

	logger.Debug("unit finished", "result", result)
}
