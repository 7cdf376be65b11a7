package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/shaiso/flatware/internal/domain"
	"github.com/shaiso/flatware/internal/fireable"
	"github.com/shaiso/flatware/internal/mq"
	"github.com/shaiso/flatware/internal/summary"
	"github.com/shaiso/flatware/internal/telemetry"
)

// Server — агрегатор результатов.
//
// Server:
//   - Биндит sink и die
//   - Принимает StepResult и ScenarioCompletion, печатает прогресс
//   - Определяет, что вся ожидаемая работа завершена
//   - По завершении или отмене рассылает Sentinel воркерам
//   - Печатает сводку
//
// Цикл однопоточный: одно сообщение обрабатывается целиком до следующего
// приёма, поэтому Collection не нуждается в блокировках. Отмена (ctx)
// проверяется только в select вместе с приёмом и не прерывает обработку.
type Server struct {
	transport mq.Transport
	expected  []string
	out       io.Writer
	color     bool
	stall     time.Duration

	collection *Collection
	state      atomic.Int32
	received   atomic.Int64
	ready      chan struct{}

	logger *slog.Logger
}

// Config — конфигурация Server.
type Config struct {
	// Transport — транспорт sink/die.
	Transport mq.Transport

	// Expected — идентификаторы всей ожидаемой работы.
	Expected []string

	// Output — куда печатать прогресс и сводку (default: os.Stdout).
	Output io.Writer

	// Color — раскрашивать прогресс и сводку.
	Color bool

	// StallTimeout — через сколько без сообщений предупреждать о простое
	// (0 — не следить).
	StallTimeout time.Duration

	// Logger
	Logger *slog.Logger
}

// Outcome — итог прогона.
type Outcome struct {
	// Interrupted — прогон отменён до завершения ожидаемой работы.
	Interrupted bool

	// Scenarios — число завершённых сценариев в сводке.
	Scenarios int

	// Steps — число полученных шагов.
	Steps int

	// Failed — есть хотя бы один упавший шаг.
	Failed bool

	// Remaining — незавершённая ожидаемая работа.
	Remaining []string

	// Report — напечатанный текст сводки.
	Report string
}

// New создаёт новый Server.
func New(cfg Config) *Server {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		transport:  cfg.Transport,
		expected:   append([]string(nil), cfg.Expected...),
		out:        out,
		color:      cfg.Color,
		stall:      cfg.StallTimeout,
		collection: NewCollection(),
		ready:      make(chan struct{}),
		logger:     telemetry.WithComponent(logger, "sink"),
	}
}

// State возвращает текущее состояние.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Ready закрывается, когда Server начинает принимать сообщения.
// Если bind не удался, Ready не закроется: ждать нужно вместе с Run.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Received возвращает число обработанных сообщений sink.
func (s *Server) Received() int64 {
	return s.received.Load()
}

func (s *Server) setState(state State) {
	s.state.Store(int32(state))
	s.logger.Debug("state changed", "state", state)
}

// Run выполняет один прогон: приём → (отмена) → сводка → освобождение.
//
// Ошибка bind'а endpoint'ов возвращается сразу и для процесса фатальна.
// Отмена ctx — не ошибка: Run печатает частичную сводку и возвращает
// Outcome с Interrupted=true. Run вызывается один раз.
func (s *Server) Run(ctx context.Context) (*Outcome, error) {
	if s.transport == nil {
		return nil, ErrNoTransport
	}
	defer s.setState(StateTerminated)

	puller, err := s.transport.BindSink(ctx)
	if err != nil {
		return nil, fmt.Errorf("bind sink: %w", err)
	}
	defer s.release(string(mq.EndpointSink), puller)

	die, err := s.transport.BindDie(ctx)
	if err != nil {
		return nil, fmt.Errorf("bind die: %w", err)
	}
	defer s.release(string(mq.EndpointDie), die)

	s.logger.Info("sink listening", "expected", len(s.expected))
	s.setState(StateListening)
	close(s.ready)

	source, listenErr := s.listen(ctx, puller.Messages())
	interrupted := source != cancelNone || listenErr != nil
	if interrupted {
		s.setState(StateDraining)
		if source != cancelNone {
			telemetry.Cancellations.WithLabelValues(source).Inc()
		}
		s.logger.Info("run cancelled",
			"source", source,
			"remaining", len(s.collection.Remaining(s.expected)),
		)
	}

	// Sentinel уходит ровно один раз на любом пути выхода из Listening.
	if err := die.Broadcast(context.WithoutCancel(ctx), fireable.Sentinel); err != nil {
		s.logger.Error("failed to broadcast cancellation", "error", err)
	}

	s.setState(StateSummarizing)
	report := summary.Render(s.collection.SummaryInput(interrupted), summary.Options{Color: s.color})
	if _, err := io.WriteString(s.out, report); err != nil {
		s.logger.Error("failed to write summary", "error", err)
	}

	outcome := s.outcome(interrupted, report)
	if listenErr != nil {
		return outcome, listenErr
	}
	return outcome, nil
}

// listen — цикл Listening. Возвращает источник отмены или cancelNone,
// если вся ожидаемая работа завершена.
func (s *Server) listen(ctx context.Context, messages <-chan []byte) (string, error) {
	for !s.collection.Done(s.expected) {
		var stallC <-chan time.Time
		if s.stall > 0 {
			stallC = time.After(s.stall)
		}

		select {
		case <-ctx.Done():
			return cancelInterrupt, nil

		case body, ok := <-messages:
			if !ok {
				return cancelNone, ErrSinkClosed
			}
			cancel := s.handle(body)
			s.received.Add(1)
			if cancel {
				return cancelRemote, nil
			}

		case <-stallC:
			telemetry.Stalls.Inc()
			s.logger.Warn("no messages received",
				"timeout", s.stall,
				"remaining", s.collection.Remaining(s.expected),
			)
		}
	}
	return cancelNone, nil
}

// handle обрабатывает одно сообщение. Возвращает true для запроса отмены.
func (s *Server) handle(body []byte) bool {
	msg, err := mq.Decode(body)
	if err != nil {
		telemetry.DecodeFailures.Inc()
		s.logger.Warn("dropping undecodable message", "error", err, "bytes", len(body))
		return false
	}

	telemetry.MessagesReceived.WithLabelValues(string(msg.Kind)).Inc()

	switch msg.Kind {
	case mq.KindStepResult:
		step := *msg.Step
		s.progress(step)
		s.collection.AddStep(step)
		telemetry.StepsReceived.WithLabelValues(string(step.Status)).Inc()

	case mq.KindScenarioCompleted:
		logger := telemetry.WithScenarioID(s.logger, msg.ScenarioID)
		if !s.collection.Complete(msg.ScenarioID) {
			telemetry.DuplicateCompletions.Inc()
			logger.Debug("duplicate scenario completion ignored")
			return false
		}
		telemetry.ScenariosCompleted.Inc()
		logger.Debug("completed scenario",
			"remaining", len(s.collection.Remaining(s.expected)),
		)

	case mq.KindSentinel:
		s.logger.Info("cancellation requested", "reason", msg.Reason, "message_id", msg.ID)
		return true

	case mq.KindUnknown:
		s.logger.Warn("unknown message kind, skipping", "kind", msg.RawKind, "message_id", msg.ID)
	}

	return false
}

// progress печатает символ шага сразу при получении.
func (s *Server) progress(step domain.StepResult) {
	if _, err := io.WriteString(s.out, summary.Glyph(step.Status, summary.Options{Color: s.color})); err != nil {
		s.logger.Warn("failed to write progress", "error", err)
	}
}

// outcome собирает итог прогона.
func (s *Server) outcome(interrupted bool, report string) *Outcome {
	in := s.collection.SummaryInput(interrupted)

	failed := false
	for _, step := range in.Steps {
		if step.Failed() {
			failed = true
			break
		}
	}

	return &Outcome{
		Interrupted: interrupted,
		Scenarios:   len(summary.Scenarios(in)),
		Steps:       len(in.Steps),
		Failed:      failed,
		Remaining:   s.collection.Remaining(s.expected),
		Report:      report,
	}
}

// release закрывает endpoint и логирует ошибку.
func (s *Server) release(name string, c io.Closer) {
	if err := c.Close(); err != nil && !errors.Is(err, mq.ErrClosed) {
		s.logger.Warn("failed to release endpoint", "endpoint", name, "error", err)
	}
}
