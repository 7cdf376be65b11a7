package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flatware"

// Метрики агрегатора.
var (
	// MessagesReceived — сообщения, полученные из sink, по варианту.
	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sink",
		Name:      "messages_received_total",
		Help:      "Messages received on the sink endpoint by kind.",
	}, []string{"kind"})

	// DecodeFailures — сообщения, которые не удалось разобрать.
	DecodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sink",
		Name:      "decode_failures_total",
		Help:      "Messages dropped because they could not be decoded.",
	})

	// StepsReceived — результаты шагов по статусу.
	StepsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sink",
		Name:      "steps_received_total",
		Help:      "Step results received by status.",
	}, []string{"status"})

	// ScenariosCompleted — уникальные завершённые сценарии.
	ScenariosCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sink",
		Name:      "scenarios_completed_total",
		Help:      "Distinct scenario completions received.",
	})

	// DuplicateCompletions — повторные завершения одного сценария.
	DuplicateCompletions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sink",
		Name:      "duplicate_completions_total",
		Help:      "Repeated scenario completions ignored.",
	})

	// Cancellations — отмены прогона по источнику (interrupt, remote).
	Cancellations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sink",
		Name:      "cancellations_total",
		Help:      "Runs cancelled before all expected work completed.",
	}, []string{"source"})

	// Stalls — срабатывания детектора простоя.
	Stalls = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sink",
		Name:      "stalls_total",
		Help:      "Periods with no messages longer than the stall timeout.",
	})

	// PushFailures — неудачные отправки на стороне воркера.
	PushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "push_failures_total",
		Help:      "Result pushes that failed locally.",
	})
)

// NewMux возвращает HTTP mux с /healthz и /metrics.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// ServeMetrics обслуживает NewMux на addr до отмены ctx.
// Пустой addr — ничего не делает.
func ServeMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	if addr == "" {
		return
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           Chain(Recover(logger), AccessLog(logger))(NewMux()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
}

// Метрики воркера.
var (
	// UnitsRun — единицы работы (feature-файлы), выполненные воркером.
	UnitsRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "units_run_total",
		Help:      "Work units run by the worker by suite result.",
	}, []string{"result"})

	// StepsReported — результаты шагов, отправленные воркером.
	StepsReported = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "steps_reported_total",
		Help:      "Step results pushed to the sink by status.",
	}, []string{"status"})
)
