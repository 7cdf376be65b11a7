package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cucumber/godog"
	"github.com/spf13/cobra"

	"github.com/shaiso/flatware/internal/config"
	"github.com/shaiso/flatware/internal/exitcodes"
	"github.com/shaiso/flatware/internal/mq"
	"github.com/shaiso/flatware/internal/plan"
	"github.com/shaiso/flatware/internal/telemetry"
)

// Options — параметры сборки бинарника.
type Options struct {
	// Version — версия для --version.
	Version string

	// Initializer регистрирует определения шагов для work и run.
	// Без него все шаги получают статус undefined.
	Initializer func(*godog.ScenarioContext)

	// Stdout, Stderr — вывод команд (default: os.Stdout, os.Stderr).
	Stdout io.Writer
	Stderr io.Writer

	// Args — аргументы командной строки (default: os.Args[1:]).
	Args []string
}

// Env — общее окружение команд, собирается после разбора флагов.
type Env struct {
	Config      *config.Config
	Logger      *slog.Logger
	Output      *Output
	Initializer func(*godog.ScenarioContext)
}

// ExitError несёт код завершения процесса.
// Err может быть nil: тогда печатать нечего, важен только код.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode переводит ошибку команды в код завершения.
func ExitCode(err error) int {
	if err == nil {
		return exitcodes.Success
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitcodes.RuntimeErr
}

// OpenTransport открывает транспорт по имени. Возвращённый ctx
// отменяется при обрыве соединения с брокером; release освобождает
// соединение. sinkBuffer задаёт буфер sink memory-транспорта
// (0 — по умолчанию).
func (e *Env) OpenTransport(ctx context.Context, name string, sinkBuffer int) (context.Context, mq.Transport, func(), error) {
	switch name {
	case config.TransportMemory:
		return ctx, mq.NewMemoryTransportWithBuffer(sinkBuffer), func() {}, nil

	case config.TransportAMQP:
		conn, err := mq.NewConnection(e.Config.RabbitMQURL, e.Logger)
		if err != nil {
			return nil, nil, nil, err
		}
		e.Logger.Debug("RabbitMQ connected", "topology", mq.TopologyInfo())

		ctx, cancel := context.WithCancel(ctx)
		go func() {
			select {
			case <-conn.LostNotify():
				e.Logger.Error("RabbitMQ connection lost, stopping")
				cancel()
			case <-ctx.Done():
			}
		}()

		release := func() {
			cancel()
			conn.Close()
		}
		return ctx, mq.NewAMQPTransport(conn, e.Logger), release, nil

	default:
		return nil, nil, nil, config.ValidateTransport(name)
	}
}

// openNetworked — OpenTransport для команд, работающих в отдельных
// процессах: memory-транспорт между процессами не виден.
func (e *Env) openNetworked(ctx context.Context) (context.Context, mq.Transport, func(), error) {
	if e.Config.Transport == config.TransportMemory {
		return nil, nil, nil, fmt.Errorf("%w: memory transport works only within one process, use run", ErrUnsupportedTransport)
	}
	return e.OpenTransport(ctx, e.Config.Transport, 0)
}

// signalContext — ctx, отменяемый SIGINT/SIGTERM.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// resolvePlan собирает Plan из манифеста или путей к feature-файлам.
func resolvePlan(manifest string, features []string) (*plan.Plan, error) {
	if manifest != "" {
		return plan.LoadManifest(manifest)
	}
	if len(features) == 0 {
		return nil, ErrNoWork
	}
	return plan.Discover(features)
}

// NewRootCmd создаёт корневую команду flatware.
func NewRootCmd(opts Options) *cobra.Command {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var (
		transport   string
		rabbitURL   string
		metricsAddr string
		jsonOutput  bool
		noColor     bool
		env         *Env
	)

	rootCmd := &cobra.Command{
		Use:           "flatware",
		Short:         "Flatware — distributed cucumber runs with a live result sink",
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("transport") {
				if err := config.ValidateTransport(transport); err != nil {
					return err
				}
				cfg.Transport = transport
			}
			if flags.Changed("rabbitmq-url") {
				cfg.RabbitMQURL = rabbitURL
			}
			if flags.Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if noColor {
				cfg.Color = false
			}

			env = &Env{
				Config:      cfg,
				Logger:      telemetry.SetupLogger(stderr),
				Output:      NewOutput(jsonOutput, stdout, stderr),
				Initializer: opts.Initializer,
			}
			return nil
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if opts.Args != nil {
		rootCmd.SetArgs(opts.Args)
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&transport, "transport", config.TransportAMQP, "Transport: amqp or memory (env FLATWARE_TRANSPORT)")
	pf.StringVar(&rabbitURL, "rabbitmq-url", mq.DefaultURL(), "RabbitMQ URL (env RABBITMQ_URL)")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address (env FLATWARE_METRICS_ADDR)")
	pf.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	pf.BoolVar(&noColor, "no-color", false, "Disable colors (env NO_COLOR)")

	envFn := func() *Env { return env }

	rootCmd.AddCommand(
		NewSinkCmd(envFn),
		NewWorkCmd(envFn),
		NewFireCmd(envFn),
		NewPlanCmd(envFn),
		NewRunCmd(envFn),
	)

	return rootCmd
}

// Execute выполняет корневую команду и возвращает код завершения.
func Execute(opts Options) int {
	rootCmd := NewRootCmd(opts)
	err := rootCmd.Execute()

	var exitErr *ExitError
	if err != nil && (!errors.As(err, &exitErr) || exitErr.Err != nil) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return ExitCode(err)
}
