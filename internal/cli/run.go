package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/shaiso/flatware/internal/mq"
	"github.com/shaiso/flatware/internal/plan"
	"github.com/shaiso/flatware/internal/sink"
	"github.com/shaiso/flatware/internal/telemetry"
	"github.com/shaiso/flatware/internal/worker"
)

// NewRunCmd создаёт команду прогона в одном процессе: sink и воркеры
// поднимаются вместе поверх выбранного транспорта.
//
// Доставка в sink — не более одного раза. Для memory-транспорта буфер
// sink рассчитан на все сообщения плана, поэтому при известном числе
// шагов ни одно не теряется. Если план пришёл из манифеста без steps,
// буфер берётся по умолчанию; потерянное при переполнении завершение
// сценария оставит агрегатор ждать, и об этом сообщит только
// предупреждение FLATWARE_STALL_TIMEOUT.
func NewRunCmd(envFn func() *Env) *cobra.Command {
	var (
		manifest string
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "run [FEATURE_PATH...]",
		Short: "Run the aggregator and workers in one process",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()

			p, err := resolvePlan(manifest, args)
			if err != nil {
				return err
			}

			slices, err := plan.Split(p.Features, workers)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			ctx, transport, release, err := env.OpenTransport(ctx, env.Config.Transport, sinkBuffer(p))
			if err != nil {
				return err
			}
			defer release()

			telemetry.ServeMetrics(ctx, env.Config.MetricsAddr, env.Logger)

			srv := sink.New(sink.Config{
				Transport:    transport,
				Expected:     p.Expected,
				Output:       env.Output.Writer(),
				Color:        env.Config.Color,
				StallTimeout: env.Config.StallTimeout,
				Logger:       env.Logger,
			})

			type result struct {
				outcome *sink.Outcome
				err     error
			}
			done := make(chan result, 1)
			go func() {
				outcome, err := srv.Run(ctx)
				done <- result{outcome, err}
			}()

			// Воркеры стартуют только после bind'а sink: иначе ранние
			// результаты потеряются.
			select {
			case <-srv.Ready():
			case r := <-done:
				return r.err
			}

			// Воркер, подписавшийся на die уже после рассылки Sentinel,
			// останавливается по workersCtx.
			workersCtx, stopWorkers := context.WithCancel(ctx)
			defer stopWorkers()

			var wg sync.WaitGroup
			for i, features := range slices {
				w := worker.New(worker.Config{
					ID:          fmt.Sprintf("local-%d", i),
					Transport:   transport,
					Features:    features,
					Initializer: env.Initializer,
					Output:      io.Discard,
					Logger:      env.Logger,
				})

				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := w.Run(workersCtx); err != nil {
						env.Logger.Error("worker failed", "worker_id", w.ID(), "error", err)
					}
				}()
			}

			r := <-done
			stopWorkers()
			wg.Wait()

			if r.err != nil {
				return r.err
			}
			return outcomeErr(r.outcome)
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", "", "YAML manifest with the work to run")
	cmd.Flags().IntVar(&workers, "workers", 2, "Number of in-process workers")

	return cmd
}

// sinkBuffer — буфер sink memory-транспорта под план: все шаги и
// завершения плюс запас на удалённые запросы отмены, не меньше
// mq.DefaultSinkBuffer.
func sinkBuffer(p *plan.Plan) int {
	const slack = 16
	return max(p.SinkMessages()+slack, mq.DefaultSinkBuffer)
}
