package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/flatware/internal/plan"
	"github.com/shaiso/flatware/internal/telemetry"
	"github.com/shaiso/flatware/internal/worker"
)

// NewWorkCmd создаёт команду воркера.
func NewWorkCmd(envFn func() *Env) *cobra.Command {
	var (
		manifest string
		id       string
		index    int
		workers  int
		format   string
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "work [FEATURE_PATH...]",
		Short: "Run this worker's slice of the suite and stream results to the sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()

			p, err := resolvePlan(manifest, args)
			if err != nil {
				return err
			}

			features, err := slice(p, index, workers)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			ctx, transport, release, err := env.openNetworked(ctx)
			if err != nil {
				return err
			}
			defer release()

			telemetry.ServeMetrics(ctx, env.Config.MetricsAddr, env.Logger)

			w := worker.New(worker.Config{
				ID:          id,
				Transport:   transport,
				Features:    features,
				Initializer: env.Initializer,
				Format:      format,
				Output:      env.Output.Writer(),
				Strict:      strict,
				Logger:      env.Logger,
			})

			report, err := w.Run(ctx)
			if err != nil {
				return err
			}

			env.Output.Success(fmt.Sprintf("Worker %s: %d units, %d steps, %d failed", w.ID(), report.Units, report.Steps, report.Failed))
			return nil
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", "", "YAML manifest with the features to run")
	cmd.Flags().StringVar(&id, "id", "", "Worker ID for logs (random if not specified)")
	cmd.Flags().IntVar(&index, "index", 0, "This worker's index, 0-based")
	cmd.Flags().IntVar(&workers, "workers", 1, "Total number of workers")
	cmd.Flags().StringVar(&format, "format", "progress", "godog output format")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail the suite on undefined or pending steps")

	return cmd
}

// slice возвращает часть feature-файлов воркера index из workers.
func slice(p *plan.Plan, index, workers int) ([]string, error) {
	slices, err := plan.Split(p.Features, workers)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(slices) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, index, workers)
	}
	return slices[index], nil
}
