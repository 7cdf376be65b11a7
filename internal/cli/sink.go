package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/flatware/internal/exitcodes"
	"github.com/shaiso/flatware/internal/sink"
	"github.com/shaiso/flatware/internal/telemetry"
)

// NewSinkCmd создаёт команду агрегатора.
func NewSinkCmd(envFn func() *Env) *cobra.Command {
	var manifest string
	var stallTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "sink [FEATURE_PATH...]",
		Short: "Collect results from workers and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			if cmd.Flags().Changed("stall-timeout") {
				env.Config.StallTimeout = stallTimeout
			}

			p, err := resolvePlan(manifest, args)
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

			srv := sink.New(sink.Config{
				Transport:    transport,
				Expected:     p.Expected,
				Output:       env.Output.Writer(),
				Color:        env.Config.Color,
				StallTimeout: env.Config.StallTimeout,
				Logger:       env.Logger,
			})
			outcome, err := srv.Run(ctx)
			if err != nil {
				return err
			}
			env.Logger.Info("sink finished",
				"received", srv.Received(),
				"interrupted", outcome.Interrupted,
				"failed", outcome.Failed,
			)
			return outcomeErr(outcome)
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", "", "YAML manifest with expected work")
	cmd.Flags().DurationVar(&stallTimeout, "stall-timeout", 0, "Warn when no results arrive for this long (env FLATWARE_STALL_TIMEOUT)")

	return cmd
}

// outcomeErr переводит итог прогона в код завершения.
func outcomeErr(outcome *sink.Outcome) error {
	if outcome.Interrupted || outcome.Failed {
		return &ExitError{Code: exitcodes.TestFailure}
	}
	return nil
}
