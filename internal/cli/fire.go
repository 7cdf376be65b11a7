package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaiso/flatware/internal/fireable"
	"github.com/shaiso/flatware/internal/sink"
)

// NewFireCmd создаёт команду отмены прогона.
func NewFireCmd(envFn func() *Env) *cobra.Command {
	var viaSink bool
	var reason string

	cmd := &cobra.Command{
		Use:   "fire",
		Short: "Cancel the running suite",
		Long: `Cancel the running suite.

By default the sentinel is broadcast on the die endpoint and every worker
stops before its next unit. With --via-sink the aggregator is asked to
cancel instead: it stops listening, broadcasts the sentinel itself and
prints a partial summary.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := envFn()

			ctx, transport, release, err := env.openNetworked(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if !viaSink {
				if err := fireable.Fire(ctx, transport); err != nil {
					return err
				}
				env.Output.Success("Sentinel broadcast to workers")
				return nil
			}

			client, err := sink.NewClient(ctx, transport, env.Logger)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.PushSentinel(ctx, reason); err != nil {
				return err
			}
			env.Output.Success("Cancellation requested from the sink")
			return nil
		},
	}

	cmd.Flags().BoolVar(&viaSink, "via-sink", false, "Ask the aggregator to cancel instead of broadcasting directly")
	cmd.Flags().StringVar(&reason, "reason", "operator", "Reason recorded with the cancellation request")

	return cmd
}
