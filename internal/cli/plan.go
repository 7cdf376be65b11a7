package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/flatware/internal/plan"
)

// planView — JSON-представление плана.
type planView struct {
	Features []string   `json:"features"`
	Expected []string   `json:"expected"`
	Workers  [][]string `json:"workers"`
}

// NewPlanCmd создаёт команду планирования.
func NewPlanCmd(envFn func() *Env) *cobra.Command {
	var manifest string
	var workers int
	var out string

	cmd := &cobra.Command{
		Use:   "plan [FEATURE_PATH...]",
		Short: "Show expected work and how it splits between workers",
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

			if out != "" {
				if err := plan.WriteManifest(out, p); err != nil {
					return err
				}
				env.Output.Success("Manifest written: " + out)
			}

			var rows [][]string
			for i, features := range slices {
				for _, f := range features {
					rows = append(rows, []string{strconv.Itoa(i), f})
				}
			}

			env.Output.Print([]string{"WORKER", "FEATURE"}, rows, planView{
				Features: p.Features,
				Expected: p.Expected,
				Workers:  slices,
			})
			env.Output.Success(strconv.Itoa(len(p.Expected)) + " scenarios expected")
			return nil
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", "", "YAML manifest to read instead of feature paths")
	cmd.Flags().IntVar(&workers, "workers", 1, "Number of workers to split features between")
	cmd.Flags().StringVar(&out, "out", "", "Write the discovered plan to this manifest file")

	return cmd
}
