package cli

import (
	"fmt"

	"github.com/alexanderramin/mediantree/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newEstimateCmd(app *App) *cobra.Command {
	var levels []float64
	var at string

	cmd := &cobra.Command{
		Use:   "estimate HOURS",
		Short: "Completion time at each confidence level for a median effort",
		Long: `Treat HOURS as the median of a lognormal completion time and print the
time by which the work is done with each confidence level. With --at,
also print the chance of finishing within that many hours.`,
		Example: `  mediantree estimate 8
  mediantree estimate 10 --p 0.5 --p 0.9
  mediantree estimate 8 --at 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			hours, err := parseHours(args[0])
			if err != nil {
				return err
			}
			if len(levels) == 0 {
				levels = app.config().Estimate.Levels
			}

			report, err := app.Estimates.Estimate(ctx, hours, levels...)
			if err != nil {
				return err
			}

			var atHours float64
			var certainty *float64
			if cmd.Flags().Changed("at") {
				if atHours, err = parseHours(at); err != nil {
					return err
				}
				c, err := app.Estimates.CertaintyAt(ctx, hours, atHours)
				if err != nil {
					return err
				}
				certainty = &c
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatEstimate(report, atHours, certainty))
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&levels, "p", nil, "Confidence level in (0,1); repeatable (default from estimate.levels)")
	cmd.Flags().StringVar(&at, "at", "", "Also report the chance of finishing within this many hours")

	return cmd
}
