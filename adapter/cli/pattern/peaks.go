package pattern

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
	"github.com/peksity/police-chief-bot-sub002/internal/patterns/application/queries"
)

var peaksLimit int

var peaksCmd = &cobra.Command{
	Use:   "peaks",
	Short: "Show a scope's busiest hours",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetScopePeakTimesHandler == nil {
			return cli.ErrNotConfigured
		}

		peaks, err := app.GetScopePeakTimesHandler.Handle(cmd.Context(), queries.GetScopePeakTimesQuery{
			ScopeID: scopeID,
			Limit:   peaksLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to load peak times: %w", err)
		}

		if cli.JSONOutput() {
			return cli.PrintJSON(cmd, peaks)
		}

		out := cmd.OutOrStdout()
		if len(peaks) == 0 {
			cli.Printf(out, "No engagement recorded in %s yet.\n", scopeID)
			return nil
		}
		for i, p := range peaks {
			cli.Printf(out, "%d. %-16s %d engagements (%d observations)\n",
				i+1, hourLabel(p.DayName, p.HourOfDay), p.EngagementCount, p.ActivityCount)
		}
		return nil
	},
}

func init() {
	peaksCmd.Flags().IntVarP(&peaksLimit, "limit", "n", queries.DefaultLimit, "number of hours to show")
}
