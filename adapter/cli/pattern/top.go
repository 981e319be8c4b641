package pattern

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
	"github.com/peksity/police-chief-bot-sub002/internal/patterns/application/queries"
)

var topLimit int

var topCmd = &cobra.Command{
	Use:   "top <user-id>",
	Short: "Show a member's busiest hours",
	Long: `Show the hours of the week a member has engaged in most, best first.

Examples:
  chief pattern top 1234 --scope guild-1
  chief pattern top 1234 --scope guild-1 --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetTopPatternsHandler == nil {
			return cli.ErrNotConfigured
		}

		patterns, err := app.GetTopPatternsHandler.Handle(cmd.Context(), queries.GetTopPatternsQuery{
			UserID:  args[0],
			ScopeID: scopeID,
			Limit:   topLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to load patterns: %w", err)
		}

		if cli.JSONOutput() {
			return cli.PrintJSON(cmd, patterns)
		}

		out := cmd.OutOrStdout()
		if len(patterns) == 0 {
			cli.Printf(out, "No activity recorded for %s in %s yet.\n", args[0], scopeID)
			return nil
		}
		for i, p := range patterns {
			cli.Printf(out, "%d. %-16s %3d%%  engaged %d of %d\n",
				i+1, hourLabel(p.DayName, p.HourOfDay), p.ConfidencePercent, p.EngagementCount, p.ActivityCount)
		}
		return nil
	},
}

func init() {
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", queries.DefaultLimit, "number of hours to show")
}
