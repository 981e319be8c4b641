package pattern

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
	"github.com/peksity/police-chief-bot-sub002/internal/patterns/application/queries"
)

var predictCmd = &cobra.Command{
	Use:   "predict <user-id>",
	Short: "Predict a member's best hour",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.PredictBestTimeHandler == nil {
			return cli.ErrNotConfigured
		}

		prediction, err := app.PredictBestTimeHandler.Handle(cmd.Context(), queries.PredictBestTimeQuery{
			UserID:  args[0],
			ScopeID: scopeID,
		})
		if err != nil {
			return fmt.Errorf("failed to predict: %w", err)
		}

		if cli.JSONOutput() {
			return cli.PrintJSON(cmd, prediction)
		}

		out := cmd.OutOrStdout()
		if prediction.Learning {
			cli.Printf(out, "Still learning %s's patterns in %s.\n", args[0], scopeID)
			return nil
		}
		cli.Printf(out, "%s is most likely around %s (%d%% confidence, %d of %d).\n",
			args[0], hourLabel(prediction.DayName, prediction.HourOfDay),
			prediction.ConfidencePercent, prediction.TotalEngagements, prediction.TotalActivity)
		return nil
	},
}

var notifyCmd = &cobra.Command{
	Use:   "notify <user-id>",
	Short: "Check whether to notify a member now",
	Long: `Report whether now (or --at) falls in the member's predicted hour
with enough confidence to notify them.

Examples:
  chief pattern notify 1234 --scope guild-1
  chief pattern notify 1234 --scope guild-1 --at 2026-10-16T21:30:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ShouldNotifyHandler == nil {
			return cli.ErrNotConfigured
		}

		now, err := parseAt(notifyAt, app.Now())
		if err != nil {
			return err
		}

		decision, err := app.ShouldNotifyHandler.Handle(cmd.Context(), queries.ShouldNotifyQuery{
			UserID:  args[0],
			ScopeID: scopeID,
			Now:     now,
		})
		if err != nil {
			return fmt.Errorf("failed to evaluate: %w", err)
		}

		if cli.JSONOutput() {
			return cli.PrintJSON(cmd, decision)
		}

		out := cmd.OutOrStdout()
		if decision.Notify {
			cli.Printf(out, "yes: %s is in %s's best hour.\n", hourLabel(decision.NowDay, decision.NowHour), args[0])
			return nil
		}
		cli.Printf(out, "no: %s is not a confident match (threshold %d%%).\n",
			hourLabel(decision.NowDay, decision.NowHour), decision.Threshold)
		return nil
	},
}

var notifyAt string

func init() {
	notifyCmd.Flags().StringVar(&notifyAt, "at", "", "time to evaluate (RFC 3339, default now)")
}
