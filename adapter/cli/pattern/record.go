package pattern

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
	"github.com/peksity/police-chief-bot-sub002/internal/patterns/application/commands"
)

var (
	recordEngaged    bool
	recordSuccessful bool
	recordAt         string
)

var recordCmd = &cobra.Command{
	Use:   "record <user-id>",
	Short: "Record activity for a member",
	Long: `Count one observation for a member in the hour it happened.

Examples:
  chief pattern record 1234 --scope guild-1
  chief pattern record 1234 --scope guild-1 --engaged=false
  chief pattern record 1234 --scope guild-1 --success --at 2026-10-16T21:15:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RecordEngagementHandler == nil {
			return cli.ErrNotConfigured
		}

		at, err := parseAt(recordAt, app.Now())
		if err != nil {
			return err
		}

		result, err := app.RecordEngagementHandler.Handle(cmd.Context(), commands.RecordEngagementCommand{
			UserID:        args[0],
			ScopeID:       scopeID,
			OccurredAt:    at,
			IsEngagement:  recordEngaged,
			WasSuccessful: recordSuccessful,
		})
		if err != nil {
			return fmt.Errorf("failed to record engagement: %w", err)
		}

		if cli.JSONOutput() {
			return cli.PrintJSON(cmd, result)
		}
		cli.Printf(cmd.OutOrStdout(), "Recorded %s for %s in %s.\n",
			hourLabel(time.Weekday(result.DayOfWeek).String(), result.HourOfDay), args[0], scopeID)
		return nil
	},
}

func init() {
	recordCmd.Flags().BoolVar(&recordEngaged, "engaged", true, "the member engaged")
	recordCmd.Flags().BoolVar(&recordSuccessful, "success", false, "the engagement was successful")
	recordCmd.Flags().StringVar(&recordAt, "at", "", "when it happened (RFC 3339, default now)")
}
