package catalog

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
	"github.com/peksity/police-chief-bot-sub002/internal/planning/application/queries"
)

var listCmd = &cobra.Command{
	Use:   "list [name]",
	Short: "List catalogs and their activities",
	Long: `List every catalog, or only the named one, with activities sorted
as they appear in the catalog file.

Examples:
  chief catalog list
  chief catalog list gta
  chief catalog list --json`,
	Aliases: []string{"ls"},
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListCatalogsHandler == nil {
			return cli.ErrNotConfigured
		}

		query := queries.ListCatalogsQuery{}
		if len(args) == 1 {
			query.Name = args[0]
		}

		catalogs, err := app.ListCatalogsHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list catalogs: %w", err)
		}

		if cli.JSONOutput() {
			return cli.PrintJSON(cmd, catalogs)
		}

		out := cmd.OutOrStdout()
		for _, c := range catalogs {
			cli.Printf(out, "%s (%d activities)\n", c.Name, len(c.Activities))
			if c.Description != "" {
				cli.Printf(out, "  %s\n", c.Description)
			}
			cli.Printf(out, "%s\n", strings.Repeat("-", 70))
			for _, a := range c.Activities {
				cli.Printf(out, "  %-14s %-28s %4d min  %12s  %10s/h\n",
					a.Key, a.Name, a.DurationMinutes,
					cli.FormatReward(a.Reward), cli.FormatReward(int64(a.RewardPerHour)))
			}
			cli.Printf(out, "\n")
		}
		return nil
	},
}
