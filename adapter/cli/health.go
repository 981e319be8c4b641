package cli

import (
	"github.com/spf13/cobra"

	"github.com/peksity/police-chief-bot-sub002/internal/planning/application/queries"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that chief is wired and its catalogs load",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.ListCatalogsHandler == nil {
			return ErrNotConfigured
		}

		catalogs, err := app.ListCatalogsHandler.Handle(cmd.Context(), queries.ListCatalogsQuery{})
		if err != nil {
			return err
		}

		if JSONOutput() {
			return PrintJSON(cmd, map[string]any{"status": "ok", "catalogs": len(catalogs)})
		}
		Printf(cmd.OutOrStdout(), "ok (%d catalogs)\n", len(catalogs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
