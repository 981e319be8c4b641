package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	planningQueries "github.com/peksity/police-chief-bot-sub002/internal/planning/application/queries"
)

var (
	planCatalog     string
	planAlternative bool
	planPreferences string
)

var planCmd = &cobra.Command{
	Use:   "plan <minutes>",
	Short: "Plan a session that fits a time budget",
	Long: `Pick activities from a catalog for a session of the given length.

Activities are taken in order of reward per minute and the plan stops
once the time left is too short to be worth another activity. Use
--alternative to also ask the configured language model for a second
opinion; the rate-first plan is always printed.

Examples:
  chief plan 60                      # One hour from the default catalog
  chief plan 90 --catalog rdo        # Another catalog
  chief plan 120 --alternative       # Include an alternative plan
  chief plan 45 --json               # Machine-readable output`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.PlanSessionHandler == nil {
			return ErrNotConfigured
		}

		minutes, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid minutes %q: %w", args[0], err)
		}

		catalog := planCatalog
		if catalog == "" {
			catalog = app.DefaultCatalog
		}

		plan, err := app.PlanSessionHandler.Handle(cmd.Context(), planningQueries.PlanSessionQuery{
			Catalog:         catalog,
			BudgetMinutes:   minutes,
			WithAlternative: planAlternative,
			Preferences:     planPreferences,
		})
		if err != nil {
			return fmt.Errorf("failed to plan session: %w", err)
		}

		if JSONOutput() {
			return PrintJSON(cmd, plan)
		}
		printPlan(cmd, plan)
		return nil
	},
}

func printPlan(cmd *cobra.Command, plan *planningQueries.PlanDTO) {
	out := cmd.OutOrStdout()

	Printf(out, "\n  SESSION PLAN: %s, %d min\n", plan.Catalog, plan.BudgetMinutes)
	Printf(out, "  %s\n", strings.Repeat("-", 50))

	if len(plan.Entries) == 0 {
		Printf(out, "  Nothing fits in %d minutes.\n\n", plan.BudgetMinutes)
		return
	}

	for i, e := range plan.Entries {
		Printf(out, "  %d. %-28s %4d min  %12s  [%s]\n",
			i+1, e.Name, e.DurationMinutes, FormatReward(e.Reward), e.Difficulty)
	}

	Printf(out, "  %s\n", strings.Repeat("-", 50))
	Printf(out, "  Total: %d min, %s (%d min left)\n",
		plan.TotalTimeMinutes, FormatReward(plan.TotalReward), plan.RemainingMinutes)

	if plan.AlternativeRequested {
		Printf(out, "\n  ALTERNATIVE\n")
		if plan.AlternativeAvailable {
			for _, line := range strings.Split(plan.Alternative, "\n") {
				Printf(out, "  %s\n", line)
			}
		} else {
			Printf(out, "  No alternative available right now.\n")
		}
	}
	Printf(out, "\n")
}

func init() {
	planCmd.Flags().StringVarP(&planCatalog, "catalog", "g", "", "catalog to plan from")
	planCmd.Flags().BoolVarP(&planAlternative, "alternative", "a", false, "also request an alternative plan")
	planCmd.Flags().StringVar(&planPreferences, "prefer", "", "free-text preferences for the alternative plan")

	rootCmd.AddCommand(planCmd)
}
