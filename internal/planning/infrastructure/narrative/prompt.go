package narrative

import (
	"fmt"
	"strings"

	"github.com/peksity/police-chief-bot-sub002/internal/planning/application/services"
)

const systemPrompt = "You plan short gaming sessions. Reply with a numbered list of activities " +
	"that fits the time budget, one line each, followed by the expected total reward. " +
	"Only use activities from the catalog."

// BuildPrompt renders the user message for an alternative plan request.
func BuildPrompt(req services.AlternativeRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Time budget: %d minutes\n", req.BudgetMinutes)
	if prefs := strings.TrimSpace(req.Preferences); prefs != "" {
		fmt.Fprintf(&b, "Preferences: %s\n", prefs)
	}

	if req.Catalog != nil {
		fmt.Fprintf(&b, "Catalog %s:\n", req.Catalog.Name())
		for _, e := range req.Catalog.Entries() {
			a := e.Activity
			fmt.Fprintf(&b, "- %s: %d min, reward %d, cooldown %d min, %s",
				a.Name(), a.DurationMinutes(), a.Reward(), a.CooldownMinutes(), a.Difficulty())
			if a.PlayerRange() != "" {
				fmt.Fprintf(&b, ", players %s", a.PlayerRange())
			}
			b.WriteString("\n")
		}
	}

	if req.Greedy != nil && !req.Greedy.IsEmpty() {
		names := make([]string, 0, len(req.Greedy.Entries))
		for _, e := range req.Greedy.Entries {
			names = append(names, e.Name)
		}
		fmt.Fprintf(&b, "The rate-first plan is: %s (%d min, reward %d). Suggest something different if it is better.\n",
			strings.Join(names, ", "), req.Greedy.TotalTimeMinutes, req.Greedy.TotalReward)
	}

	return b.String()
}
