package services

import (
	"fmt"
	"sort"

	planningDomain "github.com/peksity/police-chief-bot-sub002/internal/planning/domain"
	sharedDomain "github.com/peksity/police-chief-bot-sub002/internal/shared/domain"
)

// ErrInvalidBudget is returned when a plan is requested with a non-positive budget.
var ErrInvalidBudget = fmt.Errorf("%w: time budget must be positive", sharedDomain.ErrInvalidArgument)

// SchedulerConfig contains configuration for the greedy scheduler.
type SchedulerConfig struct {
	// SlackMinutes stops the walk as soon as the remaining budget drops
	// below it after an acceptance. Zero disables the cut-off.
	SlackMinutes int
}

// DefaultSchedulerConfig returns the default configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		SlackMinutes: 10,
	}
}

// GreedyScheduler fills a time budget with the highest reward-rate
// activities of a catalog.
//
// It is a single-pass approximation of the fractional knapsack. For the 0/1
// case the result can be worse than the best subset: a high-rate activity
// accepted early may crowd out a pair that would have earned more together.
type GreedyScheduler struct {
	config SchedulerConfig
}

// NewGreedyScheduler creates a new greedy scheduler.
func NewGreedyScheduler(config SchedulerConfig) *GreedyScheduler {
	if config.SlackMinutes < 0 {
		config.SlackMinutes = 0
	}
	return &GreedyScheduler{config: config}
}

// Config returns the scheduler configuration.
func (s *GreedyScheduler) Config() SchedulerConfig {
	return s.config
}

// Plan selects and orders activities from catalog so their total duration
// never exceeds budgetMinutes. The result depends only on its inputs.
func (s *GreedyScheduler) Plan(catalog *planningDomain.Catalog, budgetMinutes int) (*planningDomain.Schedule, error) {
	if budgetMinutes <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBudget, budgetMinutes)
	}

	schedule := &planningDomain.Schedule{
		BudgetMinutes: budgetMinutes,
		Entries:       []planningDomain.ScheduleEntry{},
	}
	if catalog == nil {
		return schedule, nil
	}
	schedule.CatalogName = catalog.Name()

	candidates := s.candidates(catalog, budgetMinutes)

	remaining := budgetMinutes
	for _, c := range candidates {
		if c.Activity.DurationMinutes() > remaining {
			continue
		}

		schedule.Add(planningDomain.NewScheduleEntry(c.Key, c.Activity))
		remaining -= c.Activity.DurationMinutes()

		if remaining < s.config.SlackMinutes {
			break
		}
	}

	return schedule, nil
}

// candidates returns the entries that fit the budget on their own, ordered
// by reward rate descending with catalog order kept on ties.
func (s *GreedyScheduler) candidates(catalog *planningDomain.Catalog, budgetMinutes int) []planningDomain.CatalogEntry {
	entries := catalog.Entries()
	fits := entries[:0]
	for _, e := range entries {
		if e.Activity.DurationMinutes() <= budgetMinutes {
			fits = append(fits, e)
		}
	}

	sort.SliceStable(fits, func(i, j int) bool {
		return fits[i].Activity.RewardRate() > fits[j].Activity.RewardRate()
	})
	return fits
}
