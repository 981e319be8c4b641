package domain

// ScheduleEntry is a copy of an activity taken when it was scheduled, so
// later catalog changes never alter a produced schedule.
type ScheduleEntry struct {
	Key             string
	Name            string
	DurationMinutes int
	Reward          int64
	RewardRate      float64
	Difficulty      Difficulty
}

// NewScheduleEntry snapshots activity.
func NewScheduleEntry(key string, activity Activity) ScheduleEntry {
	return ScheduleEntry{
		Key:             key,
		Name:            activity.Name(),
		DurationMinutes: activity.DurationMinutes(),
		Reward:          activity.Reward(),
		RewardRate:      activity.RewardRate(),
		Difficulty:      activity.Difficulty(),
	}
}

// Schedule is an ordered selection of activities that fits a time budget.
// Entries are in selection order. TotalTimeMinutes never exceeds
// BudgetMinutes.
type Schedule struct {
	CatalogName      string
	BudgetMinutes    int
	Entries          []ScheduleEntry
	TotalTimeMinutes int
	TotalReward      int64
}

// Add appends entry and updates the totals.
func (s *Schedule) Add(entry ScheduleEntry) {
	s.Entries = append(s.Entries, entry)
	s.TotalTimeMinutes += entry.DurationMinutes
	s.TotalReward += entry.Reward
}

// RemainingMinutes is the unused part of the budget.
func (s *Schedule) RemainingMinutes() int {
	return s.BudgetMinutes - s.TotalTimeMinutes
}

// IsEmpty reports whether nothing was scheduled.
func (s *Schedule) IsEmpty() bool {
	return len(s.Entries) == 0
}
