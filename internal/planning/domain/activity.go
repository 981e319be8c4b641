package domain

import (
	"fmt"
	"strings"

	sharedDomain "github.com/peksity/police-chief-bot-sub002/internal/shared/domain"
)

var (
	ErrActivityEmptyName        = fmt.Errorf("%w: activity name cannot be empty", sharedDomain.ErrInvalidArgument)
	ErrActivityInvalidDuration  = fmt.Errorf("%w: activity duration must be positive", sharedDomain.ErrInvalidArgument)
	ErrActivityNegativeReward   = fmt.Errorf("%w: activity reward cannot be negative", sharedDomain.ErrInvalidArgument)
	ErrActivityNegativeCooldown = fmt.Errorf("%w: activity cooldown cannot be negative", sharedDomain.ErrInvalidArgument)
	ErrInvalidDifficulty        = fmt.Errorf("%w: invalid difficulty", sharedDomain.ErrInvalidArgument)
)

// Difficulty grades how demanding an activity is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid checks if the difficulty is one of the known grades.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// ParseDifficulty accepts any casing of easy, medium or hard.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
	return d, nil
}

// ActivityParams are the raw fields of an activity before validation.
type ActivityParams struct {
	Name            string
	DurationMinutes int
	Reward          int64
	CooldownMinutes int
	Difficulty      Difficulty
	PlayerRange     string
}

// Activity is an immutable, validated catalog entry. Cooldown and player
// range are carried for display only.
type Activity struct {
	name            string
	durationMinutes int
	reward          int64
	cooldownMinutes int
	difficulty      Difficulty
	playerRange     string
}

// NewActivity validates p and returns the activity.
func NewActivity(p ActivityParams) (Activity, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Activity{}, ErrActivityEmptyName
	}
	if p.DurationMinutes <= 0 {
		return Activity{}, fmt.Errorf("%w: %s has %d", ErrActivityInvalidDuration, name, p.DurationMinutes)
	}
	if p.Reward < 0 {
		return Activity{}, fmt.Errorf("%w: %s has %d", ErrActivityNegativeReward, name, p.Reward)
	}
	if p.CooldownMinutes < 0 {
		return Activity{}, fmt.Errorf("%w: %s has %d", ErrActivityNegativeCooldown, name, p.CooldownMinutes)
	}
	if !p.Difficulty.IsValid() {
		return Activity{}, fmt.Errorf("%w: %s has %q", ErrInvalidDifficulty, name, p.Difficulty)
	}

	return Activity{
		name:            name,
		durationMinutes: p.DurationMinutes,
		reward:          p.Reward,
		cooldownMinutes: p.CooldownMinutes,
		difficulty:      p.Difficulty,
		playerRange:     strings.TrimSpace(p.PlayerRange),
	}, nil
}

func (a Activity) Name() string           { return a.name }
func (a Activity) DurationMinutes() int   { return a.durationMinutes }
func (a Activity) Reward() int64          { return a.reward }
func (a Activity) CooldownMinutes() int   { return a.cooldownMinutes }
func (a Activity) Difficulty() Difficulty { return a.difficulty }
func (a Activity) PlayerRange() string    { return a.playerRange }

// RewardRate is the reward earned per hour of play.
func (a Activity) RewardRate() float64 {
	return float64(a.reward) / float64(a.durationMinutes) * 60
}
