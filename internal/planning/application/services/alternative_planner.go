package services

import (
	"context"
	"errors"

	planningDomain "github.com/peksity/police-chief-bot-sub002/internal/planning/domain"
)

// ErrAlternativeUnavailable is reported whenever a free-form plan could not
// be produced. It never fails the greedy plan.
var ErrAlternativeUnavailable = errors.New("alternative plan unavailable")

// AlternativeRequest carries the inputs a free-form planner sees.
type AlternativeRequest struct {
	Catalog       *planningDomain.Catalog
	BudgetMinutes int
	Preferences   string
	Greedy        *planningDomain.Schedule
}

// AlternativePlanner produces a best-effort natural-language plan.
type AlternativePlanner interface {
	Suggest(ctx context.Context, req AlternativeRequest) (string, error)
}
