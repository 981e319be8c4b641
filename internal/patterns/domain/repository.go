package domain

import (
	"context"
	"time"
)

// Repository owns all pattern counters. It is the only writer.
type Repository interface {
	// Increment adds one activity to key, plus one engagement and one
	// success when flagged. It is a single atomic statement.
	Increment(ctx context.Context, key PatternKey, engaged, successful bool, at time.Time) error

	// TopPatterns returns a user's rows ordered by engagement count, then
	// activity count, descending, then day and hour ascending.
	TopPatterns(ctx context.Context, userID, scopeID string, limit int) ([]PatternRecord, error)

	// ScopePeakTimes sums every user of a scope per bucket, with the same
	// ordering as TopPatterns.
	ScopePeakTimes(ctx context.Context, scopeID string, limit int) ([]PeakTime, error)

	// TrackedUsers lists users with at least one row in scope.
	TrackedUsers(ctx context.Context, scopeID string) ([]string, error)

	// Scopes lists every scope with at least one row.
	Scopes(ctx context.Context) ([]string, error)
}

// PredictionCache is a read-through cache of predictions. It is never
// authoritative. Get reports a miss with a nil prediction and false.
//
// Every Invalidate advances the (user, scope) generation. A reader takes the
// generation before reading counters and passes it to SetIfCurrent, which
// stores nothing if an invalidation happened in between.
type PredictionCache interface {
	Get(ctx context.Context, userID, scopeID string) (*Prediction, bool, error)
	Generation(ctx context.Context, userID, scopeID string) (uint64, error)
	SetIfCurrent(ctx context.Context, prediction *Prediction, generation uint64) (bool, error)
	Invalidate(ctx context.Context, userID, scopeID string) error
}
