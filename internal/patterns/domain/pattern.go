package domain

import (
	"fmt"
	"strings"
	"time"

	sharedDomain "github.com/peksity/police-chief-bot-sub002/internal/shared/domain"
)

var (
	ErrEmptyUserID   = fmt.Errorf("%w: user id cannot be empty", sharedDomain.ErrInvalidArgument)
	ErrEmptyScopeID  = fmt.Errorf("%w: scope id cannot be empty", sharedDomain.ErrInvalidArgument)
	ErrZeroTimestamp = fmt.Errorf("%w: timestamp is required", sharedDomain.ErrInvalidArgument)
	ErrInvalidLimit  = fmt.Errorf("%w: limit must be positive", sharedDomain.ErrInvalidArgument)
	ErrInvalidBucket = fmt.Errorf("%w: day must be 0-6 and hour 0-23", sharedDomain.ErrInvalidArgument)
)

// Bucket is one hour of the week. Day uses time.Weekday numbering, so
// Sunday is 0.
type Bucket struct {
	Day  time.Weekday
	Hour int
}

// BucketOf returns the bucket t falls into when read in loc. Every caller
// must pass the same reference location.
func BucketOf(t time.Time, loc *time.Location) Bucket {
	local := t.In(loc)
	return Bucket{Day: local.Weekday(), Hour: local.Hour()}
}

// NewBucket validates day and hour.
func NewBucket(day, hour int) (Bucket, error) {
	b := Bucket{Day: time.Weekday(day), Hour: hour}
	if !b.IsValid() {
		return Bucket{}, fmt.Errorf("%w: got day %d hour %d", ErrInvalidBucket, day, hour)
	}
	return b, nil
}

// IsValid reports whether the bucket is inside the week grid.
func (b Bucket) IsValid() bool {
	return b.Day >= time.Sunday && b.Day <= time.Saturday && b.Hour >= 0 && b.Hour <= 23
}

func (b Bucket) String() string {
	return fmt.Sprintf("%s %02d:00", b.Day, b.Hour)
}

// PatternKey identifies one counter row.
type PatternKey struct {
	UserID  string
	ScopeID string
	Bucket
}

// PatternCounter holds the counts for one key. EngagementCount may exceed
// ActivityCount in imported data; readers clamp.
type PatternCounter struct {
	ActivityCount   int64
	EngagementCount int64
	SuccessCount    int64
}

// PatternRecord is a counter row as read back from storage.
type PatternRecord struct {
	Key       PatternKey
	Counter   PatternCounter
	UpdatedAt time.Time
}

// PeakTime is a bucket's counts summed across all users of a scope.
type PeakTime struct {
	Bucket
	EngagementCount int64
	ActivityCount   int64
}

// Engagement is one observed event for a user in a scope.
type Engagement struct {
	UserID        string
	ScopeID       string
	OccurredAt    time.Time
	IsEngagement  bool
	WasSuccessful bool
}

// Validate checks that the engagement can be bucketed.
func (e Engagement) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(e.ScopeID) == "" {
		return ErrEmptyScopeID
	}
	if e.OccurredAt.IsZero() {
		return ErrZeroTimestamp
	}
	return nil
}

// Key returns the counter key for the engagement in loc.
func (e Engagement) Key(loc *time.Location) PatternKey {
	return PatternKey{
		UserID:  e.UserID,
		ScopeID: e.ScopeID,
		Bucket:  BucketOf(e.OccurredAt, loc),
	}
}

// ValidateIdentity checks a (user, scope) pair used for reads.
func ValidateIdentity(userID, scopeID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUserID
	}
	return ValidateScope(scopeID)
}

// ValidateScope checks a scope id used on its own.
func ValidateScope(scopeID string) error {
	if strings.TrimSpace(scopeID) == "" {
		return ErrEmptyScopeID
	}
	return nil
}
