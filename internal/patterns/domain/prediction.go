package domain

import (
	"math"
	"time"
)

// DefaultConfidenceThreshold is the minimum confidence at which a
// prediction is allowed to trigger a notification.
const DefaultConfidenceThreshold = 50

// Prediction is the best engagement bucket derived for a user in a scope.
// It is recomputed from the counters on demand.
type Prediction struct {
	UserID            string
	ScopeID           string
	Bucket            Bucket
	ConfidencePercent int
	TotalEngagements  int64
	TotalActivity     int64
	ComputedAt        time.Time
}

// ConfidencePercent is engagements over activity as a rounded percentage,
// clamped to 0-100. An activity count of zero is treated as one.
func ConfidencePercent(engagements, activity int64) int {
	denominator := activity
	if denominator < 1 {
		denominator = 1
	}
	ratio := math.Min(100, float64(engagements)/float64(denominator)*100)
	pct := int(math.Round(ratio))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// PredictionFromRecord derives the prediction for the top-ranked counter row.
func PredictionFromRecord(record PatternRecord, computedAt time.Time) *Prediction {
	return &Prediction{
		UserID:            record.Key.UserID,
		ScopeID:           record.Key.ScopeID,
		Bucket:            record.Key.Bucket,
		ConfidencePercent: ConfidencePercent(record.Counter.EngagementCount, record.Counter.ActivityCount),
		TotalEngagements:  record.Counter.EngagementCount,
		TotalActivity:     record.Counter.ActivityCount,
		ComputedAt:        computedAt,
	}
}

// Matches reports whether b is exactly the predicted bucket. A time one
// minute past the predicted hour does not match.
func (p *Prediction) Matches(b Bucket) bool {
	return p != nil && p.Bucket == b
}

// MeetsThreshold reports whether the confidence is at least threshold.
func (p *Prediction) MeetsThreshold(threshold int) bool {
	return p != nil && p.ConfidencePercent >= threshold
}
