package domain

import (
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/peksity/police-chief-bot-sub002/internal/shared/domain"
)

const (
	AggregateType = "EngagementPattern"

	RoutingKeyEngagementRecorded = "patterns.engagement.recorded"
	RoutingKeyNotificationDue    = "patterns.notification.due"
)

var patternNamespace = uuid.MustParse("6f1c2a4e-3b8d-5c7e-9a10-2d4f6b8e0c13")

// PatternAggregateID is the stable id of a user's pattern in a scope.
func PatternAggregateID(userID, scopeID string) uuid.UUID {
	return uuid.NewSHA1(patternNamespace, []byte(userID+"|"+scopeID))
}

// EngagementRecorded is emitted after a counter increment.
type EngagementRecorded struct {
	sharedDomain.BaseEvent
	UserID     string    `json:"user_id"`
	ScopeID    string    `json:"scope_id"`
	DayOfWeek  int       `json:"day_of_week"`
	HourOfDay  int       `json:"hour_of_day"`
	Engaged    bool      `json:"engaged"`
	Successful bool      `json:"successful"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewEngagementRecorded creates an EngagementRecorded event.
func NewEngagementRecorded(key PatternKey, e Engagement, recordedAt time.Time) *EngagementRecorded {
	return &EngagementRecorded{
		BaseEvent:  sharedDomain.NewBaseEvent(PatternAggregateID(key.UserID, key.ScopeID), AggregateType, RoutingKeyEngagementRecorded, recordedAt),
		UserID:     key.UserID,
		ScopeID:    key.ScopeID,
		DayOfWeek:  int(key.Day),
		HourOfDay:  key.Hour,
		Engaged:    e.IsEngagement,
		Successful: e.WasSuccessful,
		Timestamp:  e.OccurredAt.UTC(),
	}
}

// NotificationDue is emitted when a user's predicted bucket arrives with
// enough confidence.
type NotificationDue struct {
	sharedDomain.BaseEvent
	UserID            string    `json:"user_id"`
	ScopeID           string    `json:"scope_id"`
	DayOfWeek         int       `json:"day_of_week"`
	HourOfDay         int       `json:"hour_of_day"`
	ConfidencePercent int       `json:"confidence_percent"`
	BucketStart       time.Time `json:"bucket_start"`
}

// NewNotificationDue creates a NotificationDue event for prediction at now.
func NewNotificationDue(prediction *Prediction, now time.Time, loc *time.Location) *NotificationDue {
	return &NotificationDue{
		BaseEvent:         sharedDomain.NewBaseEvent(PatternAggregateID(prediction.UserID, prediction.ScopeID), AggregateType, RoutingKeyNotificationDue, now),
		UserID:            prediction.UserID,
		ScopeID:           prediction.ScopeID,
		DayOfWeek:         int(prediction.Bucket.Day),
		HourOfDay:         prediction.Bucket.Hour,
		ConfidencePercent: prediction.ConfidencePercent,
		BucketStart:       BucketStart(now, loc),
	}
}

// BucketStart truncates t to the start of its hour in loc.
func BucketStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
}
