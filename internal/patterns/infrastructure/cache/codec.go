// Package cache holds read-through prediction caches.
package cache

import (
	"encoding/json"
	"time"

	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
)

type cachedPrediction struct {
	UserID            string `json:"user_id"`
	ScopeID           string `json:"scope_id"`
	DayOfWeek         int    `json:"day_of_week"`
	HourOfDay         int    `json:"hour_of_day"`
	ConfidencePercent int    `json:"confidence_percent"`
	TotalEngagements  int64  `json:"total_engagements"`
	TotalActivity     int64  `json:"total_activity"`
	ComputedAt        int64  `json:"computed_at"`
}

func encodePrediction(p *patternsDomain.Prediction) ([]byte, error) {
	return json.Marshal(cachedPrediction{
		UserID:            p.UserID,
		ScopeID:           p.ScopeID,
		DayOfWeek:         int(p.Bucket.Day),
		HourOfDay:         p.Bucket.Hour,
		ConfidencePercent: p.ConfidencePercent,
		TotalEngagements:  p.TotalEngagements,
		TotalActivity:     p.TotalActivity,
		ComputedAt:        p.ComputedAt.UnixMilli(),
	})
}

func decodePrediction(data []byte) (*patternsDomain.Prediction, error) {
	var c cachedPrediction
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	bucket, err := patternsDomain.NewBucket(c.DayOfWeek, c.HourOfDay)
	if err != nil {
		return nil, err
	}
	return &patternsDomain.Prediction{
		UserID:            c.UserID,
		ScopeID:           c.ScopeID,
		Bucket:            bucket,
		ConfidencePercent: c.ConfidencePercent,
		TotalEngagements:  c.TotalEngagements,
		TotalActivity:     c.TotalActivity,
		ComputedAt:        time.UnixMilli(c.ComputedAt).UTC(),
	}, nil
}
