package queries

import patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"

// PatternDTO is a data transfer object for one counter row.
type PatternDTO struct {
	DayOfWeek         int    `json:"day_of_week"`
	DayName           string `json:"day_name"`
	HourOfDay         int    `json:"hour_of_day"`
	ActivityCount     int64  `json:"activity_count"`
	EngagementCount   int64  `json:"engagement_count"`
	SuccessCount      int64  `json:"success_count"`
	ConfidencePercent int    `json:"confidence_percent"`
}

// PeakTimeDTO is a data transfer object for scope peak times.
type PeakTimeDTO struct {
	DayOfWeek       int    `json:"day_of_week"`
	DayName         string `json:"day_name"`
	HourOfDay       int    `json:"hour_of_day"`
	EngagementCount int64  `json:"engagement_count"`
	ActivityCount   int64  `json:"activity_count"`
}

// PredictionDTO is a data transfer object for predictions. Learning is true
// when there is not enough data yet, and the other fields are then zero.
type PredictionDTO struct {
	UserID            string `json:"user_id"`
	ScopeID           string `json:"scope_id"`
	Learning          bool   `json:"learning"`
	DayOfWeek         int    `json:"day_of_week"`
	DayName           string `json:"day_name,omitempty"`
	HourOfDay         int    `json:"hour_of_day"`
	ConfidencePercent int    `json:"confidence_percent"`
	TotalEngagements  int64  `json:"total_engagements"`
	TotalActivity     int64  `json:"total_activity"`
}

func toPatternDTO(r patternsDomain.PatternRecord) PatternDTO {
	return PatternDTO{
		DayOfWeek:         int(r.Key.Day),
		DayName:           r.Key.Day.String(),
		HourOfDay:         r.Key.Hour,
		ActivityCount:     r.Counter.ActivityCount,
		EngagementCount:   r.Counter.EngagementCount,
		SuccessCount:      r.Counter.SuccessCount,
		ConfidencePercent: patternsDomain.ConfidencePercent(r.Counter.EngagementCount, r.Counter.ActivityCount),
	}
}

func toPeakTimeDTO(p patternsDomain.PeakTime) PeakTimeDTO {
	return PeakTimeDTO{
		DayOfWeek:       int(p.Day),
		DayName:         p.Day.String(),
		HourOfDay:       p.Hour,
		EngagementCount: p.EngagementCount,
		ActivityCount:   p.ActivityCount,
	}
}

func toPredictionDTO(userID, scopeID string, p *patternsDomain.Prediction) *PredictionDTO {
	if p == nil {
		return &PredictionDTO{UserID: userID, ScopeID: scopeID, Learning: true}
	}
	return &PredictionDTO{
		UserID:            userID,
		ScopeID:           scopeID,
		DayOfWeek:         int(p.Bucket.Day),
		DayName:           p.Bucket.Day.String(),
		HourOfDay:         p.Bucket.Hour,
		ConfidencePercent: p.ConfidencePercent,
		TotalEngagements:  p.TotalEngagements,
		TotalActivity:     p.TotalActivity,
	}
}
