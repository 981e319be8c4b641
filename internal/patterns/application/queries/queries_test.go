package queries

import (
	"context"
	"testing"
	"time"

	"github.com/peksity/police-chief-bot-sub002/internal/patterns/application/services"
	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
	"github.com/peksity/police-chief-bot-sub002/internal/patterns/infrastructure/persistence"
	sharedDomain "github.com/peksity/police-chief-bot-sub002/internal/shared/domain"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/database"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/database/sqlite"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededRepo(t *testing.T) *persistence.SQLPatternRepository {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	repo := persistence.NewSQLPatternRepository(conn)
	bump := func(user string, day time.Weekday, hour, times int, engaged bool) {
		k := patternsDomain.PatternKey{UserID: user, ScopeID: "g1", Bucket: patternsDomain.Bucket{Day: day, Hour: hour}}
		for i := 0; i < times; i++ {
			require.NoError(t, repo.Increment(ctx, k, engaged, false, time.Now()))
		}
	}

	bump("u1", time.Friday, 21, 3, true)
	bump("u1", time.Friday, 21, 1, false)
	bump("u1", time.Monday, 8, 1, true)
	bump("u2", time.Saturday, 22, 6, true)
	return repo
}

func TestGetTopPatternsHandler_Handle(t *testing.T) {
	handler := NewGetTopPatternsHandler(seededRepo(t))

	patterns, err := handler.Handle(context.Background(), GetTopPatternsQuery{UserID: "u1", ScopeID: "g1"})
	require.NoError(t, err)
	require.Len(t, patterns, 2)

	assert.Equal(t, PatternDTO{
		DayOfWeek:         5,
		DayName:           "Friday",
		HourOfDay:         21,
		ActivityCount:     4,
		EngagementCount:   3,
		ConfidencePercent: 75,
	}, patterns[0])
	assert.Equal(t, "Monday", patterns[1].DayName)

	_, err = handler.Handle(context.Background(), GetTopPatternsQuery{UserID: "u1", ScopeID: "g1", Limit: -1})
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidArgument)
}

func TestGetScopePeakTimesHandler_Handle(t *testing.T) {
	handler := NewGetScopePeakTimesHandler(seededRepo(t))

	peaks, err := handler.Handle(context.Background(), GetScopePeakTimesQuery{ScopeID: "g1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, peaks, 2)
	assert.Equal(t, "Saturday", peaks[0].DayName)
	assert.Equal(t, int64(6), peaks[0].EngagementCount)
	assert.Equal(t, "Friday", peaks[1].DayName)
	assert.Equal(t, int64(3), peaks[1].EngagementCount)
}

func TestPredictBestTimeHandler_Handle(t *testing.T) {
	predictor := services.NewTemporalPredictor(seededRepo(t), nil, services.DefaultPredictorConfig(), nil, nil)
	handler := NewPredictBestTimeHandler(predictor)

	prediction, err := handler.Handle(context.Background(), PredictBestTimeQuery{UserID: "u1", ScopeID: "g1"})
	require.NoError(t, err)
	assert.False(t, prediction.Learning)
	assert.Equal(t, "Friday", prediction.DayName)
	assert.Equal(t, 21, prediction.HourOfDay)
	assert.Equal(t, 75, prediction.ConfidencePercent)

	learning, err := handler.Handle(context.Background(), PredictBestTimeQuery{UserID: "new", ScopeID: "g1"})
	require.NoError(t, err)
	assert.True(t, learning.Learning)
	assert.Equal(t, "new", learning.UserID)
	assert.Empty(t, learning.DayName)
}

func TestShouldNotifyHandler_Handle(t *testing.T) {
	predictor := services.NewTemporalPredictor(seededRepo(t), nil, services.DefaultPredictorConfig(), nil, nil)
	handler := NewShouldNotifyHandler(predictor)

	// 2026-03-06 is a Friday.
	result, err := handler.Handle(context.Background(), ShouldNotifyQuery{
		UserID: "u1", ScopeID: "g1", Now: time.Date(2026, 3, 6, 21, 40, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, result.Notify)
	assert.Equal(t, "Friday", result.NowDay)
	assert.Equal(t, 21, result.NowHour)
	assert.Equal(t, 50, result.Threshold)
	assert.Equal(t, 75, result.Prediction.ConfidencePercent)

	result, err = handler.Handle(context.Background(), ShouldNotifyQuery{
		UserID: "new", ScopeID: "g1", Now: time.Date(2026, 3, 6, 21, 40, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.False(t, result.Notify)
	assert.True(t, result.Prediction.Learning)
}
