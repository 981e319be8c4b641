package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peksity/police-chief-bot-sub002/internal/patterns/application/services"
	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
	"github.com/peksity/police-chief-bot-sub002/internal/patterns/infrastructure/persistence"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/database"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/database/sqlite"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/eventbus"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/migrations"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/outbox"
	"github.com/peksity/police-chief-bot-sub002/pkg/observability"
)

// Friday 21:30 UTC.
var fridayEvening = time.Date(2026, time.October, 16, 21, 30, 0, 0, time.UTC)

type failingOutbox struct {
	outbox.Repository
	err error
}

func (f *failingOutbox) SaveBatch(context.Context, []*outbox.Message) error {
	return f.err
}

func seededRepo(t *testing.T) *persistence.SQLPatternRepository {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	repo := persistence.NewSQLPatternRepository(conn)
	bump := func(user, scope string, day time.Weekday, hour, times int, engaged bool) {
		k := patternsDomain.PatternKey{UserID: user, ScopeID: scope, Bucket: patternsDomain.Bucket{Day: day, Hour: hour}}
		for i := 0; i < times; i++ {
			require.NoError(t, repo.Increment(ctx, k, engaged, false, time.Now()))
		}
	}

	// u1 peaks Friday 21:00 at 75%.
	bump("u1", "g1", time.Friday, 21, 3, true)
	bump("u1", "g1", time.Friday, 21, 1, false)
	// u2 peaks Saturday 22:00.
	bump("u2", "g1", time.Saturday, 22, 4, true)
	// u3 peaks Friday 21:00 below threshold.
	bump("u3", "g1", time.Friday, 21, 1, true)
	bump("u3", "g1", time.Friday, 21, 2, false)
	// u4 peaks Friday 21:00 in another scope.
	bump("u4", "g2", time.Friday, 21, 2, true)
	return repo
}

func newSweeper(repo patternsDomain.Repository, ob outbox.Repository, config NotifySweeperConfig, metrics observability.Metrics) *NotifySweeper {
	predictor := services.NewTemporalPredictor(repo, nil, services.DefaultPredictorConfig(), nil, nil)
	return NewNotifySweeper(repo, predictor, ob, config, nil, metrics)
}

func pendingMessages(t *testing.T, ob *outbox.InMemoryRepository) []*outbox.Message {
	t.Helper()
	msgs, err := ob.Pending(context.Background(), time.Now().Add(time.Hour), 100)
	require.NoError(t, err)
	return msgs
}

func TestNotifySweeper_SweepOnce_QueuesDueUsers(t *testing.T) {
	ob := outbox.NewInMemoryRepository()
	metrics := observability.NewInMemoryMetrics()
	sweeper := newSweeper(seededRepo(t), ob, NotifySweeperConfig{Concurrency: 2}, metrics)

	result, err := sweeper.SweepOnce(context.Background(), fridayEvening)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Evaluated: 4, Due: 2}, result)

	msgs := pendingMessages(t, ob)
	require.Len(t, msgs, 2)

	due := map[string]patternsDomain.NotificationDue{}
	for _, msg := range msgs {
		assert.Equal(t, patternsDomain.RoutingKeyNotificationDue, msg.RoutingKey)
		consumed, err := eventbus.Decode(msg.Payload, msg.RoutingKey)
		require.NoError(t, err)
		var payload patternsDomain.NotificationDue
		require.NoError(t, consumed.DecodePayload(&payload))
		due[payload.UserID] = payload
	}

	require.Contains(t, due, "u1")
	require.Contains(t, due, "u4")
	assert.Equal(t, 75, due["u1"].ConfidencePercent)
	assert.Equal(t, "g1", due["u1"].ScopeID)
	assert.Equal(t, int(time.Friday), due["u1"].DayOfWeek)
	assert.Equal(t, 21, due["u1"].HourOfDay)
	assert.True(t, due["u1"].BucketStart.Equal(time.Date(2026, time.October, 16, 21, 0, 0, 0, time.UTC)))

	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricNotificationsDue, observability.T("scope", "g1")))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricNotificationsDue, observability.T("scope", "g2")))
}

func TestNotifySweeper_SweepOnce_OncePerBucket(t *testing.T) {
	ob := outbox.NewInMemoryRepository()
	sweeper := newSweeper(seededRepo(t), ob, NotifySweeperConfig{}, nil)
	ctx := context.Background()

	_, err := sweeper.SweepOnce(ctx, fridayEvening)
	require.NoError(t, err)

	result, err := sweeper.SweepOnce(ctx, fridayEvening.Add(20*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Due)
	assert.Equal(t, 2, result.Skipped)

	result, err = sweeper.SweepOnce(ctx, fridayEvening.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Due)
	assert.Equal(t, 0, result.Skipped)

	result, err = sweeper.SweepOnce(ctx, fridayEvening.Add(7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Due)

	assert.Len(t, pendingMessages(t, ob), 4)
}

func TestNotifySweeper_SweepOnce_RestrictsScopes(t *testing.T) {
	ob := outbox.NewInMemoryRepository()
	sweeper := newSweeper(seededRepo(t), ob, NotifySweeperConfig{Scopes: []string{"g2"}}, nil)

	result, err := sweeper.SweepOnce(context.Background(), fridayEvening)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Evaluated: 1, Due: 1}, result)
}

func TestNotifySweeper_SweepOnce_ReportsFailuresAndRetries(t *testing.T) {
	repo := seededRepo(t)
	broken := &failingOutbox{err: errors.New("disk full")}
	sweeper := newSweeper(repo, broken, NotifySweeperConfig{Scopes: []string{"g1"}}, nil)

	result, err := sweeper.SweepOnce(context.Background(), fridayEvening)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "g1/u1")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, SweepResult{Evaluated: 3, Failed: 1}, result)

	// The claim was released, so a healthy outbox gets the event in the
	// same bucket.
	ob := outbox.NewInMemoryRepository()
	sweeper.outboxRepo = ob
	result, err = sweeper.SweepOnce(context.Background(), fridayEvening)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Due)
	assert.Len(t, pendingMessages(t, ob), 1)
}

func TestNotifySweeper_Run_StopsOnCancel(t *testing.T) {
	sweeper := newSweeper(seededRepo(t), outbox.NewInMemoryRepository(), NotifySweeperConfig{Interval: time.Millisecond}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.NoError(t, sweeper.Run(ctx))
}
