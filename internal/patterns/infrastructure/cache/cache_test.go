package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrediction() *patternsDomain.Prediction {
	return &patternsDomain.Prediction{
		UserID:            "u1",
		ScopeID:           "g1",
		Bucket:            patternsDomain.Bucket{Day: time.Friday, Hour: 21},
		ConfidencePercent: 75,
		TotalEngagements:  3,
		TotalActivity:     4,
		ComputedAt:        time.Date(2026, 3, 6, 20, 0, 0, 0, time.UTC),
	}
}

func newRedisCache(t *testing.T, cfg RedisConfig) (*RedisPredictionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisPredictionCache(client, cfg, nil), mr
}

func TestRedisPredictionCache_RoundTrip(t *testing.T) {
	c, mr := newRedisCache(t, DefaultRedisConfig())
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	want := testPrediction()
	stored, err := c.SetIfCurrent(ctx, want, 0)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.True(t, mr.Exists("chief:prediction:g1:u1"))

	got, ok, err := c.Get(ctx, "u1", "g1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Bucket, got.Bucket)
	assert.Equal(t, 75, got.ConfidencePercent)
	assert.Equal(t, int64(3), got.TotalEngagements)
	assert.Equal(t, int64(4), got.TotalActivity)
	assert.True(t, want.ComputedAt.Equal(got.ComputedAt))

	require.NoError(t, c.Invalidate(ctx, "u1", "g1"))
	_, ok, err = c.Get(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPredictionCache_TTL(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.TTL = 10 * time.Minute
	c, mr := newRedisCache(t, cfg)
	ctx := context.Background()

	_, err := c.SetIfCurrent(ctx, testPrediction(), 0)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, mr.TTL("chief:prediction:g1:u1"))

	mr.FastForward(11 * time.Minute)

	_, ok, err := c.Get(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPredictionCache_CorruptEntryIsAMiss(t *testing.T) {
	c, mr := newRedisCache(t, DefaultRedisConfig())
	require.NoError(t, mr.Set("chief:prediction:g1:u1", "{not json"))

	_, ok, err := c.Get(context.Background(), "u1", "g1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("chief:prediction:g1:u1"))
}

func TestRedisPredictionCache_FailuresOpenBreaker(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.FailureThreshold = 2

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisPredictionCache(client, cfg, nil)
	ctx := context.Background()
	mr.Close()

	for i := 0; i < 2; i++ {
		_, _, err := c.Get(ctx, "u1", "g1")
		assert.ErrorIs(t, err, ErrCacheUnavailable)
	}

	_, err = c.SetIfCurrent(ctx, testPrediction(), 0)
	assert.ErrorIs(t, err, ErrCacheUnavailable)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestInMemoryPredictionCache(t *testing.T) {
	c := NewInMemoryPredictionCache(time.Minute)
	now := time.Date(2026, 3, 6, 20, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.SetIfCurrent(ctx, testPrediction(), 0)
	require.NoError(t, err)
	got, ok, err := c.Get(ctx, "u1", "g1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 75, got.ConfidencePercent)

	got.ConfidencePercent = 1
	again, _, _ := c.Get(ctx, "u1", "g1")
	assert.Equal(t, 75, again.ConfidencePercent)

	_, ok, _ = c.Get(ctx, "u1", "g2")
	assert.False(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "u1", "g1")
	assert.False(t, ok)

	now = now.Add(-time.Minute)
	require.NoError(t, c.Invalidate(ctx, "u1", "g1"))
	_, ok, _ = c.Get(ctx, "u1", "g1")
	assert.False(t, ok)
}

func TestRedisPredictionCache_InvalidationFencesOlderWriters(t *testing.T) {
	c, mr := newRedisCache(t, DefaultRedisConfig())
	ctx := context.Background()

	gen, err := c.Generation(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), gen)

	require.NoError(t, c.Invalidate(ctx, "u1", "g1"))

	stored, err := c.SetIfCurrent(ctx, testPrediction(), gen)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists("chief:prediction:g1:u1"))

	gen, err = c.Generation(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)

	stored, err = c.SetIfCurrent(ctx, testPrediction(), gen)
	require.NoError(t, err)
	assert.True(t, stored)

	other, err := c.Generation(ctx, "u2", "g1")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), other)
}

func TestInMemoryPredictionCache_InvalidationFencesOlderWriters(t *testing.T) {
	c := NewInMemoryPredictionCache(time.Minute)
	ctx := context.Background()

	gen, err := c.Generation(ctx, "u1", "g1")
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "u1", "g1"))

	stored, err := c.SetIfCurrent(ctx, testPrediction(), gen)
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok, _ := c.Get(ctx, "u1", "g1")
	assert.False(t, ok)

	gen, err = c.Generation(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)

	stored, err = c.SetIfCurrent(ctx, testPrediction(), gen)
	require.NoError(t, err)
	assert.True(t, stored)
	_, ok, _ = c.Get(ctx, "u1", "g1")
	assert.True(t, ok)
}
