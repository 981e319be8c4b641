package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
	patternCache "github.com/peksity/police-chief-bot-sub002/internal/patterns/infrastructure/cache"
)

// gatedRepo serves a single Friday 21:00 counter. The first TopPatterns call
// snapshots the counter and then waits for release.
type gatedRepo struct {
	patternsDomain.Repository

	mu      sync.Mutex
	counter patternsDomain.PatternCounter
	gated   bool
	entered chan struct{}
	release chan struct{}
}

func (r *gatedRepo) TopPatterns(_ context.Context, userID, scopeID string, _ int) ([]patternsDomain.PatternRecord, error) {
	r.mu.Lock()
	snapshot := r.counter
	gated := r.gated
	r.gated = false
	r.mu.Unlock()

	if gated {
		r.entered <- struct{}{}
		<-r.release
	}
	return []patternsDomain.PatternRecord{{
		Key:     patternsDomain.PatternKey{UserID: userID, ScopeID: scopeID, Bucket: friday21},
		Counter: snapshot,
	}}, nil
}

func (r *gatedRepo) set(counter patternsDomain.PatternCounter) {
	r.mu.Lock()
	r.counter = counter
	r.mu.Unlock()
}

func TestTemporalPredictor_PredictBestTime_ConcurrentEngagementIsNotMaskedByCache(t *testing.T) {
	repo := &gatedRepo{
		counter: patternsDomain.PatternCounter{ActivityCount: 4, EngagementCount: 1},
		gated:   true,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	cache := patternCache.NewInMemoryPredictionCache(time.Hour)
	predictor := NewTemporalPredictor(repo, cache, DefaultPredictorConfig(), nil, nil)
	ctx := context.Background()

	type outcome struct {
		prediction *patternsDomain.Prediction
		err        error
	}
	done := make(chan outcome, 1)
	go func() {
		p, err := predictor.PredictBestTime(ctx, "u1", "g1")
		done <- outcome{p, err}
	}()

	<-repo.entered
	repo.set(patternsDomain.PatternCounter{ActivityCount: 4, EngagementCount: 3})
	require.NoError(t, cache.Invalidate(ctx, "u1", "g1"))
	close(repo.release)

	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, 25, first.prediction.ConfidencePercent)

	_, cached, err := cache.Get(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.False(t, cached)

	second, err := predictor.PredictBestTime(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, 75, second.ConfidencePercent)

	third, err := predictor.PredictBestTime(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, 75, third.ConfidencePercent)
}
