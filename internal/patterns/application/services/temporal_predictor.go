package services

import (
	"context"
	"log/slog"
	"time"

	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
	"github.com/peksity/police-chief-bot-sub002/pkg/observability"
)

// PredictorConfig contains configuration for the temporal predictor.
type PredictorConfig struct {
	// ConfidenceThreshold is the minimum confidence percent that allows a
	// notification.
	ConfidenceThreshold int
	// Location is the reference zone every bucket is read in.
	Location *time.Location
}

// DefaultPredictorConfig returns the default configuration.
func DefaultPredictorConfig() PredictorConfig {
	return PredictorConfig{
		ConfidenceThreshold: patternsDomain.DefaultConfidenceThreshold,
		Location:            time.UTC,
	}
}

// NotifyDecision explains a ShouldNotify outcome.
type NotifyDecision struct {
	Notify     bool
	Prediction *patternsDomain.Prediction
	Now        patternsDomain.Bucket
}

// TemporalPredictor derives the most likely engagement hour of the week from
// a user's counters. It holds no state of its own; the cache is optional
// and never authoritative.
type TemporalPredictor struct {
	repo    patternsDomain.Repository
	cache   patternsDomain.PredictionCache
	config  PredictorConfig
	logger  *slog.Logger
	metrics observability.Metrics
	clock   func() time.Time
}

// NewTemporalPredictor creates a new predictor. cache may be nil.
func NewTemporalPredictor(
	repo patternsDomain.Repository,
	cache patternsDomain.PredictionCache,
	config PredictorConfig,
	logger *slog.Logger,
	metrics observability.Metrics,
) *TemporalPredictor {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &TemporalPredictor{
		repo:    repo,
		cache:   cache,
		config:  config,
		logger:  logger,
		metrics: metrics,
		clock:   time.Now,
	}
}

// Config returns the predictor configuration.
func (p *TemporalPredictor) Config() PredictorConfig {
	return p.config
}

// PredictBestTime returns the user's top bucket, or nil when nothing has
// been recorded yet.
func (p *TemporalPredictor) PredictBestTime(ctx context.Context, userID, scopeID string) (*patternsDomain.Prediction, error) {
	if err := patternsDomain.ValidateIdentity(userID, scopeID); err != nil {
		return nil, err
	}

	if cached, ok := p.fromCache(ctx, userID, scopeID); ok {
		return cached, nil
	}

	// The generation is taken before the counters are read so that an
	// invalidation landing during the read keeps this result out of the cache.
	generation, cacheable := p.cacheGeneration(ctx, userID, scopeID)

	records, err := p.repo.TopPatterns(ctx, userID, scopeID, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	prediction := patternsDomain.PredictionFromRecord(records[0], p.clock().UTC())

	if cacheable {
		stored, err := p.cache.SetIfCurrent(ctx, prediction, generation)
		if err != nil {
			p.logger.WarnContext(ctx, "failed to cache prediction",
				"user_id", userID,
				"scope_id", scopeID,
				"error", err,
			)
		} else if !stored {
			p.logger.DebugContext(ctx, "prediction superseded before caching",
				"user_id", userID,
				"scope_id", scopeID,
			)
		}
	}
	return prediction, nil
}

func (p *TemporalPredictor) cacheGeneration(ctx context.Context, userID, scopeID string) (uint64, bool) {
	if p.cache == nil {
		return 0, false
	}
	generation, err := p.cache.Generation(ctx, userID, scopeID)
	if err != nil {
		p.logger.WarnContext(ctx, "prediction cache generation read failed",
			"user_id", userID,
			"scope_id", scopeID,
			"error", err,
		)
		return 0, false
	}
	return generation, true
}

func (p *TemporalPredictor) fromCache(ctx context.Context, userID, scopeID string) (*patternsDomain.Prediction, bool) {
	if p.cache == nil {
		return nil, false
	}

	prediction, ok, err := p.cache.Get(ctx, userID, scopeID)
	if err != nil {
		p.logger.WarnContext(ctx, "prediction cache read failed",
			"user_id", userID,
			"scope_id", scopeID,
			"error", err,
		)
		return nil, false
	}
	if !ok {
		p.metrics.Counter(observability.MetricPredictionCacheMiss, 1)
		return nil, false
	}
	p.metrics.Counter(observability.MetricPredictionCacheHits, 1)
	return prediction, true
}

// ShouldNotify reports whether now falls in the user's predicted bucket
// with enough confidence. Matching is by exact day and hour.
func (p *TemporalPredictor) ShouldNotify(ctx context.Context, userID, scopeID string, now time.Time) (bool, error) {
	decision, err := p.Evaluate(ctx, userID, scopeID, now)
	if err != nil {
		return false, err
	}
	return decision.Notify, nil
}

// Evaluate is ShouldNotify with the prediction it was based on.
func (p *TemporalPredictor) Evaluate(ctx context.Context, userID, scopeID string, now time.Time) (NotifyDecision, error) {
	if now.IsZero() {
		return NotifyDecision{}, patternsDomain.ErrZeroTimestamp
	}

	prediction, err := p.PredictBestTime(ctx, userID, scopeID)
	if err != nil {
		return NotifyDecision{}, err
	}

	current := patternsDomain.BucketOf(now, p.config.Location)
	decision := NotifyDecision{Prediction: prediction, Now: current}
	decision.Notify = prediction.MeetsThreshold(p.config.ConfidenceThreshold) && prediction.Matches(current)
	return decision, nil
}
