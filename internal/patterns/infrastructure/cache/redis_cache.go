package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// DefaultTTL bounds how stale a cached prediction can get when no
// invalidation arrives.
const DefaultTTL = time.Hour

// ErrCacheUnavailable wraps every Redis failure.
var ErrCacheUnavailable = errors.New("prediction cache unavailable")

// RedisConfig configures the Redis prediction cache.
type RedisConfig struct {
	Prefix           string
	TTL              time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultRedisConfig returns the default configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Prefix:           "chief:prediction",
		TTL:              DefaultTTL,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// RedisPredictionCache stores predictions as JSON strings with a TTL.
// Keys are namespaced: {prefix}:{scope_id}:{user_id}. The generation counter
// lives at {prefix}:gen:{scope_id}:{user_id} without a TTL so it never
// restarts at a value a reader may still hold.
type RedisPredictionCache struct {
	client  redis.UniversalClient
	config  RedisConfig
	breaker *gobreaker.CircuitBreaker[[]byte]
}

var _ patternsDomain.PredictionCache = (*RedisPredictionCache)(nil)

// NewRedisPredictionCache creates a cache on client.
func NewRedisPredictionCache(client redis.UniversalClient, config RedisConfig, logger *slog.Logger) *RedisPredictionCache {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultRedisConfig()
	if config.Prefix == "" {
		config.Prefix = defaults.Prefix
	}
	if config.TTL <= 0 {
		config.TTL = defaults.TTL
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = defaults.OpenTimeout
	}

	threshold := config.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "prediction-cache",
		MaxRequests: 1,
		Timeout:     config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &RedisPredictionCache{client: client, config: config, breaker: breaker}
}

func (c *RedisPredictionCache) key(userID, scopeID string) string {
	return fmt.Sprintf("%s:%s:%s", c.config.Prefix, scopeID, userID)
}

func (c *RedisPredictionCache) genKey(userID, scopeID string) string {
	return fmt.Sprintf("%s:gen:%s:%s", c.config.Prefix, scopeID, userID)
}

func (c *RedisPredictionCache) Get(ctx context.Context, userID, scopeID string) (*patternsDomain.Prediction, bool, error) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		data, err := c.client.Get(ctx, c.key(userID, scopeID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: get: %w", ErrCacheUnavailable, err)
	}
	if data == nil {
		return nil, false, nil
	}

	prediction, err := decodePrediction(data)
	if err != nil {
		// Unreadable entries are dropped and treated as a miss.
		_ = c.Invalidate(ctx, userID, scopeID)
		return nil, false, nil
	}
	return prediction, true, nil
}

func (c *RedisPredictionCache) Generation(ctx context.Context, userID, scopeID string) (uint64, error) {
	var generation uint64
	_, err := c.breaker.Execute(func() ([]byte, error) {
		gen, err := c.client.Get(ctx, c.genKey(userID, scopeID)).Uint64()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		generation = gen
		return nil, err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: generation: %w", ErrCacheUnavailable, err)
	}
	return generation, nil
}

// SetIfCurrent writes under WATCH on the generation key, so an Invalidate
// racing the write aborts it.
func (c *RedisPredictionCache) SetIfCurrent(ctx context.Context, prediction *patternsDomain.Prediction, generation uint64) (bool, error) {
	if prediction == nil {
		return false, nil
	}
	data, err := encodePrediction(prediction)
	if err != nil {
		return false, err
	}

	key := c.key(prediction.UserID, prediction.ScopeID)
	genKey := c.genKey(prediction.UserID, prediction.ScopeID)
	stored := false

	_, err = c.breaker.Execute(func() ([]byte, error) {
		err := c.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.Get(ctx, genKey).Uint64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if current != generation {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, c.config.TTL)
				return nil
			})
			if err == nil {
				stored = true
			}
			return err
		}, genKey)
		if errors.Is(err, redis.TxFailedErr) {
			return nil, nil
		}
		return nil, err
	})
	if err != nil {
		return false, fmt.Errorf("%w: set: %w", ErrCacheUnavailable, err)
	}
	return stored, nil
}

func (c *RedisPredictionCache) Invalidate(ctx context.Context, userID, scopeID string) error {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, c.key(userID, scopeID))
			pipe.Incr(ctx, c.genKey(userID, scopeID))
			return nil
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: invalidate: %w", ErrCacheUnavailable, err)
	}
	return nil
}
