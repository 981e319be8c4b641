package subscribers

import (
	"context"
	"fmt"
	"log/slog"

	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/eventbus"
)

// CacheInvalidator drops a user's cached prediction whenever one of their
// counters changes.
type CacheInvalidator struct {
	cache  patternsDomain.PredictionCache
	logger *slog.Logger
}

// NewCacheInvalidator creates a new cache invalidator.
func NewCacheInvalidator(cache patternsDomain.PredictionCache, logger *slog.Logger) *CacheInvalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheInvalidator{cache: cache, logger: logger}
}

// EventTypes returns the event types this subscriber handles.
func (s *CacheInvalidator) EventTypes() []string {
	return []string{patternsDomain.RoutingKeyEngagementRecorded}
}

// Handle processes an event.
func (s *CacheInvalidator) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload patternsDomain.EngagementRecorded
	if err := event.DecodePayload(&payload); err != nil {
		return fmt.Errorf("decode %s: %w", event.RoutingKey, err)
	}
	if payload.UserID == "" || payload.ScopeID == "" {
		s.logger.WarnContext(ctx, "engagement event without identity",
			"event_id", event.EventID,
		)
		return nil
	}

	if err := s.cache.Invalidate(ctx, payload.UserID, payload.ScopeID); err != nil {
		return fmt.Errorf("invalidate prediction for %s/%s: %w", payload.ScopeID, payload.UserID, err)
	}

	s.logger.DebugContext(ctx, "prediction cache invalidated",
		"user_id", payload.UserID,
		"scope_id", payload.ScopeID,
	)
	return nil
}
