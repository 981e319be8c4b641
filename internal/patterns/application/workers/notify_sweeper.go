package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/peksity/police-chief-bot-sub002/internal/patterns/application/services"
	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
	sharedApplication "github.com/peksity/police-chief-bot-sub002/internal/shared/application"
	sharedDomain "github.com/peksity/police-chief-bot-sub002/internal/shared/domain"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/outbox"
	"github.com/peksity/police-chief-bot-sub002/pkg/observability"
)

// NotifySweeperConfig configures the notify sweep.
type NotifySweeperConfig struct {
	Interval    time.Duration
	Concurrency int
	// Scopes restricts the sweep. Empty sweeps every scope with data.
	Scopes   []string
	Location *time.Location
}

// DefaultNotifySweeperConfig returns the default configuration.
func DefaultNotifySweeperConfig() NotifySweeperConfig {
	return NotifySweeperConfig{
		Interval:    5 * time.Minute,
		Concurrency: 8,
		Location:    time.UTC,
	}
}

// SweepResult summarises one sweep.
type SweepResult struct {
	Evaluated int
	Due       int
	Skipped   int
	Failed    int
}

// NotifySweeper periodically checks every tracked user and queues a
// patterns.notification.due event when their predicted hour arrives. Each
// user is notified at most once per hour bucket.
type NotifySweeper struct {
	repo       patternsDomain.Repository
	predictor  *services.TemporalPredictor
	outboxRepo outbox.Repository
	config     NotifySweeperConfig
	logger     *slog.Logger
	metrics    observability.Metrics
	clock      func() time.Time

	mu   sync.Mutex
	sent map[string]time.Time
}

// NewNotifySweeper creates a new sweeper.
func NewNotifySweeper(
	repo patternsDomain.Repository,
	predictor *services.TemporalPredictor,
	outboxRepo outbox.Repository,
	config NotifySweeperConfig,
	logger *slog.Logger,
	metrics observability.Metrics,
) *NotifySweeper {
	defaults := DefaultNotifySweeperConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.Location == nil {
		config.Location = defaults.Location
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &NotifySweeper{
		repo:       repo,
		predictor:  predictor,
		outboxRepo: outboxRepo,
		config:     config,
		logger:     logger,
		metrics:    metrics,
		clock:      time.Now,
		sent:       make(map[string]time.Time),
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *NotifySweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "notify sweeper started",
		"interval", s.config.Interval,
		"concurrency", s.config.Concurrency,
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("notify sweeper stopped")
			return nil
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx, s.clock()); err != nil {
				s.logger.ErrorContext(ctx, "notify sweep failed", "error", err)
			}
		}
	}
}

type target struct {
	userID  string
	scopeID string
}

// SweepOnce evaluates every tracked user at now. Per-user failures are
// counted and joined into the returned error; the sweep itself continues.
func (s *NotifySweeper) SweepOnce(ctx context.Context, now time.Time) (SweepResult, error) {
	timer := observability.StartTimer("notify_sweep").WithLogger(s.logger)
	start := time.Now()

	targets, err := s.targets(ctx)
	if err != nil {
		timer.StopWithError(ctx, err)
		return SweepResult{}, err
	}

	bucketStart := patternsDomain.BucketStart(now, s.config.Location)
	s.prune(bucketStart)

	var (
		mu     sync.Mutex
		result SweepResult
		errs   []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for _, tgt := range targets {
		g.Go(func() error {
			due, skipped, err := s.evaluate(gctx, tgt, now, bucketStart)

			mu.Lock()
			defer mu.Unlock()
			result.Evaluated++
			switch {
			case err != nil:
				result.Failed++
				errs = append(errs, fmt.Errorf("%s/%s: %w", tgt.scopeID, tgt.userID, err))
			case skipped:
				result.Skipped++
			case due:
				result.Due++
			}
			return nil
		})
	}
	_ = g.Wait()

	sweepErr := errors.Join(errs...)
	timer.StopWithError(ctx, sweepErr)
	s.metrics.Timing(observability.MetricNotifySweepDuration, time.Since(start))

	s.logger.InfoContext(ctx, "notify sweep completed",
		"evaluated", result.Evaluated,
		"due", result.Due,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, sweepErr
}

func (s *NotifySweeper) targets(ctx context.Context) ([]target, error) {
	scopes := s.config.Scopes
	if len(scopes) == 0 {
		var err error
		scopes, err = s.repo.Scopes(ctx)
		if err != nil {
			return nil, err
		}
	}

	var targets []target
	for _, scope := range scopes {
		users, err := s.repo.TrackedUsers(ctx, scope)
		if err != nil {
			return nil, err
		}
		for _, user := range users {
			targets = append(targets, target{userID: user, scopeID: scope})
		}
	}
	return targets, nil
}

// evaluate reports whether a notification was queued, or skipped because one
// was already queued for this bucket.
func (s *NotifySweeper) evaluate(ctx context.Context, tgt target, now, bucketStart time.Time) (bool, bool, error) {
	decision, err := s.predictor.Evaluate(ctx, tgt.userID, tgt.scopeID, now)
	if err != nil {
		return false, false, err
	}
	if !decision.Notify {
		return false, false, nil
	}

	key := tgt.scopeID + "|" + tgt.userID
	if !s.claim(key, bucketStart) {
		return false, true, nil
	}

	event := patternsDomain.NewNotificationDue(decision.Prediction, now, s.config.Location)
	events := []sharedDomain.DomainEvent{event}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, tgt.userID))

	msgs, err := outbox.NewMessages(events)
	if err == nil {
		err = s.outboxRepo.SaveBatch(ctx, msgs)
	}
	if err != nil {
		s.release(key, bucketStart)
		return false, false, err
	}

	s.metrics.Counter(observability.MetricNotificationsDue, 1, observability.T("scope", tgt.scopeID))
	s.logger.DebugContext(ctx, "notification due",
		"user_id", tgt.userID,
		"scope_id", tgt.scopeID,
		"confidence", decision.Prediction.ConfidencePercent,
	)
	return true, false, nil
}

func (s *NotifySweeper) claim(key string, bucketStart time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.sent[key]; ok && last.Equal(bucketStart) {
		return false
	}
	s.sent[key] = bucketStart
	return true
}

func (s *NotifySweeper) release(key string, bucketStart time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.sent[key]; ok && last.Equal(bucketStart) {
		delete(s.sent, key)
	}
}

// prune forgets claims from earlier buckets.
func (s *NotifySweeper) prune(bucketStart time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, last := range s.sent {
		if last.Before(bucketStart) {
			delete(s.sent, key)
		}
	}
}
