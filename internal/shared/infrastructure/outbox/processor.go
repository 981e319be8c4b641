package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/eventbus"
	"github.com/peksity/police-chief-bot-sub002/pkg/observability"
)

// ProcessorConfig controls polling and retry behaviour.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig returns the worker defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     500 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
}

// Stats is a snapshot of processor activity.
type Stats struct {
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	LastError       string
	LastProcessedAt time.Time
}

// Processor drains the outbox into a Publisher.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics
	now       func() time.Time

	statsMu sync.Mutex
	stats   Stats
}

// NewProcessor creates a processor. A nil logger or metrics falls back to
// slog.Default and NoopMetrics.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger, metrics observability.Metrics) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	interval := p.config.PollInterval
	if interval <= 0 {
		interval = DefaultProcessorConfig().PollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.logger.InfoContext(ctx, "outbox processor started",
		"poll_interval", interval,
		"batch_size", p.config.BatchSize,
	)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox processor stopped")
			return nil
		case <-ticker.C:
			if _, err := p.ProcessOnce(ctx); err != nil {
				p.logger.ErrorContext(ctx, "failed to process outbox batch", "error", err)
			}
		}
	}
}

// ProcessOnce publishes one batch and returns how many messages were delivered.
func (p *Processor) ProcessOnce(ctx context.Context) (int, error) {
	now := p.now()
	messages, err := p.repo.Pending(ctx, now, p.config.BatchSize)
	if err != nil {
		p.recordError(err)
		return 0, err
	}

	published := 0
	for _, msg := range messages {
		if err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
			p.handleFailure(ctx, msg, err)
			continue
		}

		if err := p.repo.MarkPublished(ctx, msg.ID, p.now()); err != nil {
			p.logger.ErrorContext(ctx, "failed to mark message as published",
				"id", msg.ID,
				"event_id", msg.EventID,
				"error", err,
			)
			continue
		}
		published++
		p.metrics.Counter("outbox_published_total", 1, observability.T("routing_key", msg.RoutingKey))
	}

	p.statsMu.Lock()
	p.stats.PublishedCount += uint64(published)
	p.stats.LastProcessedAt = now
	p.statsMu.Unlock()

	return published, nil
}

func (p *Processor) handleFailure(ctx context.Context, msg *Message, err error) {
	p.logger.WarnContext(ctx, "failed to publish message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"correlation_id", msg.Metadata.CorrelationID,
		"user_id", msg.Metadata.UserID,
		"retry_count", msg.RetryCount,
		"error", err,
	)

	p.statsMu.Lock()
	p.stats.LastError = err.Error()
	if p.shouldDeadLetter(msg) {
		p.stats.DeadCount++
	} else {
		p.stats.FailedCount++
	}
	p.statsMu.Unlock()

	if p.shouldDeadLetter(msg) {
		p.metrics.Counter("outbox_dead_lettered_total", 1, observability.T("routing_key", msg.RoutingKey))
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error(), p.now()); markErr != nil {
			p.logger.ErrorContext(ctx, "failed to dead-letter message", "id", msg.ID, "error", markErr)
		}
		return
	}

	p.metrics.Counter("outbox_failed_total", 1, observability.T("routing_key", msg.RoutingKey))
	next := p.now().Add(p.retryBackoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), next); markErr != nil {
		p.logger.ErrorContext(ctx, "failed to mark message as failed", "id", msg.ID, "error", markErr)
	}
}

func (p *Processor) shouldDeadLetter(msg *Message) bool {
	if p.config.MaxRetries <= 0 {
		return true
	}
	return msg.RetryCount+1 >= p.config.MaxRetries
}

func (p *Processor) retryBackoff(attempt int) time.Duration {
	base := p.config.RetryBackoffBase
	if base <= 0 {
		base = time.Second
	}
	maxBackoff := p.config.RetryBackoffMax
	if maxBackoff <= 0 {
		maxBackoff = time.Minute
	}
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 30 {
		return maxBackoff
	}

	backoff := base << (attempt - 1)
	if backoff <= 0 || backoff > maxBackoff {
		return maxBackoff
	}
	return backoff
}

func (p *Processor) recordError(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.LastError = err.Error()
}

// Stats returns a snapshot of processor counters.
func (p *Processor) Stats() Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}

// Cleanup deletes published messages older than retention.
func (p *Processor) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	deleted, err := p.repo.DeletePublishedBefore(ctx, p.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		p.logger.InfoContext(ctx, "cleaned up published outbox messages", "deleted", deleted)
	}
	return deleted, nil
}
