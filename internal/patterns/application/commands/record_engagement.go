package commands

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
	sharedApplication "github.com/peksity/police-chief-bot-sub002/internal/shared/application"
	sharedDomain "github.com/peksity/police-chief-bot-sub002/internal/shared/domain"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/outbox"
	"github.com/peksity/police-chief-bot-sub002/pkg/observability"
)

// RecordEngagementCommand contains the data needed to record an engagement.
type RecordEngagementCommand struct {
	UserID        string
	ScopeID       string
	OccurredAt    time.Time
	IsEngagement  bool
	WasSuccessful bool
}

// RecordEngagementResult reports the bucket the engagement was counted in.
type RecordEngagementResult struct {
	DayOfWeek int `json:"day_of_week"`
	HourOfDay int `json:"hour_of_day"`
}

// RecordEngagementHandler handles the RecordEngagementCommand.
type RecordEngagementHandler struct {
	patternRepo patternsDomain.Repository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	cache       patternsDomain.PredictionCache
	location    *time.Location
	logger      *slog.Logger
	metrics     observability.Metrics
	clock       func() time.Time
}

// NewRecordEngagementHandler creates a new RecordEngagementHandler. Buckets
// are derived in location. cache may be nil.
func NewRecordEngagementHandler(
	patternRepo patternsDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	cache patternsDomain.PredictionCache,
	location *time.Location,
	logger *slog.Logger,
	metrics observability.Metrics,
) *RecordEngagementHandler {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &RecordEngagementHandler{
		patternRepo: patternRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		cache:       cache,
		location:    location,
		logger:      logger,
		metrics:     metrics,
		clock:       time.Now,
	}
}

// Handle executes the RecordEngagementCommand. The counter increment and the
// engagement.recorded event commit together or not at all.
func (h *RecordEngagementHandler) Handle(ctx context.Context, cmd RecordEngagementCommand) (*RecordEngagementResult, error) {
	engagement := patternsDomain.Engagement{
		UserID:        cmd.UserID,
		ScopeID:       cmd.ScopeID,
		OccurredAt:    cmd.OccurredAt,
		IsEngagement:  cmd.IsEngagement,
		WasSuccessful: cmd.WasSuccessful,
	}
	if err := engagement.Validate(); err != nil {
		return nil, err
	}

	key := engagement.Key(h.location)
	now := h.clock()

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.patternRepo.Increment(txCtx, key, cmd.IsEngagement, cmd.WasSuccessful, now); err != nil {
			return err
		}

		events := []sharedDomain.DomainEvent{patternsDomain.NewEngagementRecorded(key, engagement, now)}
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, cmd.UserID))

		msgs, err := outbox.NewMessages(events)
		if err != nil {
			return err
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return nil, err
	}
	h.invalidate(ctx, cmd.UserID, cmd.ScopeID)

	h.metrics.Counter(observability.MetricEngagementsRecorded, 1,
		observability.T("engaged", strconv.FormatBool(cmd.IsEngagement)),
	)
	h.logger.DebugContext(ctx, "engagement recorded",
		"user_id", cmd.UserID,
		"scope_id", cmd.ScopeID,
		"bucket", key.Bucket.String(),
	)

	return &RecordEngagementResult{DayOfWeek: int(key.Day), HourOfDay: key.Hour}, nil
}

// invalidate drops the cached prediction once the new counts are committed.
// The engagement.recorded event still reaches caches in other processes.
func (h *RecordEngagementHandler) invalidate(ctx context.Context, userID, scopeID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, userID, scopeID); err != nil {
		h.logger.WarnContext(ctx, "failed to invalidate cached prediction",
			"user_id", userID,
			"scope_id", scopeID,
			"error", err,
		)
	}
}
