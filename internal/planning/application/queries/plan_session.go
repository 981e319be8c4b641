package queries

import (
	"context"
	"errors"
	"log/slog"

	"github.com/peksity/police-chief-bot-sub002/internal/planning/application/services"
	planningDomain "github.com/peksity/police-chief-bot-sub002/internal/planning/domain"
	"github.com/peksity/police-chief-bot-sub002/pkg/observability"
)

// ScheduleEntryDTO is a data transfer object for schedule entries.
type ScheduleEntryDTO struct {
	Key             string  `json:"key"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Reward          int64   `json:"reward"`
	RewardPerHour   float64 `json:"reward_per_hour"`
	Difficulty      string  `json:"difficulty"`
}

// PlanDTO is the result of planning a session.
type PlanDTO struct {
	Catalog              string             `json:"catalog"`
	BudgetMinutes        int                `json:"budget_minutes"`
	Entries              []ScheduleEntryDTO `json:"entries"`
	TotalTimeMinutes     int                `json:"total_time_minutes"`
	TotalReward          int64              `json:"total_reward"`
	RemainingMinutes     int                `json:"remaining_minutes"`
	Alternative          string             `json:"alternative,omitempty"`
	AlternativeRequested bool               `json:"alternative_requested"`
	AlternativeAvailable bool               `json:"alternative_available"`
}

// PlanSessionQuery contains the parameters for planning a session.
type PlanSessionQuery struct {
	Catalog         string
	BudgetMinutes   int
	WithAlternative bool
	Preferences     string
}

// PlanSessionHandler handles the PlanSessionQuery.
type PlanSessionHandler struct {
	catalogs  *planningDomain.CatalogSet
	scheduler *services.GreedyScheduler
	planner   services.AlternativePlanner
	logger    *slog.Logger
	metrics   observability.Metrics
}

// NewPlanSessionHandler creates a new PlanSessionHandler. planner may be
// nil, in which case alternatives are always unavailable.
func NewPlanSessionHandler(
	catalogs *planningDomain.CatalogSet,
	scheduler *services.GreedyScheduler,
	planner services.AlternativePlanner,
	logger *slog.Logger,
	metrics observability.Metrics,
) *PlanSessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &PlanSessionHandler{
		catalogs:  catalogs,
		scheduler: scheduler,
		planner:   planner,
		logger:    logger,
		metrics:   metrics,
	}
}

// Handle executes the PlanSessionQuery.
func (h *PlanSessionHandler) Handle(ctx context.Context, query PlanSessionQuery) (*PlanDTO, error) {
	catalog, err := h.catalogs.Get(query.Catalog)
	if err != nil {
		return nil, err
	}

	schedule, err := h.scheduler.Plan(catalog, query.BudgetMinutes)
	if err != nil {
		return nil, err
	}

	h.metrics.Counter(observability.MetricSchedulesPlanned, 1, observability.T("catalog", catalog.Name()))
	h.metrics.Histogram(observability.MetricScheduleReward, float64(schedule.TotalReward), observability.T("catalog", catalog.Name()))

	dto := toPlanDTO(schedule)

	if query.WithAlternative {
		dto.AlternativeRequested = true
		dto.Alternative, dto.AlternativeAvailable = h.alternative(ctx, catalog, schedule, query)
	}

	return dto, nil
}

func (h *PlanSessionHandler) alternative(
	ctx context.Context,
	catalog *planningDomain.Catalog,
	schedule *planningDomain.Schedule,
	query PlanSessionQuery,
) (string, bool) {
	if h.planner == nil {
		h.metrics.Counter(observability.MetricAlternativeRequests, 1, observability.T("outcome", "disabled"))
		return "", false
	}

	text, err := h.planner.Suggest(ctx, services.AlternativeRequest{
		Catalog:       catalog,
		BudgetMinutes: query.BudgetMinutes,
		Preferences:   query.Preferences,
		Greedy:        schedule,
	})
	if err != nil {
		if !errors.Is(err, services.ErrAlternativeUnavailable) {
			err = errors.Join(services.ErrAlternativeUnavailable, err)
		}
		h.logger.WarnContext(ctx, "alternative plan unavailable",
			"catalog", catalog.Name(),
			"error", err,
		)
		h.metrics.Counter(observability.MetricAlternativeRequests, 1, observability.T("outcome", "unavailable"))
		return "", false
	}

	h.metrics.Counter(observability.MetricAlternativeRequests, 1, observability.T("outcome", "ok"))
	return text, true
}

func toPlanDTO(schedule *planningDomain.Schedule) *PlanDTO {
	entries := make([]ScheduleEntryDTO, len(schedule.Entries))
	for i, e := range schedule.Entries {
		entries[i] = ScheduleEntryDTO{
			Key:             e.Key,
			Name:            e.Name,
			DurationMinutes: e.DurationMinutes,
			Reward:          e.Reward,
			RewardPerHour:   e.RewardRate,
			Difficulty:      string(e.Difficulty),
		}
	}

	return &PlanDTO{
		Catalog:          schedule.CatalogName,
		BudgetMinutes:    schedule.BudgetMinutes,
		Entries:          entries,
		TotalTimeMinutes: schedule.TotalTimeMinutes,
		TotalReward:      schedule.TotalReward,
		RemainingMinutes: schedule.RemainingMinutes(),
	}
}
