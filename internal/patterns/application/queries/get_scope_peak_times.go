package queries

import (
	"context"

	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
)

// GetScopePeakTimesQuery contains the parameters for listing a scope's
// busiest buckets.
type GetScopePeakTimesQuery struct {
	ScopeID string
	Limit   int
}

// GetScopePeakTimesHandler handles the GetScopePeakTimesQuery.
type GetScopePeakTimesHandler struct {
	repo patternsDomain.Repository
}

// NewGetScopePeakTimesHandler creates a new GetScopePeakTimesHandler.
func NewGetScopePeakTimesHandler(repo patternsDomain.Repository) *GetScopePeakTimesHandler {
	return &GetScopePeakTimesHandler{repo: repo}
}

// Handle executes the GetScopePeakTimesQuery.
func (h *GetScopePeakTimesHandler) Handle(ctx context.Context, query GetScopePeakTimesQuery) ([]PeakTimeDTO, error) {
	limit := query.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	peaks, err := h.repo.ScopePeakTimes(ctx, query.ScopeID, limit)
	if err != nil {
		return nil, err
	}

	result := make([]PeakTimeDTO, len(peaks))
	for i, p := range peaks {
		result[i] = toPeakTimeDTO(p)
	}
	return result, nil
}
