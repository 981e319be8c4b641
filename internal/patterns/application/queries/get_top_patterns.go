package queries

import (
	"context"

	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
)

// DefaultLimit is used when a query does not set one.
const DefaultLimit = 5

// GetTopPatternsQuery contains the parameters for listing a user's top buckets.
type GetTopPatternsQuery struct {
	UserID  string
	ScopeID string
	Limit   int
}

// GetTopPatternsHandler handles the GetTopPatternsQuery.
type GetTopPatternsHandler struct {
	repo patternsDomain.Repository
}

// NewGetTopPatternsHandler creates a new GetTopPatternsHandler.
func NewGetTopPatternsHandler(repo patternsDomain.Repository) *GetTopPatternsHandler {
	return &GetTopPatternsHandler{repo: repo}
}

// Handle executes the GetTopPatternsQuery.
func (h *GetTopPatternsHandler) Handle(ctx context.Context, query GetTopPatternsQuery) ([]PatternDTO, error) {
	limit := query.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	records, err := h.repo.TopPatterns(ctx, query.UserID, query.ScopeID, limit)
	if err != nil {
		return nil, err
	}

	result := make([]PatternDTO, len(records))
	for i, r := range records {
		result[i] = toPatternDTO(r)
	}
	return result, nil
}
