package queries

import (
	"context"

	planningDomain "github.com/peksity/police-chief-bot-sub002/internal/planning/domain"
)

// ActivityDTO is a data transfer object for catalog activities.
type ActivityDTO struct {
	Key             string  `json:"key"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Reward          int64   `json:"reward"`
	RewardPerHour   float64 `json:"reward_per_hour"`
	CooldownMinutes int     `json:"cooldown_minutes"`
	Difficulty      string  `json:"difficulty"`
	PlayerRange     string  `json:"player_range,omitempty"`
}

// CatalogDTO is a data transfer object for catalogs.
type CatalogDTO struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Activities  []ActivityDTO `json:"activities"`
}

// ListCatalogsQuery optionally restricts the listing to one catalog.
type ListCatalogsQuery struct {
	Name string
}

// ListCatalogsHandler handles the ListCatalogsQuery.
type ListCatalogsHandler struct {
	catalogs *planningDomain.CatalogSet
}

// NewListCatalogsHandler creates a new ListCatalogsHandler.
func NewListCatalogsHandler(catalogs *planningDomain.CatalogSet) *ListCatalogsHandler {
	return &ListCatalogsHandler{catalogs: catalogs}
}

// Handle executes the ListCatalogsQuery. Catalogs are returned sorted by name.
func (h *ListCatalogsHandler) Handle(ctx context.Context, query ListCatalogsQuery) ([]CatalogDTO, error) {
	if query.Name != "" {
		c, err := h.catalogs.Get(query.Name)
		if err != nil {
			return nil, err
		}
		return []CatalogDTO{toCatalogDTO(c)}, nil
	}

	names := h.catalogs.Names()
	result := make([]CatalogDTO, 0, len(names))
	for _, name := range names {
		c, err := h.catalogs.Get(name)
		if err != nil {
			return nil, err
		}
		result = append(result, toCatalogDTO(c))
	}
	return result, nil
}

func toCatalogDTO(c *planningDomain.Catalog) CatalogDTO {
	entries := c.Entries()
	activities := make([]ActivityDTO, len(entries))
	for i, e := range entries {
		a := e.Activity
		activities[i] = ActivityDTO{
			Key:             e.Key,
			Name:            a.Name(),
			DurationMinutes: a.DurationMinutes(),
			Reward:          a.Reward(),
			RewardPerHour:   a.RewardRate(),
			CooldownMinutes: a.CooldownMinutes(),
			Difficulty:      string(a.Difficulty()),
			PlayerRange:     a.PlayerRange(),
		}
	}
	return CatalogDTO{
		Name:        c.Name(),
		Description: c.Description(),
		Activities:  activities,
	}
}
