package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
	"github.com/peksity/police-chief-bot-sub002/internal/planning/application/queries"
)

type sessionPlanInput struct {
	BudgetMinutes   int    `json:"budget_minutes" jsonschema:"required"`
	Catalog         string `json:"catalog,omitempty"`
	WithAlternative bool   `json:"with_alternative,omitempty"`
	Preferences     string `json:"preferences,omitempty"`
}

type catalogListInput struct {
	Name string `json:"name,omitempty"`
}

func registerPlanTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("session.plan").
		Description("Plan a session of activities that fits a time budget in minutes").
		Handler(func(ctx context.Context, input sessionPlanInput) (*queries.PlanDTO, error) {
			return planSession(ctx, app, input)
		})

	srv.Tool("catalog.list").
		Description("List activity catalogs, or one catalog by name").
		Handler(func(ctx context.Context, input catalogListInput) ([]queries.CatalogDTO, error) {
			return listCatalogs(ctx, app, input)
		})

	return nil
}

func planSession(ctx context.Context, app *cli.App, input sessionPlanInput) (*queries.PlanDTO, error) {
	if app == nil || app.PlanSessionHandler == nil {
		return nil, errors.New("session planning is not configured")
	}
	if input.BudgetMinutes <= 0 {
		return nil, errors.New("budget_minutes must be positive")
	}
	catalog := input.Catalog
	if catalog == "" {
		catalog = app.DefaultCatalog
	}
	return app.PlanSessionHandler.Handle(ctx, queries.PlanSessionQuery{
		Catalog:         catalog,
		BudgetMinutes:   input.BudgetMinutes,
		WithAlternative: input.WithAlternative,
		Preferences:     input.Preferences,
	})
}

func listCatalogs(ctx context.Context, app *cli.App, input catalogListInput) ([]queries.CatalogDTO, error) {
	if app == nil || app.ListCatalogsHandler == nil {
		return nil, errors.New("catalog listing is not configured")
	}
	return app.ListCatalogsHandler.Handle(ctx, queries.ListCatalogsQuery{Name: input.Name})
}
