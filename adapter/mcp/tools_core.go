package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
)

type healthOutput struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Catalogs int    `json:"catalogs"`
}

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("cli.health").
		Description("Report server version and how many catalogs are loaded").
		Handler(func(ctx context.Context, input struct{}) (healthOutput, error) {
			return health(ctx, app)
		})

	return nil
}

func health(ctx context.Context, app *cli.App) (healthOutput, error) {
	if app == nil {
		return healthOutput{}, errors.New("app not initialized")
	}
	out := healthOutput{Status: "ok", Version: cli.Version}
	if app.ListCatalogsHandler == nil {
		out.Status = "degraded"
		return out, nil
	}
	catalogs, err := listCatalogs(ctx, app, catalogListInput{})
	if err != nil {
		return healthOutput{}, err
	}
	out.Catalogs = len(catalogs)
	return out, nil
}
