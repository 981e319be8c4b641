package mcp

import (
	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
	"github.com/peksity/police-chief-bot-sub002/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container) *cli.App {
	cliApp := cli.NewApp(
		container.PlanSessionHandler,
		container.ListCatalogsHandler,
		container.RecordEngagementHandler,
		container.GetTopPatternsHandler,
		container.GetScopePeakTimesHandler,
		container.PredictBestTimeHandler,
		container.ShouldNotifyHandler,
	)

	if container.Config != nil && container.Config.Location != nil {
		cliApp.Location = container.Config.Location
	}

	return cliApp
}
