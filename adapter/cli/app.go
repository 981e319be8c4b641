package cli

import (
	"time"

	patternCommands "github.com/peksity/police-chief-bot-sub002/internal/patterns/application/commands"
	patternQueries "github.com/peksity/police-chief-bot-sub002/internal/patterns/application/queries"
	planningQueries "github.com/peksity/police-chief-bot-sub002/internal/planning/application/queries"
)

// App holds the CLI application dependencies.
type App struct {
	// Planning Query Handlers
	PlanSessionHandler  *planningQueries.PlanSessionHandler
	ListCatalogsHandler *planningQueries.ListCatalogsHandler

	// Pattern Command Handlers
	RecordEngagementHandler *patternCommands.RecordEngagementHandler

	// Pattern Query Handlers
	GetTopPatternsHandler    *patternQueries.GetTopPatternsHandler
	GetScopePeakTimesHandler *patternQueries.GetScopePeakTimesHandler
	PredictBestTimeHandler   *patternQueries.PredictBestTimeHandler
	ShouldNotifyHandler      *patternQueries.ShouldNotifyHandler

	// DefaultCatalog is used when --catalog is not given.
	DefaultCatalog string

	// Location is the reference zone for printed buckets.
	Location *time.Location

	clock func() time.Time
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	planSessionHandler *planningQueries.PlanSessionHandler,
	listCatalogsHandler *planningQueries.ListCatalogsHandler,
	recordEngagementHandler *patternCommands.RecordEngagementHandler,
	getTopPatternsHandler *patternQueries.GetTopPatternsHandler,
	getScopePeakTimesHandler *patternQueries.GetScopePeakTimesHandler,
	predictBestTimeHandler *patternQueries.PredictBestTimeHandler,
	shouldNotifyHandler *patternQueries.ShouldNotifyHandler,
) *App {
	return &App{
		PlanSessionHandler:       planSessionHandler,
		ListCatalogsHandler:      listCatalogsHandler,
		RecordEngagementHandler:  recordEngagementHandler,
		GetTopPatternsHandler:    getTopPatternsHandler,
		GetScopePeakTimesHandler: getScopePeakTimesHandler,
		PredictBestTimeHandler:   predictBestTimeHandler,
		ShouldNotifyHandler:      shouldNotifyHandler,
		DefaultCatalog:           "gta",
		Location:                 time.UTC,
		clock:                    time.Now,
	}
}

// SetClock replaces the clock used for "now".
func (a *App) SetClock(clock func() time.Time) {
	a.clock = clock
}

// Now returns the current time from the app clock.
func (a *App) Now() time.Time {
	if a.clock == nil {
		return time.Now()
	}
	return a.clock()
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
