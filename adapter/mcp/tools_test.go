package mcp

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
	internalApp "github.com/peksity/police-chief-bot-sub002/internal/app"
	"github.com/peksity/police-chief-bot-sub002/pkg/config"
)

// Friday 21:30 UTC.
var fridayEvening = time.Date(2026, time.October, 16, 21, 30, 0, 0, time.UTC)

func setupTestApp(t *testing.T) *cli.App {
	t.Helper()

	cfg := &config.Config{
		AppEnv:                    "test",
		LocalMode:                 true,
		DatabaseDriver:            "sqlite",
		SQLitePath:                filepath.Join(t.TempDir(), "test.db"),
		Location:                  time.UTC,
		SchedulerSlackMinutes:     10,
		NotifyConfidenceThreshold: 50,
		PredictionCacheTTL:        time.Hour,
	}
	container, err := internalApp.NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(container.Close)

	app := cli.NewApp(
		container.PlanSessionHandler,
		container.ListCatalogsHandler,
		container.RecordEngagementHandler,
		container.GetTopPatternsHandler,
		container.GetScopePeakTimesHandler,
		container.PredictBestTimeHandler,
		container.ShouldNotifyHandler,
	)
	app.SetClock(func() time.Time { return fridayEvening })
	return app
}

func TestRegisterCLITools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	app := &cli.App{}
	require.NoError(t, RegisterCLITools(srv, ToolDependencies{App: app}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := map[any]bool{}
	for _, tool := range tools {
		names[tool["name"]] = true
	}
	for _, want := range []string{
		"cli.health",
		"session.plan",
		"catalog.list",
		"pattern.record",
		"pattern.top",
		"pattern.predict",
		"pattern.should_notify",
		"pattern.peaks",
	} {
		assert.True(t, names[want], "%s should be registered", want)
	}
}

func TestRegisterCLITools_RequiresApp(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
	assert.Error(t, RegisterCLITools(srv, ToolDependencies{}))
	assert.Error(t, RegisterCLITools(nil, ToolDependencies{App: &cli.App{}}))
}

func TestPlanSession(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	plan, err := planSession(ctx, app, sessionPlanInput{BudgetMinutes: 60})
	require.NoError(t, err)
	assert.Equal(t, "gta", plan.Catalog)
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, "cayo", plan.Entries[0].Key)

	_, err = planSession(ctx, app, sessionPlanInput{BudgetMinutes: 0})
	assert.Error(t, err)

	_, err = planSession(ctx, &cli.App{}, sessionPlanInput{BudgetMinutes: 60})
	assert.Error(t, err)
}

func TestListCatalogs(t *testing.T) {
	app := setupTestApp(t)

	catalogs, err := listCatalogs(context.Background(), app, catalogListInput{Name: "rdo"})
	require.NoError(t, err)
	require.Len(t, catalogs, 1)
	assert.Equal(t, "rdo", catalogs[0].Name)
}

func TestRecordThenShouldNotify(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	result, err := recordEngagement(ctx, app, patternRecordInput{UserID: "u1", ScopeID: "g1"})
	require.NoError(t, err)
	assert.Equal(t, int(time.Friday), result.DayOfWeek)
	assert.Equal(t, 21, result.HourOfDay)

	decision, err := shouldNotify(ctx, app, patternNotifyInput{UserID: "u1", ScopeID: "g1"})
	require.NoError(t, err)
	assert.True(t, decision.Notify)
	assert.Equal(t, 100, decision.Prediction.ConfidencePercent)

	decision, err = shouldNotify(ctx, app, patternNotifyInput{UserID: "u1", ScopeID: "g1", At: "2026-10-17T21:30:00Z"})
	require.NoError(t, err)
	assert.False(t, decision.Notify)

	_, err = shouldNotify(ctx, app, patternNotifyInput{UserID: "u1", ScopeID: "g1", At: "tomorrow"})
	assert.Error(t, err)
}

func TestRecordEngagement_EngagedDefaultsToTrue(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	engaged := false
	_, err := recordEngagement(ctx, app, patternRecordInput{UserID: "u1", ScopeID: "g1", Engaged: &engaged})
	require.NoError(t, err)
	_, err = recordEngagement(ctx, app, patternRecordInput{UserID: "u1", ScopeID: "g1"})
	require.NoError(t, err)

	decision, err := shouldNotify(ctx, app, patternNotifyInput{UserID: "u1", ScopeID: "g1"})
	require.NoError(t, err)
	assert.Equal(t, 50, decision.Prediction.ConfidencePercent)
	assert.True(t, decision.Notify)
}

func TestHealth(t *testing.T) {
	out, err := health(context.Background(), setupTestApp(t))
	require.NoError(t, err)
	assert.Equal(t, healthOutput{Status: "ok", Version: cli.Version, Catalogs: 2}, out)

	out, err = health(context.Background(), &cli.App{})
	require.NoError(t, err)
	assert.Equal(t, "degraded", out.Status)

	_, err = health(context.Background(), nil)
	assert.Error(t, err)
}
