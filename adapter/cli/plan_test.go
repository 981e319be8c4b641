package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalApp "github.com/peksity/police-chief-bot-sub002/internal/app"
	planningQueries "github.com/peksity/police-chief-bot-sub002/internal/planning/application/queries"
	"github.com/peksity/police-chief-bot-sub002/pkg/config"
)

func setupLocalModeTestApp(t *testing.T) *App {
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
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	container, err := internalApp.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	a := NewApp(
		container.PlanSessionHandler,
		container.ListCatalogsHandler,
		container.RecordEngagementHandler,
		container.GetTopPatternsHandler,
		container.GetScopePeakTimesHandler,
		container.PredictBestTimeHandler,
		container.ShouldNotifyHandler,
	)
	SetApp(a)
	t.Cleanup(func() { SetApp(nil) })
	return a
}

func runPlan(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	planCmd.SetOut(&out)
	planCmd.SetContext(context.Background())
	require.NoError(t, planCmd.RunE(planCmd, args))
	return out.String()
}

func resetPlanFlags() {
	planCatalog = ""
	planAlternative = false
	planPreferences = ""
	SetJSONOutput(false)
}

func TestPlanCmd_PrintsPlan(t *testing.T) {
	setupLocalModeTestApp(t)
	resetPlanFlags()

	out := runPlan(t, "60")
	assert.Contains(t, out, "SESSION PLAN: gta, 60 min")
	assert.Contains(t, out, "Cayo Perico Heist")
	assert.Contains(t, out, "2,500,000")
}

func TestPlanCmd_JSON(t *testing.T) {
	setupLocalModeTestApp(t)
	resetPlanFlags()
	SetJSONOutput(true)
	defer SetJSONOutput(false)

	var plan planningQueries.PlanDTO
	require.NoError(t, json.Unmarshal([]byte(runPlan(t, "60")), &plan))
	assert.Equal(t, "gta", plan.Catalog)
	assert.Equal(t, 60, plan.BudgetMinutes)
	assert.LessOrEqual(t, plan.TotalTimeMinutes, 60)
	assert.False(t, plan.AlternativeRequested)
}

func TestPlanCmd_AlternativeWithoutPlanner(t *testing.T) {
	setupLocalModeTestApp(t)
	resetPlanFlags()
	planAlternative = true
	defer resetPlanFlags()

	out := runPlan(t, "30")
	assert.Contains(t, out, "No alternative available right now.")
}

func TestPlanCmd_NothingFits(t *testing.T) {
	setupLocalModeTestApp(t)
	resetPlanFlags()

	out := runPlan(t, "1")
	assert.Contains(t, out, "Nothing fits in 1 minutes.")
}

func TestPlanCmd_Errors(t *testing.T) {
	setupLocalModeTestApp(t)
	resetPlanFlags()
	planCmd.SetContext(context.Background())

	assert.Error(t, planCmd.RunE(planCmd, []string{"soon"}))
	assert.Error(t, planCmd.RunE(planCmd, []string{"0"}))

	planCatalog = "missing"
	defer resetPlanFlags()
	assert.Error(t, planCmd.RunE(planCmd, []string{"60"}))
}

func TestPlanCmd_NotConfigured(t *testing.T) {
	SetApp(nil)
	err := planCmd.RunE(planCmd, []string{"60"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFormatReward(t *testing.T) {
	assert.Equal(t, "0", FormatReward(0))
	assert.Equal(t, "999", FormatReward(999))
	assert.Equal(t, "1,000", FormatReward(1000))
	assert.Equal(t, "2,500,000", FormatReward(2500000))
	assert.Equal(t, "-85,000", FormatReward(-85000))
}
