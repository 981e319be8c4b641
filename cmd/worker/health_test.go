package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peksity/police-chief-bot-sub002/internal/app"
	planningQueries "github.com/peksity/police-chief-bot-sub002/internal/planning/application/queries"
	"github.com/peksity/police-chief-bot-sub002/pkg/config"
)

func newTestContainer(t *testing.T) *app.Container {
	t.Helper()
	cfg := &config.Config{
		AppEnv:                "test",
		DatabaseDriver:        "sqlite",
		SQLitePath:            filepath.Join(t.TempDir(), "worker.db"),
		Location:              time.UTC,
		SchedulerSlackMinutes: 10,
		PredictionCacheTTL:    time.Hour,
	}
	c, err := app.NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthMux_Healthz(t *testing.T) {
	mux := newHealthMux(newTestContainer(t))

	rec := get(t, mux, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["published"])
}

func TestHealthMux_Readyz(t *testing.T) {
	c := newTestContainer(t)
	mux := newHealthMux(c)

	rec := get(t, mux, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, c.DBConn.Close())
	rec = get(t, mux, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
}

func TestHealthMux_Metrics(t *testing.T) {
	c := newTestContainer(t)
	mux := newHealthMux(c)

	_, err := c.PlanSessionHandler.Handle(context.Background(), planningQueries.PlanSessionQuery{
		Catalog:       "gta",
		BudgetMinutes: 60,
	})
	require.NoError(t, err)

	rec := get(t, mux, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chief_")
}
