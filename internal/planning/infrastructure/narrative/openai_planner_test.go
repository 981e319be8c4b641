package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/peksity/police-chief-bot-sub002/internal/planning/application/services"
	planningDomain "github.com/peksity/police-chief-bot-sub002/internal/planning/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, status int, content string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testPlanner(t *testing.T, url string) *OpenAIPlanner {
	t.Helper()
	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = url + "/v1"
	cfg.RatePerSecond = 0
	cfg.Timeout = 2 * time.Second
	cfg.FailureThreshold = 2

	p, err := NewOpenAIPlanner(cfg, nil)
	require.NoError(t, err)
	return p
}

func testRequest(t *testing.T) services.AlternativeRequest {
	t.Helper()
	a, err := planningDomain.NewActivity(planningDomain.ActivityParams{
		Name: "Bank Job", DurationMinutes: 45, Reward: 1_400_000, Difficulty: planningDomain.DifficultyHard, PlayerRange: "2-4",
	})
	require.NoError(t, err)
	c, err := planningDomain.NewCatalog("heists", "", []planningDomain.CatalogEntry{{Key: "bank", Activity: a}})
	require.NoError(t, err)

	greedy := &planningDomain.Schedule{BudgetMinutes: 60}
	greedy.Add(planningDomain.NewScheduleEntry("bank", a))

	return services.AlternativeRequest{Catalog: c, BudgetMinutes: 60, Preferences: "solo", Greedy: greedy}
}

func TestOpenAIPlanner_Suggest(t *testing.T) {
	var hits int32
	srv := completionServer(t, http.StatusOK, "  1. Bank Job\nTotal: 1,400,000  ", &hits)
	p := testPlanner(t, srv.URL)

	text, err := p.Suggest(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.Equal(t, "1. Bank Job\nTotal: 1,400,000", text)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestOpenAIPlanner_Suggest_BlankCompletion(t *testing.T) {
	var hits int32
	srv := completionServer(t, http.StatusOK, "   ", &hits)
	p := testPlanner(t, srv.URL)

	_, err := p.Suggest(context.Background(), testRequest(t))
	assert.ErrorIs(t, err, services.ErrAlternativeUnavailable)
}

func TestOpenAIPlanner_Suggest_BreakerOpensAfterFailures(t *testing.T) {
	var hits int32
	srv := completionServer(t, http.StatusInternalServerError, "", &hits)
	p := testPlanner(t, srv.URL)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := p.Suggest(ctx, testRequest(t))
		assert.ErrorIs(t, err, services.ErrAlternativeUnavailable)
	}
	calls := atomic.LoadInt32(&hits)
	assert.GreaterOrEqual(t, calls, int32(2))

	_, err := p.Suggest(ctx, testRequest(t))
	assert.ErrorIs(t, err, services.ErrAlternativeUnavailable)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, calls, atomic.LoadInt32(&hits))
}

func TestOpenAIPlanner_Suggest_CancelledContext(t *testing.T) {
	var hits int32
	srv := completionServer(t, http.StatusOK, "plan", &hits)
	p := testPlanner(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Suggest(ctx, testRequest(t))
	assert.ErrorIs(t, err, services.ErrAlternativeUnavailable)
}

func TestNewOpenAIPlanner_RequiresKey(t *testing.T) {
	_, err := NewOpenAIPlanner(DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testRequest(t))

	assert.Contains(t, prompt, "Time budget: 60 minutes")
	assert.Contains(t, prompt, "Preferences: solo")
	assert.Contains(t, prompt, "- Bank Job: 45 min, reward 1400000, cooldown 0 min, hard, players 2-4")
	assert.Contains(t, prompt, "The rate-first plan is: Bank Job (45 min, reward 1400000)")
}
