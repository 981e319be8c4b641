// Package narrative asks an OpenAI-compatible chat completion endpoint for a
// free-form session plan.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/peksity/police-chief-bot-sub002/internal/planning/application/services"
	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Config configures the OpenAI planner.
type Config struct {
	APIKey           string
	BaseURL          string
	Model            string
	Timeout          time.Duration
	RatePerSecond    float64 // <= 0 disables throttling
	Temperature      float32
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultConfig returns defaults for everything but the API key.
func DefaultConfig() Config {
	return Config{
		Model:            openai.GPT4oMini,
		Timeout:          20 * time.Second,
		RatePerSecond:    1,
		Temperature:      0.7,
		FailureThreshold: 3,
		OpenTimeout:      time.Minute,
	}
}

// OpenAIPlanner implements services.AlternativePlanner.
type OpenAIPlanner struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	temperature float32
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[string]
	logger      *slog.Logger
}

// NewOpenAIPlanner creates a planner. The API key is required.
func NewOpenAIPlanner(cfg Config, logger *slog.Logger) (*OpenAIPlanner, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("narrative: api key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	p := &OpenAIPlanner{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger,
	}

	threshold := cfg.FailureThreshold
	p.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "narrative",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return p, nil
}

// Suggest returns a free-form plan. Every failure wraps
// services.ErrAlternativeUnavailable.
func (p *OpenAIPlanner) Suggest(ctx context.Context, req services.AlternativeRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limited: %v", services.ErrAlternativeUnavailable, err)
	}

	text, err := p.breaker.Execute(func() (string, error) {
		return p.complete(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: circuit open", services.ErrAlternativeUnavailable)
		}
		return "", fmt.Errorf("%w: %v", services.ErrAlternativeUnavailable, err)
	}
	return text, nil
}

func (p *OpenAIPlanner) complete(ctx context.Context, req services.AlternativeRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("blank completion")
	}
	return text, nil
}
