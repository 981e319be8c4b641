package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
	"github.com/peksity/police-chief-bot-sub002/internal/patterns/application/commands"
	"github.com/peksity/police-chief-bot-sub002/internal/patterns/application/queries"
)

type patternRecordInput struct {
	UserID     string `json:"user_id" jsonschema:"required"`
	ScopeID    string `json:"scope_id" jsonschema:"required"`
	Engaged    *bool  `json:"engaged,omitempty"`
	Successful bool   `json:"successful,omitempty"`
	At         string `json:"at,omitempty"`
}

type patternUserInput struct {
	UserID  string `json:"user_id" jsonschema:"required"`
	ScopeID string `json:"scope_id" jsonschema:"required"`
	Limit   int    `json:"limit,omitempty"`
}

type patternNotifyInput struct {
	UserID  string `json:"user_id" jsonschema:"required"`
	ScopeID string `json:"scope_id" jsonschema:"required"`
	At      string `json:"at,omitempty"`
}

type patternScopeInput struct {
	ScopeID string `json:"scope_id" jsonschema:"required"`
	Limit   int    `json:"limit,omitempty"`
}

func registerPatternTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("pattern.record").
		Description("Record one observation of a member; engaged defaults to true").
		Handler(func(ctx context.Context, input patternRecordInput) (*commands.RecordEngagementResult, error) {
			return recordEngagement(ctx, app, input)
		})

	srv.Tool("pattern.top").
		Description("List a member's busiest hours of the week, best first").
		Handler(func(ctx context.Context, input patternUserInput) ([]queries.PatternDTO, error) {
			if app == nil || app.GetTopPatternsHandler == nil {
				return nil, errors.New("patterns are not configured")
			}
			return app.GetTopPatternsHandler.Handle(ctx, queries.GetTopPatternsQuery{
				UserID:  input.UserID,
				ScopeID: input.ScopeID,
				Limit:   input.Limit,
			})
		})

	srv.Tool("pattern.predict").
		Description("Predict the hour of the week a member is most likely to engage").
		Handler(func(ctx context.Context, input patternUserInput) (*queries.PredictionDTO, error) {
			if app == nil || app.PredictBestTimeHandler == nil {
				return nil, errors.New("patterns are not configured")
			}
			return app.PredictBestTimeHandler.Handle(ctx, queries.PredictBestTimeQuery{
				UserID:  input.UserID,
				ScopeID: input.ScopeID,
			})
		})

	srv.Tool("pattern.should_notify").
		Description("Decide whether to notify a member now, or at the given RFC 3339 time").
		Handler(func(ctx context.Context, input patternNotifyInput) (*queries.ShouldNotifyDTO, error) {
			return shouldNotify(ctx, app, input)
		})

	srv.Tool("pattern.peaks").
		Description("List the busiest hours of the week across a scope").
		Handler(func(ctx context.Context, input patternScopeInput) ([]queries.PeakTimeDTO, error) {
			if app == nil || app.GetScopePeakTimesHandler == nil {
				return nil, errors.New("patterns are not configured")
			}
			return app.GetScopePeakTimesHandler.Handle(ctx, queries.GetScopePeakTimesQuery{
				ScopeID: input.ScopeID,
				Limit:   input.Limit,
			})
		})

	return nil
}

func recordEngagement(ctx context.Context, app *cli.App, input patternRecordInput) (*commands.RecordEngagementResult, error) {
	if app == nil || app.RecordEngagementHandler == nil {
		return nil, errors.New("patterns are not configured")
	}
	at, err := parseTimestamp(input.At, app.Now())
	if err != nil {
		return nil, err
	}
	engaged := true
	if input.Engaged != nil {
		engaged = *input.Engaged
	}

	result, err := app.RecordEngagementHandler.Handle(ctx, commands.RecordEngagementCommand{
		UserID:        input.UserID,
		ScopeID:       input.ScopeID,
		OccurredAt:    at,
		IsEngagement:  engaged,
		WasSuccessful: input.Successful,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func shouldNotify(ctx context.Context, app *cli.App, input patternNotifyInput) (*queries.ShouldNotifyDTO, error) {
	if app == nil || app.ShouldNotifyHandler == nil {
		return nil, errors.New("patterns are not configured")
	}
	now, err := parseTimestamp(input.At, app.Now())
	if err != nil {
		return nil, err
	}
	return app.ShouldNotifyHandler.Handle(ctx, queries.ShouldNotifyQuery{
		UserID:  input.UserID,
		ScopeID: input.ScopeID,
		Now:     now,
	})
}
