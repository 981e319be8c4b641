package queries

import (
	"context"
	"time"

	"github.com/peksity/police-chief-bot-sub002/internal/patterns/application/services"
)

// PredictBestTimeQuery contains the parameters for predicting a user's best time.
type PredictBestTimeQuery struct {
	UserID  string
	ScopeID string
}

// PredictBestTimeHandler handles the PredictBestTimeQuery.
type PredictBestTimeHandler struct {
	predictor *services.TemporalPredictor
}

// NewPredictBestTimeHandler creates a new PredictBestTimeHandler.
func NewPredictBestTimeHandler(predictor *services.TemporalPredictor) *PredictBestTimeHandler {
	return &PredictBestTimeHandler{predictor: predictor}
}

// Handle executes the PredictBestTimeQuery. Missing data is reported as
// Learning, not as an error.
func (h *PredictBestTimeHandler) Handle(ctx context.Context, query PredictBestTimeQuery) (*PredictionDTO, error) {
	prediction, err := h.predictor.PredictBestTime(ctx, query.UserID, query.ScopeID)
	if err != nil {
		return nil, err
	}
	return toPredictionDTO(query.UserID, query.ScopeID, prediction), nil
}

// ShouldNotifyQuery asks whether a user should be notified at Now.
type ShouldNotifyQuery struct {
	UserID  string
	ScopeID string
	Now     time.Time
}

// ShouldNotifyDTO is the decision and the prediction behind it.
type ShouldNotifyDTO struct {
	Notify     bool           `json:"notify"`
	NowDay     string         `json:"now_day"`
	NowHour    int            `json:"now_hour"`
	Threshold  int            `json:"threshold"`
	Prediction *PredictionDTO `json:"prediction"`
}

// ShouldNotifyHandler handles the ShouldNotifyQuery.
type ShouldNotifyHandler struct {
	predictor *services.TemporalPredictor
}

// NewShouldNotifyHandler creates a new ShouldNotifyHandler.
func NewShouldNotifyHandler(predictor *services.TemporalPredictor) *ShouldNotifyHandler {
	return &ShouldNotifyHandler{predictor: predictor}
}

// Handle executes the ShouldNotifyQuery.
func (h *ShouldNotifyHandler) Handle(ctx context.Context, query ShouldNotifyQuery) (*ShouldNotifyDTO, error) {
	decision, err := h.predictor.Evaluate(ctx, query.UserID, query.ScopeID, query.Now)
	if err != nil {
		return nil, err
	}
	return &ShouldNotifyDTO{
		Notify:     decision.Notify,
		NowDay:     decision.Now.Day.String(),
		NowHour:    decision.Now.Hour,
		Threshold:  h.predictor.Config().ConfidenceThreshold,
		Prediction: toPredictionDTO(query.UserID, query.ScopeID, decision.Prediction),
	}, nil
}
