package server

import (
	"github.com/exeosec/riskd/internal/model"
)

// ScoreRequest is the ad-hoc scoring payload: the snapshot fields at the
// top level, plus an optional signals block. When signals are given the
// frequency lookups and the model are both skipped and the provided values
// are used as-is, so a historical decision can be replayed exactly.
type ScoreRequest struct {
	model.AlertSnapshot
	Signals *model.ScoreSignals `json:"signals,omitempty"`
}

// WebhookResponse is returned after an alert has been ingested. Score is
// null when scoring failed; the alert is kept and rescored later.
type WebhookResponse struct {
	Alert *model.Alert          `json:"alert"`
	Score *model.ScoreBreakdown `json:"score,omitempty"`
}

// StartRescoreJobRequest optionally caps how many unscored alerts the job
// picks up. Zero means the configured batch size.
type StartRescoreJobRequest struct {
	Limit int `json:"limit" example:"100"`
}

// CancelJobResponse reports the outcome of a job cancellation request.
type CancelJobResponse struct {
	Status string `json:"status" example:"canceling"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status         string `json:"status" example:"ok"`
	ScoringVersion string `json:"scoring_version" example:"v1.0.0"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
