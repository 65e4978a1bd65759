package app

import (
	"time"

	"github.com/exeosec/riskd/internal/ml"
	"github.com/exeosec/riskd/internal/scoring"
)

// Config contains the runtime configuration for the scoring pipeline.
type Config struct {
	// DatabasePath is the SQLite database file. ":memory:" is accepted for
	// ephemeral runs.
	DatabasePath string

	// LogLevel is the minimum level for the deployment logger.
	LogLevel string

	// Scoring Configuration
	ScoringCfg *scoring.Config

	// ML model configuration. When MLEnabled is false the pipeline runs
	// with the model declined on every alert.
	MLEnabled bool
	MLCfg     ml.ONNXConfig

	// MLTimeout bounds one model prediction; on expiry the scorer proceeds
	// without an ML score.
	MLTimeout time.Duration

	// SameSourceWindow is the lookback for the same-source frequency count,
	// anchored at the alert's detection time.
	SameSourceWindow time.Duration

	// TenantWindow is the lookback for the tenant volume count, anchored
	// at the time of scoring.
	TenantWindow time.Duration

	// RescoreBatchSize caps how many unscored alerts one rescore job picks up.
	RescoreBatchSize int
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:     "riskd.db",
		LogLevel:         "info",
		ScoringCfg:       scoring.DefaultConfig(),
		MLEnabled:        false,
		MLTimeout:        2 * time.Second,
		SameSourceWindow: 24 * time.Hour,
		TenantWindow:     30 * 24 * time.Hour,
		RescoreBatchSize: 500,
	}
}
