package model

import "time"

// RiskLevel is the coarse bucket derived from the final score.
type RiskLevel string

const (
	RiskMinimal  RiskLevel = "MINIMAL"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// ScoreSignals carries the externally-supplied read-only inputs to one
// scoring call. The scorer owns none of these: frequency counts come from
// the caller's query layer, the ML score from an external model, and Now is
// injected so the scorer never reads the wall clock (keeps it deterministic
// and trivially testable).
type ScoreSignals struct {
	// RecentSameSourceCount is the number of alerts from the same source IP
	// for the same tenant within the trailing 24 hours.
	RecentSameSourceCount int `json:"recent_same_source_count"`

	// Tenant30dCount is the number of alerts for the tenant within the
	// trailing 30 days.
	Tenant30dCount int `json:"tenant_30d_count"`

	// MLScore is the optional external model prediction in [0,10].
	// nil or out-of-range means "no usable prediction": the ML component
	// falls back to its neutral value and confidence is reduced.
	MLScore *float64 `json:"ml_score,omitempty"`

	// Now is the reference time for temporal scoring. Callers must set it;
	// a zero Now is replaced by the alert's DetectedAt.
	Now time.Time `json:"now,omitempty"`
}

// Component is one weighted sub-score of the final risk score.
// Value is always clamped to [0,10] before weighting.
type Component struct {
	// Name identifies the component ("severity", "network_context", ...).
	Name string `json:"name"`

	// Value is the component's raw 0-10 value before weighting.
	Value float64 `json:"value"`

	// Weight is the component's share of the final score. The six core
	// components' weights sum to 1.0; informational entries appended after
	// them carry weight 0.
	Weight float64 `json:"weight"`

	// Description is a short human-readable explanation of the component.
	Description string `json:"description"`
}

// ScoreBreakdown is the canonical scorer output for a single alert.
// It is created fresh per call and never mutated after construction.
type ScoreBreakdown struct {
	// FinalScore is the weighted, adjusted score clamped to [0,10].
	FinalScore float64 `json:"final_score"`

	// Components holds the contributing sub-scores in a fixed order:
	// severity, alert_type, network_context, temporal, tenant_context,
	// ml_enhancement, then any informational adjustment entries.
	Components []Component `json:"components"`

	// Confidence is the scorer's trust in its own output, in [0,1].
	// It is not validated against ground truth.
	Confidence float64 `json:"confidence"`

	// RiskLevel is derived from FinalScore (>=8 CRITICAL, >=6 HIGH,
	// >=4 MEDIUM, >=2 LOW, else MINIMAL).
	RiskLevel RiskLevel `json:"risk_level"`

	// Recommendations is the fixed action list for the risk-level bucket.
	Recommendations []string `json:"recommendations"`

	// Methodology identifies the scoring approach; Version the algorithm
	// revision (changing any lookup table is a version bump, not config).
	Methodology string `json:"methodology"`
	Version     string `json:"version"`

	// CalculatedAt is the injected "now" of the scoring call.
	CalculatedAt time.Time `json:"calculated_at"`

	// Error carries the recovered computation error on the fallback path.
	// Empty on every normal result; operators use it to tell "genuinely
	// low risk" apart from "scorer degraded".
	Error string `json:"error,omitempty"`
}

// LevelForScore maps a final score to its risk-level bucket. Boundaries are
// exact: 8.0 is CRITICAL, 7.999 is HIGH.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= 8.0:
		return RiskCritical
	case score >= 6.0:
		return RiskHigh
	case score >= 4.0:
		return RiskMedium
	case score >= 2.0:
		return RiskLow
	default:
		return RiskMinimal
	}
}
