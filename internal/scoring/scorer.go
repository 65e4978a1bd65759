package scoring

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/exeosec/riskd/internal/interfaces"
	"github.com/exeosec/riskd/internal/model"
)

const methodology = "hybrid_weighted_v1"

// RiskScorer computes a deterministic, explainable 0-10 risk score for one
// alert snapshot. It is a pure component: no I/O, no shared mutable state,
// no wall-clock reads (temporal scoring uses the injected ScoreSignals.Now),
// so a single instance is safe for concurrent use from any number of
// goroutines.
//
// The scorer never fails. It sits in the synchronous creation path of every
// incoming alert, so any internal computation error is recovered into a
// degraded fallback breakdown (score 5.0, confidence 0.0, error attached)
// rather than propagated.
type RiskScorer struct {
	cfg    *Config
	logger interfaces.Logger
}

// NewRiskScorer constructs a scorer. It returns interfaces.Scorer so
// callers depend on the interfaces package contract.
func NewRiskScorer(cfg *Config, logger interfaces.Logger) (interfaces.Scorer, error) {
	if cfg == nil {
		return nil, errors.New("scoring: nil config")
	}
	if logger == nil {
		return nil, errors.New("scoring: nil logger")
	}
	l := logger.With(interfaces.Field{Key: "component", Value: "risk-scorer"})
	l.Info("risk scorer constructed", interfaces.Field{Key: "scoring_version", Value: cfg.ScoringVersion})
	return &RiskScorer{cfg: cfg, logger: l}, nil
}

// Version returns the scoring algorithm version embedded in results.
func (s *RiskScorer) Version() string {
	return s.cfg.ScoringVersion
}

// Score computes the breakdown for one alert. A zero sig.Now falls back to
// the alert's DetectedAt so the result stays fully determined by its inputs.
func (s *RiskScorer) Score(alert *model.AlertSnapshot, sig model.ScoreSignals) *model.ScoreBreakdown {
	if alert == nil {
		return s.fallback(errors.New("nil alert snapshot"), sig.Now)
	}
	now := sig.Now
	if now.IsZero() {
		now = alert.DetectedAt
	}
	sig.Now = now

	b, err := s.compute(alert, sig)
	if err != nil {
		s.logger.Error("risk computation failed, returning fallback score",
			interfaces.Field{Key: "error", Value: err.Error()},
			interfaces.Field{Key: "client_id", Value: alert.ClientID})
		return s.fallback(err, now)
	}
	return b
}

// compute runs the actual arithmetic. Panics (malformed input surfacing as
// a runtime error) are converted into the error return so Score can apply
// the always-answer contract.
func (s *RiskScorer) compute(alert *model.AlertSnapshot, sig model.ScoreSignals) (b *model.ScoreBreakdown, err error) {
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = fmt.Errorf("risk computation panicked: %v", r)
		}
	}()

	severity := severityComponent(alert)
	alertType := typeComponent(alert)
	network := networkComponent(alert)
	temporal := temporalComponent(alert, sig)
	tenant := tenantComponent(alert, sig)
	mlValue, mlFellBack := mlComponent(sig)

	components := []model.Component{
		{Name: "severity", Value: severity, Weight: weightSeverity, Description: descSeverity},
		{Name: "alert_type", Value: alertType, Weight: weightType, Description: descType},
		{Name: "network_context", Value: network, Weight: weightNetwork, Description: descNetwork},
		{Name: "temporal", Value: temporal, Weight: weightTemporal, Description: descTemporal},
		{Name: "tenant_context", Value: tenant, Weight: weightTenant, Description: descTenant},
		{Name: "ml_enhancement", Value: mlValue, Weight: weightML, Description: descML},
	}

	final := severity*weightSeverity +
		alertType*weightType +
		network*weightNetwork +
		temporal*weightTemporal +
		tenant*weightTenant +
		mlValue*weightML

	// Confidence variance uses the six core components only, before any
	// informational adjustment entries are appended.
	confidence := confidenceFor(components, mlFellBack)

	final, components = applyAdjustments(alert, final, components)
	final = clamp(final, 0.0, 10.0)

	return &model.ScoreBreakdown{
		FinalScore:      final,
		Components:      components,
		Confidence:      confidence,
		RiskLevel:       model.LevelForScore(final),
		Recommendations: recommendationsForLevel(final),
		Methodology:     methodology,
		Version:         s.cfg.ScoringVersion,
		CalculatedAt:    sig.Now,
	}, nil
}

// fallback is the degraded always-answer result: a neutral score the caller
// can store, with zero confidence and the error surfaced for operators.
func (s *RiskScorer) fallback(err error, now time.Time) *model.ScoreBreakdown {
	const fallbackScore = 5.0
	return &model.ScoreBreakdown{
		FinalScore: fallbackScore,
		Components: []model.Component{
			{Name: "error", Value: 0, Weight: 0, Description: err.Error()},
		},
		Confidence:      0.0,
		RiskLevel:       model.LevelForScore(fallbackScore),
		Recommendations: recommendationsForLevel(fallbackScore),
		Methodology:     "error_fallback",
		Version:         s.cfg.ScoringVersion,
		CalculatedAt:    now,
		Error:           err.Error(),
	}
}

// ─── Components ────────────────────────────────────────────────────────

// severityComponent: fixed base per severity level, compounded by keyword
// multipliers found in the description.
func severityComponent(alert *model.AlertSnapshot) float64 {
	base := severityWeights[model.NormalizeSeverity(string(alert.Severity))]

	desc := strings.ToLower(alert.Description)
	multiplier := 1.0
	for _, km := range descriptionKeywords {
		if strings.Contains(desc, km.keyword) {
			multiplier *= km.multiplier
		}
	}

	return clamp(base*multiplier, 0.0, 10.0)
}

// typeComponent: base multiplier per alert type, compounded by multipliers
// for tags in the threat vocabulary.
func typeComponent(alert *model.AlertSnapshot) float64 {
	base, ok := alertTypeMultipliers[strings.ToLower(alert.AlertType)]
	if !ok {
		base = 1.0
	}

	for _, tag := range alert.Tags {
		if m, ok := tagMultipliers[strings.ToLower(tag)]; ok {
			base *= m
		}
	}

	return clamp(base, 0.0, 10.0)
}

// networkComponent: 5.0 baseline plus fixed increments for IP reputation,
// port exposure, and protocol.
func networkComponent(alert *model.AlertSnapshot) float64 {
	score := 5.0

	if alert.SourceIP != "" && isExternalIP(alert.SourceIP) {
		score += 1.0
	}
	if isKnownMaliciousIP(alert.SourceIP) || isKnownMaliciousIP(alert.DestinationIP) {
		score += 2.0
	}
	if isCriticalAsset(alert.DestinationIP) {
		score += 1.5
	}

	for _, port := range []int{alert.SourcePort, alert.DestinationPort} {
		if port <= 0 {
			continue
		}
		if isSuspiciousPort(port) {
			score += 1.0
		}
		if isHighRiskPort(port) {
			score += 0.5
		}
	}

	switch strings.ToLower(alert.Protocol) {
	case "tcp", "udp":
		score += 0.2
	case "icmp":
		score += 0.5
	}

	return clamp(score, 0.0, 10.0)
}

// temporalComponent: 5.0 baseline adjusted by time of day, weekend, and
// same-source frequency. Both frequency thresholds stack when both hold.
func temporalComponent(alert *model.AlertSnapshot, sig model.ScoreSignals) float64 {
	score := 5.0

	hour := alert.DetectedAt.Hour()
	if hour >= 2 && hour < 6 {
		score += 1.0
	} else if hour >= 9 && hour < 17 {
		score -= 0.5
	}

	if wd := alert.DetectedAt.Weekday(); wd == time.Saturday || wd == time.Sunday {
		score += 0.5
	}

	if sig.RecentSameSourceCount > 5 {
		score += 1.0
	}
	if sig.RecentSameSourceCount > 10 {
		score += 2.0
	}

	return clamp(score, 0.0, 10.0)
}

// tenantComponent: 5.0 baseline adjusted by sector keywords in the tenant
// name and 30-day alert volume. Both volume thresholds stack when both hold.
func tenantComponent(alert *model.AlertSnapshot, sig model.ScoreSignals) float64 {
	score := 5.0

	name := strings.ToLower(alert.ClientName)
	if name != "" {
		if containsAny(name, criticalSectorKeywords) {
			score += 1.0
		} else if containsAny(name, importantSectorKeywords) {
			score += 0.5
		}
	}

	if sig.Tenant30dCount > 100 {
		score += 1.0
	}
	if sig.Tenant30dCount > 500 {
		score += 2.0
	}

	return clamp(score, 0.0, 10.0)
}

// mlComponent returns the external prediction when usable, else the neutral
// value. fellBack is true on the neutral path and costs confidence.
func mlComponent(sig model.ScoreSignals) (value float64, fellBack bool) {
	if sig.MLScore != nil && *sig.MLScore >= 0.0 && *sig.MLScore <= 10.0 {
		return *sig.MLScore, false
	}
	return neutralMLScore, true
}

// applyAdjustments applies the post-weighting additive factors: payload
// size and the anomaly/correlation/escalation tag families. Each tag
// triggers at most one family; qualifying tags accumulate.
func applyAdjustments(alert *model.AlertSnapshot, score float64, components []model.Component) (float64, []model.Component) {
	if alert.RawPayloadSize > 10000 {
		score += 0.5
		components = append(components, model.Component{
			Name: "large_payload", Value: 0.5, Weight: 0, Description: descPayload,
		})
	}

	for _, tag := range alert.Tags {
		lower := strings.ToLower(tag)
		switch {
		case strings.Contains(lower, "anomaly"):
			score += 0.3
		case strings.Contains(lower, "correlation"):
			score += 0.2
		case strings.Contains(lower, "escalation"):
			score += 0.4
		}
	}

	return score, components
}

// confidenceFor: 0.8 base, -0.2 when the ML component fell back to neutral,
// +0.1 when the six component values agree (population variance below 2.0).
func confidenceFor(components []model.Component, mlFellBack bool) float64 {
	confidence := 0.8

	if mlFellBack {
		confidence -= 0.2
	}

	values := make([]float64, len(components))
	for i, c := range components {
		values[i] = c.Value
	}
	if variance(values) < 2.0 {
		confidence += 0.1
	}

	return clamp(confidence, 0.0, 1.0)
}

// ─── helpers ───────────────────────────────────────────────────────────

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// variance is the population variance of vals; 0 for empty input.
func variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	sum := 0.0
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(vals))
}
