// Package ml holds the optional external risk-prediction model behind the
// interfaces.Model contract. The scorer itself never depends on this
// package; the pipeline computes a prediction here and passes it in as a
// plain ScoreSignals value.
package ml

import (
	"time"

	"github.com/exeosec/riskd/internal/model"
)

// FeatureCount is the width of the model input vector.
const FeatureCount = 11

// severityOrdinals maps severity to its ordinal model feature.
var severityOrdinals = map[model.Severity]float64{
	model.SeverityLow:      1,
	model.SeverityMedium:   2,
	model.SeverityHigh:     3,
	model.SeverityCritical: 4,
}

// alertTypeIndex assigns each known alert type a stable positive index.
// Unknown types encode as 0. The list is fixed: reordering it is a model
// retrain, the same way the scoring tables are a scoring-version bump.
var alertTypeIndex = map[string]float64{
	"collection":           1,
	"command_control":      2,
	"credential_access":    3,
	"data_exfiltration":    4,
	"ddos":                 5,
	"defense_evasion":      6,
	"discovery":            7,
	"execution":            8,
	"exfiltration":         9,
	"impact":               10,
	"initial_access":       11,
	"intrusion":            12,
	"lateral_movement":     13,
	"malware":              14,
	"persistence":          15,
	"phishing":             16,
	"privilege_escalation": 17,
	"reconnaissance":       18,
	"resource_development": 19,
	"unknown":              20,
}

// Features builds the model input vector for one alert snapshot.
// tenantFrequency is the tenant's trailing-30-day alert count and now the
// caller-injected reference time (never read from the wall clock here).
func Features(a *model.AlertSnapshot, tenantFrequency int, now time.Time) []float64 {
	boolFeature := func(b bool) float64 {
		if b {
			return 1
		}
		return 0
	}

	hoursSinceDetection := 0.0
	if !a.DetectedAt.IsZero() && now.After(a.DetectedAt) {
		hoursSinceDetection = now.Sub(a.DetectedAt).Hours()
	}

	return []float64{
		severityOrdinals[model.NormalizeSeverity(string(a.Severity))],
		alertTypeIndex[a.AlertType],
		float64(a.SourcePort),
		float64(a.DestinationPort),
		boolFeature(a.SourceIP != ""),
		boolFeature(a.DestinationIP != ""),
		float64(len(a.Description)),
		float64(len(a.Tags)),
		float64(a.RawPayloadSize),
		hoursSinceDetection,
		float64(tenantFrequency),
	}
}
