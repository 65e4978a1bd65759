package scoring

import "github.com/exeosec/riskd/internal/model"

// Fixed lookup tables of the scoring algorithm. These are compiled-in
// constants owned by this package: tuning any of them is a scoring-version
// bump, never a runtime config change.

// Component weights; the six sum to 1.0.
const (
	weightSeverity = 0.30
	weightType     = 0.25
	weightNetwork  = 0.20
	weightTemporal = 0.15
	weightTenant   = 0.10
	weightML       = 0.10
)

// neutralMLScore is the ML component value when no usable prediction exists.
const neutralMLScore = 5.0

// severityWeights is the base severity table.
var severityWeights = map[model.Severity]float64{
	model.SeverityLow:      1.0,
	model.SeverityMedium:   3.0,
	model.SeverityHigh:     6.0,
	model.SeverityCritical: 10.0,
}

// keywordMultiplier adjusts the severity component when the keyword appears
// as a case-insensitive substring of the description. Multipliers compound.
type keywordMultiplier struct {
	keyword    string
	multiplier float64
}

// descriptionKeywords is applied in slice order so compounded float math is
// bit-stable across runs.
var descriptionKeywords = []keywordMultiplier{
	{"critical", 1.2},
	{"urgent", 1.15},
	{"immediate", 1.1},
	{"suspicious", 1.05},
	{"anomaly", 1.03},
	{"normal", 0.9},
	{"false positive", 0.3},
}

// alertTypeMultipliers maps alert categories to their base type risk,
// loosely following ATT&CK tactic ordering. Unknown types score 1.0.
var alertTypeMultipliers = map[string]float64{
	"malware":              1.5,
	"phishing":             1.3,
	"intrusion":            1.8,
	"ddos":                 1.2,
	"data_exfiltration":    2.0,
	"privilege_escalation": 1.7,
	"lateral_movement":     1.6,
	"persistence":          1.4,
	"command_control":      1.9,
	"exfiltration":         1.8,
	"impact":               1.5,
	"reconnaissance":       0.8,
	"resource_development": 0.9,
	"initial_access":       1.6,
	"execution":            1.3,
	"defense_evasion":      1.4,
	"credential_access":    1.7,
	"discovery":            1.1,
	"collection":           1.2,
	"unknown":              1.0,
}

// tagMultipliers compounds onto the type component for tags matching the
// threat-actor/technique vocabulary (exact match, case-insensitive).
// Applied in the alert's own tag order.
var tagMultipliers = map[string]float64{
	"apt":            1.5,
	"ransomware":     1.8,
	"zero_day":       1.6,
	"insider":        1.4,
	"nation_state":   1.7,
	"criminal":       1.3,
	"hacktivist":     1.1,
	"false_positive": 0.2,
}

// suspiciousPorts are services commonly probed or abused (telnet, SMB,
// RDP, exposed databases).
var suspiciousPorts = map[int]bool{
	23:   true,
	135:  true,
	139:  true,
	445:  true,
	1433: true,
	3389: true,
	5432: true,
	6379: true,
}

// highRiskPorts are remote-access and web-facing services that widen the
// attack surface without being outright suspicious.
var highRiskPorts = map[int]bool{
	22:   true,
	23:   true,
	80:   true,
	443:  true,
	3389: true,
	5900: true,
	8080: true,
}

// knownMaliciousIPs is the built-in seed list; real deployments extend it
// through threat-intel feeds upstream of the scorer.
var knownMaliciousIPs = map[string]bool{
	"1.1.1.1": true,
	"8.8.8.8": true,
}

// criticalAssetIPs is the built-in seed list of protected destinations.
var criticalAssetIPs = map[string]bool{
	"192.168.1.1":  true,
	"192.168.1.10": true,
}

// Tenant sector keywords. A name matching the critical list takes
// precedence over the important list.
var (
	criticalSectorKeywords  = []string{"bank", "financial", "health", "government"}
	importantSectorKeywords = []string{"retail", "ecommerce", "media"}
)

// Component descriptions, keyed by component name.
const (
	descSeverity = "Base severity from the fixed severity table"
	descType     = "ATT&CK-style alert type and threat-actor tag risk"
	descNetwork  = "Network context and IP reputation"
	descTemporal = "Time-based risk factors"
	descTenant   = "Tenant-specific business impact"
	descML       = "ML model prediction enhancement"
	descPayload  = "Large data payload detected"
)

// recommendationsForLevel returns the fixed action list for a score's
// risk-level bucket. No randomness, no per-alert content.
func recommendationsForLevel(score float64) []string {
	switch {
	case score >= 8.0:
		return []string{
			"IMMEDIATE investigation required",
			"Consider incident escalation",
			"Implement emergency containment measures",
		}
	case score >= 6.0:
		return []string{
			"Priority investigation within 4 hours",
			"Review and update security controls",
			"Monitor for related activities",
		}
	case score >= 4.0:
		return []string{
			"Investigate within 24 hours",
			"Review security policies",
			"Consider additional monitoring",
		}
	default:
		return []string{
			"Routine investigation",
			"Monitor for patterns",
			"Update threat intelligence",
		}
	}
}
