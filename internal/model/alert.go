package model

import (
	"strings"
	"time"
)

// Severity is the four-level alert severity scale shared by every component.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// NormalizeSeverity lowercases s and maps anything outside the four defined
// levels (including the empty string) to medium. Scoring and persistence
// both rely on this so an unknown vendor value never leaks through.
func NormalizeSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow
	case SeverityMedium:
		return SeverityMedium
	case SeverityHigh:
		return SeverityHigh
	case SeverityCritical:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}

// AlertSnapshot is the immutable view of an alert handed to the scorer.
// It is created fresh per scoring call and never mutated afterwards.
// Network fields are optional: empty strings / zero ports mean "absent".
type AlertSnapshot struct {
	// Severity must be one of the four defined levels; use
	// NormalizeSeverity when building a snapshot from external data.
	Severity Severity `json:"severity"`

	// AlertType is a free-form category string ("malware", "phishing", ...).
	AlertType string `json:"alert_type"`

	// Tags is the alert's tag set. Order is preserved as received; the
	// scorer applies tag multipliers in this order.
	Tags []string `json:"tags,omitempty"`

	SourceIP        string `json:"source_ip,omitempty"`
	DestinationIP   string `json:"destination_ip,omitempty"`
	SourcePort      int    `json:"source_port,omitempty"`
	DestinationPort int    `json:"destination_port,omitempty"`
	Protocol        string `json:"protocol,omitempty"`

	Description string `json:"description"`

	// RawPayloadSize is the byte length of whatever raw data arrived with
	// the alert. Only the size feeds the score, never the content.
	RawPayloadSize int `json:"raw_payload_size"`

	DetectedAt time.Time `json:"detected_at"`

	// ClientID is the opaque tenant identifier used to look up frequency
	// counts; ClientName is the tenant's display name, used only by the
	// sector heuristics of the tenant-context component.
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name,omitempty"`
}

// Alert is the persisted alert record: the snapshot fields plus identity,
// provenance, and the attached score summary.
type Alert struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name,omitempty"`

	// ExternalID is the id the alert carried in the source system, if any.
	ExternalID string `json:"external_id,omitempty"`

	Title       string   `json:"title,omitempty"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	AlertType   string   `json:"alert_type"`
	Tags        []string `json:"tags,omitempty"`

	SourceIP        string `json:"source_ip,omitempty"`
	DestinationIP   string `json:"destination_ip,omitempty"`
	SourcePort      int    `json:"source_port,omitempty"`
	DestinationPort int    `json:"destination_port,omitempty"`
	Protocol        string `json:"protocol,omitempty"`

	// SourceSystem names the integration or device that produced the alert.
	SourceSystem string `json:"source_system,omitempty"`

	// RawPayload is the original payload as received (JSON-encoded);
	// RawPayloadSize is its byte length.
	RawPayload     string `json:"raw_payload,omitempty"`
	RawPayloadSize int    `json:"raw_payload_size"`

	DetectedAt time.Time `json:"detected_at"`
	IngestedAt time.Time `json:"ingested_at"`

	// Score summary, populated once a breakdown has been attached.
	RiskScore *float64   `json:"risk_score,omitempty"`
	RiskLevel RiskLevel  `json:"risk_level,omitempty"`
	ScoredAt  *time.Time `json:"scored_at,omitempty"`
}

// Snapshot derives the immutable scoring view from a persisted alert.
func (a *Alert) Snapshot() *AlertSnapshot {
	return &AlertSnapshot{
		Severity:        NormalizeSeverity(string(a.Severity)),
		AlertType:       a.AlertType,
		Tags:            append([]string(nil), a.Tags...),
		SourceIP:        a.SourceIP,
		DestinationIP:   a.DestinationIP,
		SourcePort:      a.SourcePort,
		DestinationPort: a.DestinationPort,
		Protocol:        a.Protocol,
		Description:     a.Description,
		RawPayloadSize:  a.RawPayloadSize,
		DetectedAt:      a.DetectedAt,
		ClientID:        a.TenantID,
		ClientName:      a.TenantName,
	}
}
