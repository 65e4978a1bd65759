package ingest

import (
	"reflect"
	"testing"
	"time"

	"github.com/exeosec/riskd/internal/model"
)

var testNow = time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)

func newTestMapper(t *testing.T, integration string, fields *FieldMap) *Mapper {
	t.Helper()
	return NewMapper(integration, fields, nil)
}

// ─── Default mapping ───────────────────────────────────────────────────

func TestMapAlert_DefaultFields(t *testing.T) {
	t.Parallel()

	m := newTestMapper(t, "generic", nil)
	raw := map[string]any{
		"id":          "EXT-42",
		"title":       "Suspicious beacon",
		"description": "outbound beacon to known C2",
		"severity":    "high",
		"alert_type":  "Command Control",
		"source_ip":   "203.0.113.9",
		"dst_ip":      "10.0.0.5",
		"source_port": float64(51234),
		"dst_port":    "443",
		"protocol":    "tcp",
		"timestamp":   "2025-03-11T09:30:00Z",
		"tags":        []any{"apt", "beacon"},
	}

	a, err := m.MapAlert("tenant-1", "Acme Bank", raw, testNow)
	if err != nil {
		t.Fatalf("MapAlert() error = %v", err)
	}

	if a.ExternalID != "EXT-42" {
		t.Errorf("ExternalID = %q", a.ExternalID)
	}
	if a.Severity != model.SeverityHigh {
		t.Errorf("Severity = %q, want high", a.Severity)
	}
	if a.AlertType != "command_control" {
		t.Errorf("AlertType = %q, want command_control", a.AlertType)
	}
	if a.SourceIP != "203.0.113.9" || a.DestinationIP != "10.0.0.5" {
		t.Errorf("IPs = %q / %q", a.SourceIP, a.DestinationIP)
	}
	if a.SourcePort != 51234 || a.DestinationPort != 443 {
		t.Errorf("ports = %d / %d", a.SourcePort, a.DestinationPort)
	}
	if !a.DetectedAt.Equal(time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("DetectedAt = %v", a.DetectedAt)
	}
	if !a.IngestedAt.Equal(testNow) {
		t.Errorf("IngestedAt = %v, want %v", a.IngestedAt, testNow)
	}
	if !reflect.DeepEqual(a.Tags, []string{"apt", "beacon"}) {
		t.Errorf("Tags = %v", a.Tags)
	}
	if a.TenantID != "tenant-1" || a.TenantName != "Acme Bank" {
		t.Errorf("tenant = %q / %q", a.TenantID, a.TenantName)
	}
	if a.RawPayloadSize == 0 || a.RawPayload == "" {
		t.Error("raw payload not captured")
	}
	if a.SourceSystem != "generic" {
		t.Errorf("SourceSystem = %q, want mapper integration name", a.SourceSystem)
	}
}

func TestMapAlert_EmptyPayloadDefaults(t *testing.T) {
	t.Parallel()

	m := newTestMapper(t, "generic", nil)
	a, err := m.MapAlert("tenant-1", "", map[string]any{}, testNow)
	if err != nil {
		t.Fatalf("MapAlert() error = %v", err)
	}

	if a.Severity != model.SeverityMedium {
		t.Errorf("missing severity = %q, want medium", a.Severity)
	}
	if a.AlertType != "unknown" {
		t.Errorf("missing type = %q, want unknown", a.AlertType)
	}
	if !a.DetectedAt.Equal(testNow) {
		t.Errorf("missing timestamp should fall back to now, got %v", a.DetectedAt)
	}
}

// ─── Severity normalization ────────────────────────────────────────────

func TestMapSeverity_Conversions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value any
		want  model.Severity
	}{
		{"numeric 1 is critical", float64(1), model.SeverityCritical},
		{"numeric 2 is high", float64(2), model.SeverityHigh},
		{"numeric 3 is medium", float64(3), model.SeverityMedium},
		{"numeric 7 is low", float64(7), model.SeverityLow},
		{"numeric string", "2", model.SeverityHigh},
		{"fatal alias", "fatal", model.SeverityCritical},
		{"error alias", "ERROR", model.SeverityHigh},
		{"warning alias", "warning", model.SeverityMedium},
		{"info alias", "info", model.SeverityLow},
		{"garbage is medium", "banana", model.SeverityMedium},
	}

	m := newTestMapper(t, "generic", nil)
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a, err := m.MapAlert("t", "", map[string]any{"severity": tc.value}, testNow)
			if err != nil {
				t.Fatalf("MapAlert() error = %v", err)
			}
			if a.Severity != tc.want {
				t.Errorf("severity %v mapped to %q, want %q", tc.value, a.Severity, tc.want)
			}
		})
	}
}

// ─── Timestamps and tags ───────────────────────────────────────────────

func TestMapTimestamp_Layouts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value any
		want  time.Time
	}{
		{"rfc3339", "2025-03-10T22:15:00Z", time.Date(2025, 3, 10, 22, 15, 0, 0, time.UTC)},
		{"no zone", "2025-03-10T22:15:00", time.Date(2025, 3, 10, 22, 15, 0, 0, time.UTC)},
		{"space separated", "2025-03-10 22:15:00", time.Date(2025, 3, 10, 22, 15, 0, 0, time.UTC)},
		{"unix seconds", float64(1741644900), time.Unix(1741644900, 0).UTC()},
		{"unparseable falls back", "next tuesday", testNow},
	}

	m := newTestMapper(t, "generic", nil)
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a, err := m.MapAlert("t", "", map[string]any{"timestamp": tc.value}, testNow)
			if err != nil {
				t.Fatalf("MapAlert() error = %v", err)
			}
			if !a.DetectedAt.Equal(tc.want) {
				t.Errorf("DetectedAt = %v, want %v", a.DetectedAt, tc.want)
			}
		})
	}
}

func TestMapAlert_TagShapes(t *testing.T) {
	t.Parallel()

	m := newTestMapper(t, "generic", nil)
	cases := []struct {
		name  string
		value any
		want  []string
	}{
		{"json array", []any{"apt", "ransomware"}, []string{"apt", "ransomware"}},
		{"comma string", "apt, ransomware ,", []string{"apt", "ransomware"}},
		{"single string", "apt", []string{"apt"}},
		{"wrong type dropped", float64(7), nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a, err := m.MapAlert("t", "", map[string]any{"tags": tc.value}, testNow)
			if err != nil {
				t.Fatalf("MapAlert() error = %v", err)
			}
			if !reflect.DeepEqual(a.Tags, tc.want) {
				t.Errorf("tags %v mapped to %v, want %v", tc.value, a.Tags, tc.want)
			}
		})
	}
}

// ─── Dotted paths and presets ──────────────────────────────────────────

func TestExtract_DottedPath(t *testing.T) {
	t.Parallel()

	fm := DefaultFieldMap()
	fm.Title = []string{"event.details.title"}
	m := newTestMapper(t, "custom", &fm)

	raw := map[string]any{
		"event": map[string]any{
			"details": map[string]any{"title": "nested title"},
		},
	}
	a, err := m.MapAlert("t", "", raw, testNow)
	if err != nil {
		t.Fatalf("MapAlert() error = %v", err)
	}
	if a.Title != "nested title" {
		t.Errorf("Title = %q, want nested lookup result", a.Title)
	}
}

func TestPreset_Fortinet(t *testing.T) {
	t.Parallel()

	m := newTestMapper(t, "fortinet", nil)
	raw := map[string]any{
		"logid": "0100032001",
		"msg":   "admin login failed",
		"level": "alert",
		"srcip": "198.51.100.7",
		"dstip": "10.0.0.1",
		"time":  "2025-03-11T08:00:00Z",
	}

	a, err := m.MapAlert("t", "", raw, testNow)
	if err != nil {
		t.Fatalf("MapAlert() error = %v", err)
	}
	if a.ExternalID != "0100032001" {
		t.Errorf("ExternalID = %q", a.ExternalID)
	}
	if a.Severity != model.SeverityHigh {
		t.Errorf("fortinet level=alert mapped to %q, want high", a.Severity)
	}
	if a.SourceIP != "198.51.100.7" {
		t.Errorf("SourceIP = %q", a.SourceIP)
	}
}

func TestPreset_SplunkNumericPriority(t *testing.T) {
	t.Parallel()

	m := newTestMapper(t, "splunk", nil)
	a, err := m.MapAlert("t", "", map[string]any{"priority": "1"}, testNow)
	if err != nil {
		t.Fatalf("MapAlert() error = %v", err)
	}
	if a.Severity != model.SeverityCritical {
		t.Errorf("splunk priority=1 mapped to %q, want critical", a.Severity)
	}
}

func TestPreset_UnknownSystemUsesDefaults(t *testing.T) {
	t.Parallel()

	if Preset("no-such-vendor") != nil {
		t.Fatal("Preset() for unknown system should be nil")
	}
	m := newTestMapper(t, "no-such-vendor", nil)
	a, err := m.MapAlert("t", "", map[string]any{"severity": "high"}, testNow)
	if err != nil {
		t.Fatalf("MapAlert() error = %v", err)
	}
	if a.Severity != model.SeverityHigh {
		t.Errorf("default chain severity = %q, want high", a.Severity)
	}
}
