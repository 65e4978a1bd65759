// Package ingest normalizes heterogeneous client webhook payloads into the
// internal alert schema. Vendors disagree on everything — field names,
// severity scales, timestamp formats — so mapping is alias-chain driven:
// each internal field tries a list of source keys (including dotted JSON
// paths) in order and takes the first hit.
package ingest

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/exeosec/riskd/internal/interfaces"
	"github.com/exeosec/riskd/internal/model"
)

// FieldMap lists, per internal field, the source keys to try in order.
// SeverityValues optionally overrides the generic severity conversion with
// a vendor-specific value table (lowercased keys).
type FieldMap struct {
	ID              []string
	Title           []string
	Description     []string
	Severity        []string
	AlertType       []string
	SourceIP        []string
	DestinationIP   []string
	SourcePort      []string
	DestinationPort []string
	Protocol        []string
	SourceSystem    []string
	Timestamp       []string
	Tags            []string

	SeverityValues map[string]string
}

// DefaultFieldMap covers the common names seen across client systems.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		ID:              []string{"id", "external_id", "alert_id", "event_id"},
		Title:           []string{"title", "event_title", "summary", "name"},
		Description:     []string{"description", "message", "details", "msg"},
		Severity:        []string{"severity", "priority", "level", "risk"},
		AlertType:       []string{"alert_type", "event_type", "category", "type"},
		SourceIP:        []string{"source_ip", "src_ip", "source_address", "src"},
		DestinationIP:   []string{"destination_ip", "dst_ip", "destination_address", "dst"},
		SourcePort:      []string{"source_port", "src_port", "sport"},
		DestinationPort: []string{"destination_port", "dst_port", "dport"},
		Protocol:        []string{"protocol", "proto"},
		SourceSystem:    []string{"source_system", "host", "device", "sensor"},
		Timestamp:       []string{"timestamp", "time", "created_at", "detected_at", "event_time"},
		Tags:            []string{"tags", "labels", "categories"},
	}
}

// Mapper converts one integration's raw payloads into alerts.
type Mapper struct {
	integration string
	fields      FieldMap
	logger      interfaces.Logger
}

// NewMapper builds a mapper for an integration. A nil fields argument falls
// back to the vendor preset for the integration name, then to the default
// alias chains.
func NewMapper(integration string, fields *FieldMap, logger interfaces.Logger) *Mapper {
	if logger == nil {
		logger = interfaces.NewTestLogger(false)
	}
	fm := DefaultFieldMap()
	if fields != nil {
		fm = *fields
	} else if preset := Preset(integration); preset != nil {
		fm = *preset
	}
	return &Mapper{
		integration: integration,
		fields:      fm,
		logger:      logger.With(interfaces.Field{Key: "component", Value: "ingest-mapper"}, interfaces.Field{Key: "integration", Value: integration}),
	}
}

// MapAlert normalizes one raw payload into an Alert for the tenant.
// now is injected: it stamps IngestedAt and backfills a missing timestamp.
func (m *Mapper) MapAlert(tenantID, tenantName string, raw map[string]any, now time.Time) (*model.Alert, error) {
	if raw == nil {
		raw = map[string]any{}
	}

	rawJSON, err := json.Marshal(raw)
	if err != nil {
		// Payloads decoded from JSON always re-encode; anything else is
		// recorded empty rather than failing ingestion.
		m.logger.Warn("failed to re-encode raw payload", interfaces.Field{Key: "error", Value: err.Error()})
		rawJSON = []byte("{}")
	}

	a := &model.Alert{
		TenantID:        tenantID,
		TenantName:      tenantName,
		ExternalID:      asString(extract(raw, m.fields.ID...)),
		Title:           asString(extract(raw, m.fields.Title...)),
		Description:     asString(extract(raw, m.fields.Description...)),
		Severity:        m.mapSeverity(raw),
		AlertType:       normalizeType(asString(extract(raw, m.fields.AlertType...))),
		SourceIP:        asString(extract(raw, m.fields.SourceIP...)),
		DestinationIP:   asString(extract(raw, m.fields.DestinationIP...)),
		SourcePort:      asInt(extract(raw, m.fields.SourcePort...)),
		DestinationPort: asInt(extract(raw, m.fields.DestinationPort...)),
		Protocol:        asString(extract(raw, m.fields.Protocol...)),
		SourceSystem:    asString(extract(raw, m.fields.SourceSystem...)),
		Tags:            asStringSlice(extract(raw, m.fields.Tags...)),
		RawPayload:      string(rawJSON),
		RawPayloadSize:  len(rawJSON),
		DetectedAt:      m.mapTimestamp(raw, now),
		IngestedAt:      now,
	}
	if a.SourceSystem == "" {
		a.SourceSystem = m.integration
	}

	m.logger.Info("alert mapped",
		interfaces.Field{Key: "external_id", Value: a.ExternalID},
		interfaces.Field{Key: "severity", Value: string(a.Severity)},
		interfaces.Field{Key: "alert_type", Value: a.AlertType})

	return a, nil
}

// mapSeverity normalizes the vendor severity value: the vendor table first,
// then numeric scales (1=critical .. 4+=low), then common string aliases.
func (m *Mapper) mapSeverity(raw map[string]any) model.Severity {
	v := extract(raw, m.fields.Severity...)
	if v == nil {
		return model.SeverityMedium
	}

	if s, ok := v.(string); ok && m.fields.SeverityValues != nil {
		if mapped, ok := m.fields.SeverityValues[strings.ToLower(strings.TrimSpace(s))]; ok {
			return model.NormalizeSeverity(mapped)
		}
	}

	if n, ok := asNumber(v); ok {
		switch {
		case n <= 1:
			return model.SeverityCritical
		case n <= 2:
			return model.SeverityHigh
		case n <= 3:
			return model.SeverityMedium
		default:
			return model.SeverityLow
		}
	}

	return model.NormalizeSeverity(genericSeverityAliases[strings.ToLower(strings.TrimSpace(asString(v)))])
}

// genericSeverityAliases maps common vendor severity strings onto the four
// internal levels. Unmapped values end up medium via NormalizeSeverity.
var genericSeverityAliases = map[string]string{
	"critical": "critical", "fatal": "critical", "urgent": "critical", "emergency": "critical",
	"high": "high", "error": "high", "important": "high", "alert": "high",
	"medium": "medium", "warning": "medium", "normal": "medium", "moderate": "medium",
	"low": "low", "info": "low", "informational": "low", "minor": "low", "notice": "low",
}

// timestampLayouts are tried in order for string timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// mapTimestamp parses the vendor timestamp (string layouts or unix
// seconds); anything unparseable falls back to now.
func (m *Mapper) mapTimestamp(raw map[string]any, now time.Time) time.Time {
	v := extract(raw, m.fields.Timestamp...)
	switch ts := v.(type) {
	case nil:
		return now
	case string:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, ts); err == nil {
				return t.UTC()
			}
		}
		m.logger.Warn("unparseable timestamp, using ingestion time", interfaces.Field{Key: "value", Value: ts})
		return now
	default:
		if n, ok := asNumber(v); ok {
			return time.Unix(int64(n), 0).UTC()
		}
		return now
	}
}

// normalizeType lowercases the category and snake_cases spaces/dashes so
// vendor categories line up with the scoring type table.
func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return "unknown"
	}
	t = strings.ReplaceAll(t, " ", "_")
	t = strings.ReplaceAll(t, "-", "_")
	return t
}

// ─── field extraction ──────────────────────────────────────────────────

// extract tries each key as a direct lookup, then again as a dotted path
// ("event.details.title"), returning the first value found.
func extract(data map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := data[key]; ok {
			return v
		}
	}
	for _, key := range keys {
		if !strings.Contains(key, ".") {
			continue
		}
		if v, ok := lookupPath(data, strings.Split(key, ".")); ok {
			return v
		}
	}
	return nil
}

func lookupPath(data map[string]any, path []string) (any, bool) {
	var current any = data
	for _, part := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func asInt(v any) int {
	if n, ok := asNumber(v); ok {
		return int(n)
	}
	return 0
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

// asStringSlice accepts a JSON array, a single string, or a comma-joined
// string; everything else maps to no tags.
func asStringSlice(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case string:
		if t == "" {
			return nil
		}
		parts := strings.Split(t, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}
