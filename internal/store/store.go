// Package store persists alerts and score breakdowns in SQLite.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/exeosec/riskd/internal/interfaces"
	"github.com/exeosec/riskd/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

var (
	ErrAlertNotFound = errors.New("alert not found")
	ErrScoreNotFound = errors.New("score not found")
)

// timeLayout is the canonical column format for timestamps: UTC with a
// fixed-width fraction, so lexicographic order matches chronological order
// (the range queries compare these as strings).
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements interfaces.AlertStore on a SQLite database.
type Store struct {
	db     *sql.DB
	logger interfaces.Logger
}

var _ interfaces.AlertStore = (*Store)(nil)

// Open opens (or creates) the SQLite database at path and runs migrations.
// Use ":memory:" for an ephemeral database.
func Open(path string, logger interfaces.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: database path is required")
	}
	if logger == nil {
		logger = interfaces.NewTestLogger(false)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// modernc's driver serializes writes per connection; a single connection
	// also keeps ":memory:" databases from silently splitting per-conn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: execute schema: %w", err)
	}

	logger.Info("opened alert store", interfaces.Field{Key: "path", Value: path})
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Alerts ────────────────────────────────────────────────────────────

// InsertAlert persists a new alert. An empty ID is assigned a fresh UUID.
func (s *Store) InsertAlert(ctx context.Context, a *model.Alert) error {
	if a == nil {
		return fmt.Errorf("store: alert is nil")
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.TenantID == "" {
		return fmt.Errorf("store: tenant id is required")
	}

	tags, err := json.Marshal(a.Tags)
	if err != nil {
		return fmt.Errorf("store: encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO alerts (
			id, tenant_id, tenant_name, external_id, title, description,
			severity, alert_type, tags,
			source_ip, destination_ip, source_port, destination_port, protocol,
			source_system, raw_payload, raw_payload_size,
			detected_at, ingested_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.TenantID, a.TenantName, a.ExternalID, a.Title, a.Description,
		string(a.Severity), a.AlertType, string(tags),
		a.SourceIP, a.DestinationIP, a.SourcePort, a.DestinationPort, a.Protocol,
		a.SourceSystem, a.RawPayload, a.RawPayloadSize,
		fmtTime(a.DetectedAt), fmtTime(a.IngestedAt),
	)
	if err != nil {
		return fmt.Errorf("store: insert alert %s: %w", a.ID, err)
	}
	return nil
}

const alertColumns = `
	id, tenant_id, tenant_name, external_id, title, description,
	severity, alert_type, tags,
	source_ip, destination_ip, source_port, destination_port, protocol,
	source_system, raw_payload, raw_payload_size,
	detected_at, ingested_at, risk_score, risk_level, scored_at`

// GetAlert returns one alert by id, or ErrAlertNotFound.
func (s *Store) GetAlert(ctx context.Context, id string) (*model.Alert, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlertNotFound
	}
	return a, err
}

// ListAlerts returns up to limit alerts for a tenant, newest first by
// detection time. limit <= 0 means no limit.
func (s *Store) ListAlerts(ctx context.Context, tenantID string, limit int) ([]*model.Alert, error) {
	if limit <= 0 {
		limit = -1 // SQLite: LIMIT -1 means unlimited
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+alertColumns+` FROM alerts
		 WHERE tenant_id = ?
		 ORDER BY detected_at DESC, id LIMIT ?`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list alerts for %s: %w", tenantID, err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

// ListUnscored returns up to limit alerts with no attached score, oldest
// ingested first so backlogs drain in order.
func (s *Store) ListUnscored(ctx context.Context, limit int) ([]*model.Alert, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+alertColumns+` FROM alerts
		 WHERE risk_score IS NULL
		 ORDER BY ingested_at, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list unscored: %w", err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

// CountRecentSameSource counts a tenant's alerts from one source IP detected
// at or after since. An empty source IP never matches anything.
func (s *Store) CountRecentSameSource(ctx context.Context, tenantID, sourceIP string, since time.Time) (int, error) {
	if sourceIP == "" {
		return 0, nil
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM alerts
		 WHERE tenant_id = ? AND source_ip = ? AND detected_at >= ?`,
		tenantID, sourceIP, fmtTime(since)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count same-source alerts: %w", err)
	}
	return n, nil
}

// CountTenantAlerts counts a tenant's alerts detected at or after since.
func (s *Store) CountTenantAlerts(ctx context.Context, tenantID string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM alerts
		 WHERE tenant_id = ? AND detected_at >= ?`,
		tenantID, fmtTime(since)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count tenant alerts: %w", err)
	}
	return n, nil
}

// ─── Scores ────────────────────────────────────────────────────────────

// AttachScore stores a breakdown for the alert and updates the alert's
// summary columns, in one transaction. The alert must exist.
func (s *Store) AttachScore(ctx context.Context, alertID string, b *model.ScoreBreakdown) error {
	if b == nil {
		return fmt.Errorf("store: breakdown is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin attach score: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE alerts SET risk_score = ?, risk_level = ?, scored_at = ? WHERE id = ?`,
		b.FinalScore, string(b.RiskLevel), fmtTime(b.CalculatedAt), alertID)
	if err != nil {
		return fmt.Errorf("store: update alert summary: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlertNotFound
	}

	recs, err := json.Marshal(b.Recommendations)
	if err != nil {
		return fmt.Errorf("store: encode recommendations: %w", err)
	}

	scoreID := uuid.New().String()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO score_results (
			id, alert_id, final_score, confidence, risk_level,
			methodology, version, recommendations, error, calculated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scoreID, alertID, b.FinalScore, b.Confidence, string(b.RiskLevel),
		b.Methodology, b.Version, string(recs), b.Error, fmtTime(b.CalculatedAt))
	if err != nil {
		return fmt.Errorf("store: insert score result: %w", err)
	}

	for i, c := range b.Components {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO score_components (score_id, position, name, value, weight, description)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			scoreID, i, c.Name, c.Value, c.Weight, c.Description)
		if err != nil {
			return fmt.Errorf("store: insert score component %s: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit attach score: %w", err)
	}
	return nil
}

// GetScore returns the most recent breakdown attached to the alert, or
// ErrScoreNotFound.
func (s *Store) GetScore(ctx context.Context, alertID string) (*model.ScoreBreakdown, error) {
	var (
		scoreID string
		b       model.ScoreBreakdown
		level   string
		recs    string
		calcAt  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, final_score, confidence, risk_level, methodology, version,
		        recommendations, error, calculated_at
		 FROM score_results WHERE alert_id = ?
		 ORDER BY calculated_at DESC, rowid DESC LIMIT 1`, alertID).
		Scan(&scoreID, &b.FinalScore, &b.Confidence, &level, &b.Methodology,
			&b.Version, &recs, &b.Error, &calcAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get score for %s: %w", alertID, err)
	}

	b.RiskLevel = model.RiskLevel(level)
	if b.CalculatedAt, err = parseTime(calcAt); err != nil {
		return nil, fmt.Errorf("store: parse calculated_at: %w", err)
	}
	if err := json.Unmarshal([]byte(recs), &b.Recommendations); err != nil {
		return nil, fmt.Errorf("store: decode recommendations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value, weight, description
		 FROM score_components WHERE score_id = ? ORDER BY position`, scoreID)
	if err != nil {
		return nil, fmt.Errorf("store: get score components: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c model.Component
		if err := rows.Scan(&c.Name, &c.Value, &c.Weight, &c.Description); err != nil {
			return nil, fmt.Errorf("store: scan score component: %w", err)
		}
		b.Components = append(b.Components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate score components: %w", err)
	}
	return &b, nil
}

// ─── Row scanning ──────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*model.Alert, error) {
	var (
		a          model.Alert
		severity   string
		tags       string
		detectedAt string
		ingestedAt string
		riskScore  sql.NullFloat64
		riskLevel  string
		scoredAt   sql.NullString
	)
	err := row.Scan(
		&a.ID, &a.TenantID, &a.TenantName, &a.ExternalID, &a.Title, &a.Description,
		&severity, &a.AlertType, &tags,
		&a.SourceIP, &a.DestinationIP, &a.SourcePort, &a.DestinationPort, &a.Protocol,
		&a.SourceSystem, &a.RawPayload, &a.RawPayloadSize,
		&detectedAt, &ingestedAt, &riskScore, &riskLevel, &scoredAt,
	)
	if err != nil {
		return nil, err
	}

	a.Severity = model.Severity(severity)
	a.RiskLevel = model.RiskLevel(riskLevel)
	if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
		return nil, fmt.Errorf("store: decode tags: %w", err)
	}
	if a.DetectedAt, err = parseTime(detectedAt); err != nil {
		return nil, fmt.Errorf("store: parse detected_at: %w", err)
	}
	if a.IngestedAt, err = parseTime(ingestedAt); err != nil {
		return nil, fmt.Errorf("store: parse ingested_at: %w", err)
	}
	if riskScore.Valid {
		a.RiskScore = &riskScore.Float64
	}
	if scoredAt.Valid && scoredAt.String != "" {
		t, err := parseTime(scoredAt.String)
		if err != nil {
			return nil, fmt.Errorf("store: parse scored_at: %w", err)
		}
		a.ScoredAt = &t
	}
	return &a, nil
}

func collectAlerts(rows *sql.Rows) ([]*model.Alert, error) {
	var out []*model.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan alert: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate alerts: %w", err)
	}
	return out, nil
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
