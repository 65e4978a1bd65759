// Package app wires ingestion, persistence, the ML model and the scorer
// into one pipeline, and manages background rescore jobs.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/exeosec/riskd/internal/ingest"
	"github.com/exeosec/riskd/internal/interfaces"
	"github.com/exeosec/riskd/internal/metrics"
	"github.com/exeosec/riskd/internal/ml"
	"github.com/exeosec/riskd/internal/model"
)

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// Job is one background rescore run. Progress is polled through GetJob.
type Job struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "rescore"
	Status    JobStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
}

// Pipeline ties together the mapper, store, model and scorer. It owns the
// frequency-signal queries: the scorer itself never touches the store.
type Pipeline struct {
	cfg     *Config
	store   interfaces.AlertStore
	scorer  interfaces.Scorer
	mdl     interfaces.Model
	metrics *metrics.Metrics
	logger  interfaces.Logger

	mappersMu sync.Mutex
	mappers   map[string]*ingest.Mapper

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc

	// now is the pipeline clock; tests replace it for determinism.
	now func() time.Time
}

// NewPipeline ties together config, store, model, scorer and metrics.
// mdl may be nil for deployments without a model.
func NewPipeline(cfg *Config, store interfaces.AlertStore, scorer interfaces.Scorer, mdl interfaces.Model, m *metrics.Metrics, logger interfaces.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if store == nil {
		return nil, fmt.Errorf("app: store is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("app: scorer is required")
	}
	if m == nil {
		m = metrics.New(false)
	}
	if logger == nil {
		logger = interfaces.NewTestLogger(false)
	}
	return &Pipeline{
		cfg:        cfg,
		store:      store,
		scorer:     scorer,
		mdl:        mdl,
		metrics:    m,
		logger:     logger.With(interfaces.Field{Key: "component", Value: "pipeline"}),
		mappers:    make(map[string]*ingest.Mapper),
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
		now:        time.Now,
	}, nil
}

// Store exposes the underlying alert store for read endpoints.
func (p *Pipeline) Store() interfaces.AlertStore { return p.store }

// ScorerVersion reports the active scoring algorithm revision.
func (p *Pipeline) ScorerVersion() string { return p.scorer.Version() }

// Close cancels running jobs and releases the model and store.
func (p *Pipeline) Close() error {
	p.jobsMu.Lock()
	for _, cancel := range p.jobCancels {
		cancel()
	}
	p.jobsMu.Unlock()

	var errs []error
	if p.mdl != nil {
		if err := p.mdl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (p *Pipeline) mapperFor(integration string) *ingest.Mapper {
	p.mappersMu.Lock()
	defer p.mappersMu.Unlock()
	m, ok := p.mappers[integration]
	if !ok {
		m = ingest.NewMapper(integration, nil, p.logger)
		p.mappers[integration] = m
	}
	return m
}

// ─── Ingestion and scoring ─────────────────────────────────────────────

// IngestAndScore normalizes a raw webhook payload, persists it, scores it
// and attaches the breakdown. The alert is kept even if scoring fails;
// a later rescore job picks it up.
func (p *Pipeline) IngestAndScore(ctx context.Context, tenantID, tenantName, integration string, raw map[string]any) (*model.Alert, *model.ScoreBreakdown, error) {
	if tenantID == "" {
		return nil, nil, fmt.Errorf("app: tenant id is required")
	}
	now := p.now().UTC()

	alert, err := p.mapperFor(integration).MapAlert(tenantID, tenantName, raw, now)
	if err != nil {
		return nil, nil, fmt.Errorf("app: map alert: %w", err)
	}
	if err := p.store.InsertAlert(ctx, alert); err != nil {
		return nil, nil, fmt.Errorf("app: persist alert: %w", err)
	}
	p.metrics.AlertsIngested.WithLabelValues(tenantID, integration).Inc()

	breakdown, err := p.scoreAlert(ctx, alert, now)
	if err != nil {
		p.logger.Error("scoring failed after ingest",
			interfaces.Field{Key: "alert_id", Value: alert.ID},
			interfaces.Field{Key: "error", Value: err.Error()})
		return alert, nil, nil
	}
	if err := p.store.AttachScore(ctx, alert.ID, breakdown); err != nil {
		return alert, breakdown, fmt.Errorf("app: attach score: %w", err)
	}
	alert.RiskScore = &breakdown.FinalScore
	alert.RiskLevel = breakdown.RiskLevel
	alert.ScoredAt = &breakdown.CalculatedAt
	return alert, breakdown, nil
}

// ScoreAdhoc scores a submitted snapshot without persisting anything.
// With nil signals the pipeline gathers them itself: frequency counts are
// looked up when the snapshot names a tenant, and the model is consulted.
// Explicit signals bypass both lookups (a zero Now still gets the clock),
// which lets callers replay a historical scoring decision exactly.
func (p *Pipeline) ScoreAdhoc(ctx context.Context, snap *model.AlertSnapshot, sig *model.ScoreSignals) (*model.ScoreBreakdown, error) {
	if snap == nil {
		return nil, fmt.Errorf("app: alert snapshot is required")
	}
	if sig != nil {
		given := *sig
		if given.Now.IsZero() {
			given.Now = p.now().UTC()
		}
		start := time.Now()
		b := p.scorer.Score(snap, given)
		p.metrics.ObserveScoring(start, string(b.RiskLevel), b.Error != "")
		return b, nil
	}
	return p.score(ctx, snap, p.now().UTC()), nil
}

// scoreAlert scores one persisted alert. The same-source window is anchored
// at the alert's detection time, the tenant window at now.
func (p *Pipeline) scoreAlert(ctx context.Context, a *model.Alert, now time.Time) (*model.ScoreBreakdown, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.score(ctx, a.Snapshot(), now), nil
}

func (p *Pipeline) score(ctx context.Context, snap *model.AlertSnapshot, now time.Time) *model.ScoreBreakdown {
	start := time.Now()

	sig := model.ScoreSignals{Now: now}
	if snap.ClientID != "" {
		anchor := snap.DetectedAt
		if anchor.IsZero() {
			anchor = now
		}
		n, err := p.store.CountRecentSameSource(ctx, snap.ClientID, snap.SourceIP, anchor.Add(-p.cfg.SameSourceWindow))
		if err != nil {
			p.logger.Warn("same-source count unavailable", interfaces.Field{Key: "error", Value: err.Error()})
		} else {
			sig.RecentSameSourceCount = n
		}
		n, err = p.store.CountTenantAlerts(ctx, snap.ClientID, now.Add(-p.cfg.TenantWindow))
		if err != nil {
			p.logger.Warn("tenant count unavailable", interfaces.Field{Key: "error", Value: err.Error()})
		} else {
			sig.Tenant30dCount = n
		}
	}
	sig.MLScore = p.predict(ctx, snap, sig.Tenant30dCount, now)

	b := p.scorer.Score(snap, sig)
	p.metrics.ObserveScoring(start, string(b.RiskLevel), b.Error != "")
	return b
}

// predict runs the model under the configured timeout. Any failure means
// "no usable prediction": the scorer falls back to its neutral ML value.
func (p *Pipeline) predict(ctx context.Context, snap *model.AlertSnapshot, tenantFrequency int, now time.Time) *float64 {
	if p.mdl == nil {
		return nil
	}

	predCtx, cancel := context.WithTimeout(ctx, p.cfg.MLTimeout)
	defer cancel()

	features := ml.Features(snap, tenantFrequency, now)
	score, ok, err := p.mdl.Predict(predCtx, features)
	switch {
	case err != nil:
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		p.metrics.MLPredictions.WithLabelValues(outcome).Inc()
		p.logger.Warn("ml prediction failed", interfaces.Field{Key: "error", Value: err.Error()})
		return nil
	case !ok:
		p.metrics.MLPredictions.WithLabelValues("declined").Inc()
		return nil
	default:
		p.metrics.MLPredictions.WithLabelValues("predicted").Inc()
		return &score
	}
}

// ─── Rescore jobs ──────────────────────────────────────────────────────

// StartRescoreJob scores the current unscored backlog in the background.
// limit <= 0 uses the configured batch size.
func (p *Pipeline) StartRescoreJob(ctx context.Context, limit int) (*Job, error) {
	if limit <= 0 {
		limit = p.cfg.RescoreBatchSize
	}

	pending, err := p.store.ListUnscored(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("app: list unscored: %w", err)
	}

	job := &Job{
		ID:        uuid.New().String(),
		Type:      "rescore",
		Status:    JobPending,
		Total:     len(pending),
		StartedAt: p.now().UTC(),
	}

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.jobsMu.Lock()
	p.jobs[job.ID] = job
	p.jobCancels[job.ID] = cancel
	p.jobsMu.Unlock()

	go p.runRescore(jobCtx, job.ID, pending)

	out := *job
	return &out, nil
}

func (p *Pipeline) runRescore(ctx context.Context, jobID string, pending []*model.Alert) {
	p.metrics.RescoreJobsActive.Inc()
	defer p.metrics.RescoreJobsActive.Dec()

	defer func() {
		p.jobsMu.Lock()
		if j, ok := p.jobs[jobID]; ok {
			j.EndedAt = p.now().UTC()
		}
		delete(p.jobCancels, jobID)
		p.jobsMu.Unlock()
	}()

	p.setJobStatus(jobID, JobRunning, "")
	now := p.now().UTC()

	for _, a := range pending {
		select {
		case <-ctx.Done():
			p.setJobStatus(jobID, JobCanceled, ctx.Err().Error())
			return
		default:
		}

		breakdown, err := p.scoreAlert(ctx, a, now)
		if err == nil {
			err = p.store.AttachScore(ctx, a.ID, breakdown)
		}
		if err != nil {
			if ctx.Err() != nil {
				p.setJobStatus(jobID, JobCanceled, ctx.Err().Error())
				return
			}
			p.setJobStatus(jobID, JobFailed, fmt.Sprintf("alert %s: %v", a.ID, err))
			return
		}

		p.jobsMu.Lock()
		if j, ok := p.jobs[jobID]; ok {
			j.Processed++
		}
		p.jobsMu.Unlock()
	}

	p.setJobStatus(jobID, JobDone, "")
	p.logger.Info("rescore job finished",
		interfaces.Field{Key: "job_id", Value: jobID},
		interfaces.Field{Key: "processed", Value: len(pending)})
}

func (p *Pipeline) setJobStatus(jobID string, status JobStatus, errMsg string) {
	p.jobsMu.Lock()
	defer p.jobsMu.Unlock()
	if j, ok := p.jobs[jobID]; ok {
		j.Status = status
		j.Error = errMsg
	}
}

// GetJob returns a copy of one job by id.
func (p *Pipeline) GetJob(id string) (*Job, bool) {
	p.jobsMu.Lock()
	defer p.jobsMu.Unlock()
	j, ok := p.jobs[id]
	if !ok {
		return nil, false
	}
	out := *j
	return &out, true
}

// ListJobs returns copies of all known jobs, newest first.
func (p *Pipeline) ListJobs() []*Job {
	p.jobsMu.Lock()
	defer p.jobsMu.Unlock()
	out := make([]*Job, 0, len(p.jobs))
	for _, j := range p.jobs {
		cp := *j
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CancelJob requests cancellation of a running job. It reports whether the
// job existed and was still cancelable.
func (p *Pipeline) CancelJob(id string) bool {
	p.jobsMu.Lock()
	cancel, ok := p.jobCancels[id]
	p.jobsMu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}
