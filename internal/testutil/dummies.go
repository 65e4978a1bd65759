// Package testutil provides small in-memory doubles for the service's
// interfaces, used across package tests.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/exeosec/riskd/internal/interfaces"
	"github.com/exeosec/riskd/internal/model"
)

// DummyLogger discards everything.
type DummyLogger struct{}

func (DummyLogger) Debug(string, ...interfaces.Field) {}
func (DummyLogger) Info(string, ...interfaces.Field)  {}
func (DummyLogger) Warn(string, ...interfaces.Field)  {}
func (DummyLogger) Error(string, ...interfaces.Field) {}

func (d DummyLogger) With(...interfaces.Field) interfaces.Logger { return d }

// DummyModel returns a fixed prediction. Zero value declines every call,
// like a disabled model.
type DummyModel struct {
	Score float64
	OK    bool
	Err   error

	// Delay, when set, makes Predict sleep before answering; used to
	// exercise prediction timeouts.
	Delay time.Duration

	mu    sync.Mutex
	calls int
}

func (m *DummyModel) Predict(ctx context.Context, features []float64) (float64, bool, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return 0, false, ctx.Err()
		}
	}
	return m.Score, m.OK, m.Err
}

func (m *DummyModel) Close() error { return nil }

func (m *DummyModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// DummyScorer returns a canned breakdown and records the signals it saw.
type DummyScorer struct {
	Breakdown *model.ScoreBreakdown

	mu       sync.Mutex
	lastSigs model.ScoreSignals
}

func (s *DummyScorer) Score(alert *model.AlertSnapshot, sig model.ScoreSignals) *model.ScoreBreakdown {
	s.mu.Lock()
	s.lastSigs = sig
	s.mu.Unlock()
	if s.Breakdown != nil {
		b := *s.Breakdown
		return &b
	}
	return &model.ScoreBreakdown{
		FinalScore:      5.0,
		RiskLevel:       model.RiskMedium,
		Confidence:      0.5,
		Recommendations: []string{"Review when capacity allows"},
		Methodology:     "dummy",
		Version:         "test",
		CalculatedAt:    sig.Now,
	}
}

func (s *DummyScorer) Version() string { return "test" }

func (s *DummyScorer) LastSignals() model.ScoreSignals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSigs
}

// MemStore is an in-memory AlertStore for tests.
type MemStore struct {
	mu     sync.Mutex
	alerts map[string]*model.Alert
	scores map[string]*model.ScoreBreakdown

	// FailInsert, when set, is returned from InsertAlert.
	FailInsert error
}

var _ interfaces.AlertStore = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		alerts: make(map[string]*model.Alert),
		scores: make(map[string]*model.ScoreBreakdown),
	}
}

func (s *MemStore) InsertAlert(_ context.Context, a *model.Alert) error {
	if s.FailInsert != nil {
		return s.FailInsert
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	cp := *a
	s.alerts[a.ID] = &cp
	return nil
}

func (s *MemStore) GetAlert(_ context.Context, id string) (*model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, errors.New("alert not found")
	}
	cp := *a
	return &cp, nil
}

func (s *MemStore) ListAlerts(_ context.Context, tenantID string, limit int) ([]*model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Alert
	for _, a := range s.alerts {
		if a.TenantID == tenantID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.After(out[j].DetectedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) CountRecentSameSource(_ context.Context, tenantID, sourceIP string, since time.Time) (int, error) {
	if sourceIP == "" {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.alerts {
		if a.TenantID == tenantID && a.SourceIP == sourceIP && !a.DetectedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) CountTenantAlerts(_ context.Context, tenantID string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.alerts {
		if a.TenantID == tenantID && !a.DetectedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) ListUnscored(_ context.Context, limit int) ([]*model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Alert
	for _, a := range s.alerts {
		if a.RiskScore == nil {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngestedAt.Before(out[j].IngestedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) AttachScore(_ context.Context, alertID string, b *model.ScoreBreakdown) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[alertID]
	if !ok {
		return errors.New("alert not found")
	}
	score := b.FinalScore
	at := b.CalculatedAt
	a.RiskScore = &score
	a.RiskLevel = b.RiskLevel
	a.ScoredAt = &at
	cp := *b
	s.scores[alertID] = &cp
	return nil
}

func (s *MemStore) GetScore(_ context.Context, alertID string) (*model.ScoreBreakdown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.scores[alertID]
	if !ok {
		return nil, errors.New("score not found")
	}
	cp := *b
	return &cp, nil
}

func (s *MemStore) Close() error { return nil }
