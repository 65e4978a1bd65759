// Package metrics exposes the service's Prometheus instrumentation on a
// private registry, so tests can create isolated instances without
// colliding on the global default.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every instrument the service records.
type Metrics struct {
	registry *prometheus.Registry

	// AlertsIngested counts accepted webhook alerts, by tenant and integration.
	AlertsIngested *prometheus.CounterVec

	// AlertsScored counts completed scoring runs, by resulting risk level.
	AlertsScored *prometheus.CounterVec

	// ScoringFailures counts scoring runs that took the fallback path.
	ScoringFailures prometheus.Counter

	// ScoringDuration observes wall time of a full scoring run.
	ScoringDuration prometheus.Histogram

	// MLPredictions counts model invocations by outcome
	// (predicted, declined, error, timeout).
	MLPredictions *prometheus.CounterVec

	// RescoreJobsActive tracks rescore jobs currently running.
	RescoreJobsActive prometheus.Gauge
}

// New builds a Metrics instance on a fresh registry. enableRuntimeMetrics
// additionally registers the Go and process collectors.
func New(enableRuntimeMetrics bool) *Metrics {
	reg := prometheus.NewRegistry()
	if enableRuntimeMetrics {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		reg.MustRegister(collectors.NewGoCollector())
	}

	m := &Metrics{
		registry: reg,
		AlertsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskd_alerts_ingested_total",
			Help: "Webhook alerts accepted and persisted.",
		}, []string{"tenant", "integration"}),
		AlertsScored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskd_alerts_scored_total",
			Help: "Completed scoring runs by resulting risk level.",
		}, []string{"risk_level"}),
		ScoringFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "riskd_scoring_failures_total",
			Help: "Scoring runs that returned the fallback result.",
		}),
		ScoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskd_scoring_duration_seconds",
			Help:    "Wall time of a full scoring run including signal queries.",
			Buckets: prometheus.DefBuckets,
		}),
		MLPredictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskd_ml_predictions_total",
			Help: "ML model invocations by outcome.",
		}, []string{"outcome"}),
		RescoreJobsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "riskd_rescore_jobs_active",
			Help: "Rescore jobs currently running.",
		}),
	}

	reg.MustRegister(
		m.AlertsIngested,
		m.AlertsScored,
		m.ScoringFailures,
		m.ScoringDuration,
		m.MLPredictions,
		m.RescoreJobsActive,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveScoring records one scoring run's duration and outcome in one call.
func (m *Metrics) ObserveScoring(start time.Time, riskLevel string, fallback bool) {
	m.ScoringDuration.Observe(time.Since(start).Seconds())
	m.AlertsScored.WithLabelValues(riskLevel).Inc()
	if fallback {
		m.ScoringFailures.Inc()
	}
}
