// Package server is the HTTP API surface: webhook ingestion, ad-hoc
// scoring, alert reads, rescore jobs, health and metrics.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/exeosec/riskd/internal/app"
	"github.com/exeosec/riskd/internal/interfaces"
	"github.com/exeosec/riskd/internal/logging"
	"github.com/exeosec/riskd/internal/metrics"
	"github.com/exeosec/riskd/internal/ml"
	"github.com/exeosec/riskd/internal/model"
	"github.com/exeosec/riskd/internal/scoring"
	"github.com/exeosec/riskd/internal/store"

	_ "github.com/exeosec/riskd/docs/swagger" // generated API docs
)

// Server is the HTTP API for the risk scoring service.
type Server struct {
	cfg      Config
	pipeline *app.Pipeline
	router   chi.Router
	logger   interfaces.Logger
	metrics  *metrics.Metrics
}

// NewServer creates a Server with its own store, model and pipeline.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New(true)
	}

	st, err := store.Open(cfg.AppConfig.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening alert store: %w", err)
	}

	scorer, err := scoring.NewRiskScorer(cfg.AppConfig.ScoringCfg, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating scorer: %w", err)
	}

	var mdl interfaces.Model = ml.Disabled{}
	if cfg.AppConfig.MLEnabled {
		mdl, err = ml.NewONNXModel(cfg.AppConfig.MLCfg, logger)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("loading ml model: %w", err)
		}
	}

	pipeline, err := app.NewPipeline(cfg.AppConfig, st, scorer, mdl, m, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		router:   chi.NewRouter(),
		logger:   logger,
		metrics:  m,
	}
	s.routes()
	return s, nil
}

// Pipeline returns the underlying pipeline for advanced use (tests, etc.).
func (s *Server) Pipeline() *app.Pipeline {
	return s.pipeline
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/score", s.optionsHandler("POST"))
	r.Options("/webhooks/{tenant}/{integration}", s.optionsHandler("POST"))
	r.Options("/tenants/{tenant}/alerts", s.optionsHandler("GET"))
	r.Options("/alerts/{alertID}", s.optionsHandler("GET"))
	r.Options("/alerts/{alertID}/score", s.optionsHandler("GET"))
	r.Options("/jobs/rescore", s.optionsHandler("POST"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))

	// Scoring
	r.Post("/score", s.handleScoreAdhoc)
	r.Post("/webhooks/{tenant}/{integration}", s.handleWebhook)

	// Alerts
	r.Get("/tenants/{tenant}/alerts", s.handleListAlerts)
	r.Get("/alerts/{alertID}", s.handleGetAlert)
	r.Get("/alerts/{alertID}/score", s.handleGetScore)

	// Jobs over REST
	r.Post("/jobs/rescore", s.handleStartRescoreJob)
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)

	// Operational surface
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	if s.cfg.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler())
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []interfaces.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, interfaces.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, interfaces.Field{Key: "body_bytes", Value: len(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the pipeline and underlying resources.
func (s *Server) Close() {
	if s.pipeline != nil {
		if err := s.pipeline.Close(); err != nil {
			s.logger.Warn("closing pipeline", interfaces.Field{Key: "error", Value: err.Error()})
		}
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- HTTP handlers ---

// Scoring

// handleScoreAdhoc scores a submitted alert snapshot without persisting it.
//
// @Summary Score an alert ad hoc
// @Accept json
// @Produce json
// @Param alert body ScoreRequest true "Alert snapshot plus optional signals"
// @Success 200 {object} model.ScoreBreakdown
// @Failure 400 {object} ErrorResponse
// @Router /score [post]
func (s *Server) handleScoreAdhoc(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Severity = model.NormalizeSeverity(string(req.Severity))

	b, err := s.pipeline.ScoreAdhoc(r.Context(), &req.AlertSnapshot, req.Signals)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleWebhook ingests one raw alert payload for a tenant and scores it.
//
// @Summary Ingest a webhook alert
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param integration path string true "Source system (splunk, qradar, fortinet, paloalto, or custom)"
// @Param name query string false "Tenant display name"
// @Param payload body object true "Raw vendor payload"
// @Success 201 {object} WebhookResponse
// @Failure 400 {object} ErrorResponse
// @Router /webhooks/{tenant}/{integration} [post]
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	integration := chi.URLParam(r, "integration")
	tenantName := r.URL.Query().Get("name")

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	alert, breakdown, err := s.pipeline.IngestAndScore(r.Context(), tenant, tenantName, integration, raw)
	if err != nil {
		s.logger.Warn("ingesting webhook alert",
			interfaces.Field{Key: "tenant", Value: tenant},
			interfaces.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, WebhookResponse{Alert: alert, Score: breakdown})
}

// Alerts

// handleListAlerts lists a tenant's alerts, newest first.
//
// @Summary List tenant alerts
// @Produce json
// @Param tenant path string true "Tenant ID"
// @Param limit query int false "Maximum alerts to return (default 100)"
// @Success 200 {array} model.Alert
// @Router /tenants/{tenant}/alerts [get]
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	alerts, err := s.pipeline.Store().ListAlerts(r.Context(), tenant, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if alerts == nil {
		alerts = []*model.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

// handleGetAlert returns one alert by id.
//
// @Summary Get an alert
// @Produce json
// @Param alertID path string true "Alert ID"
// @Success 200 {object} model.Alert
// @Failure 404 {object} ErrorResponse
// @Router /alerts/{alertID} [get]
func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	a, err := s.pipeline.Store().GetAlert(r.Context(), chi.URLParam(r, "alertID"))
	if errors.Is(err, store.ErrAlertNotFound) {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleGetScore returns the latest score breakdown for an alert.
//
// @Summary Get an alert's score breakdown
// @Produce json
// @Param alertID path string true "Alert ID"
// @Success 200 {object} model.ScoreBreakdown
// @Failure 404 {object} ErrorResponse
// @Router /alerts/{alertID}/score [get]
func (s *Server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	b, err := s.pipeline.Store().GetScore(r.Context(), chi.URLParam(r, "alertID"))
	if errors.Is(err, store.ErrScoreNotFound) {
		writeError(w, http.StatusNotFound, "score not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Jobs

// handleStartRescoreJob starts a background job over the unscored backlog.
//
// @Summary Start a rescore job
// @Accept json
// @Produce json
// @Param request body StartRescoreJobRequest false "Job options"
// @Success 202 {object} app.Job
// @Failure 400 {object} ErrorResponse
// @Router /jobs/rescore [post]
func (s *Server) handleStartRescoreJob(w http.ResponseWriter, r *http.Request) {
	var body StartRescoreJobRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	job, err := s.pipeline.StartRescoreJob(r.Context(), body.Limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("started rescore job", interfaces.Field{Key: "job_id", Value: job.ID}, interfaces.Field{Key: "total", Value: job.Total})
	writeJSON(w, http.StatusAccepted, job)
}

// handleListJobs lists all known jobs, newest first.
//
// @Summary List jobs
// @Produce json
// @Success 200 {array} app.Job
// @Router /jobs [get]
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.ListJobs())
}

// handleGetJob returns one job by id.
//
// @Summary Get a job
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} app.Job
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.pipeline.GetJob(chi.URLParam(r, "jobID"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelJob requests cancellation of a running job.
//
// @Summary Cancel a job
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 202 {object} CancelJobResponse
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [delete]
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if !s.pipeline.CancelJob(jobID) {
		writeError(w, http.StatusNotFound, "job not found or already finished")
		return
	}
	writeJSON(w, http.StatusAccepted, CancelJobResponse{Status: "canceling"})
}

// Operational

// handleHealthz reports liveness and the active scoring version.
//
// @Summary Health check
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		ScoringVersion: s.pipeline.ScorerVersion(),
	})
}
