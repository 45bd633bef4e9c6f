// Package server exposes the BI engine over HTTP. Handlers are thin glue:
// refresh snapshots, run analytics, hand numbers to the agent, shape JSON.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/meridianbi/boardpulse/agent"
	"github.com/meridianbi/boardpulse/boardapi"
	"github.com/meridianbi/boardpulse/observability"
	"github.com/meridianbi/boardpulse/snapshot"
)

// Server wires the cache, the agent and telemetry behind the HTTP API.
type Server struct {
	cache   *snapshot.Cache
	agent   *agent.Agent
	events  *observability.Recorder // nil disables event telemetry
	metrics *observability.Metrics  // nil disables metric telemetry
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithTelemetry attaches the telemetry recorder and metrics writer.
func WithTelemetry(events *observability.Recorder, metrics *observability.Metrics) Option {
	return func(s *Server) {
		s.events = events
		s.metrics = metrics
	}
}

// New builds the server.
func New(cache *snapshot.Cache, ag *agent.Agent, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cache: cache, agent: ag, logger: logger, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes assembles the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(limitBody)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Post("/chat", s.handleChat)
	r.Post("/adhoc", s.handleAdhoc)
	r.Post("/leadership-update", s.handleLeadershipUpdate)
	r.Get("/dashboard-data", s.handleDashboardData)
	r.Post("/refresh-cache", s.handleRefreshCache)
	return r
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "http request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeUpstreamError maps engine errors to HTTP statuses. A source failure
// becomes an operational 502, never a stack trace.
func (s *Server) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var unavailable *boardapi.SourceUnavailableError
	if errors.As(err, &unavailable) {
		s.logger.ErrorContext(r.Context(), "board source unavailable",
			"board", unavailable.BoardID, "page", unavailable.Page,
			"partial_items", len(unavailable.Fetched), "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": "the board data source is currently unavailable, please retry shortly",
			"board": unavailable.BoardID,
		})
		return
	}
	s.logger.ErrorContext(r.Context(), "request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal error",
	})
}

// record emits one telemetry event when telemetry is attached.
func (s *Server) record(event observability.Event) {
	if s.events != nil {
		s.events.Record(event)
	}
}

func (s *Server) observe(name string, value float64, unit string) {
	if s.metrics != nil {
		s.metrics.Observe(name, value, unit)
	}
}
