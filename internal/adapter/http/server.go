package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

// computeTimeout bounds one on-demand computation.
const computeTimeout = 30 * time.Second

// ReportSource exposes the latest scheduled report.
type ReportSource interface {
	Latest() (domain.Report, bool)
}

// Server exposes health, readiness, metrics and index HTTP endpoints.
type Server struct {
	httpServer *http.Server
	reports    ReportSource
	calc       domain.Calculator
	defaults   domain.Params
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /v1/report and /v1/aha routes. defaults fills query parameters that an
// on-demand request omits.
func NewServer(addr string, ready sharedobs.ReadinessChecker, reports ReportSource, calc domain.Calculator, defaults domain.Params, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: computeTimeout + 5*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reports:  reports,
		calc:     calc,
		defaults: defaults,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/report", s.handleReport)
	mux.HandleFunc("GET /v1/aha", s.handleCompute)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	report, ok := s.reports.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, domain.ErrNotReady)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r, s.defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), computeTimeout)
	defer cancel()

	report, err := s.calc.Compute(ctx, p)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("on-demand computation failed", "error", err, "params", p.Key())
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// parseParams reads norm, cutoff and window from the query string.
func parseParams(r *http.Request, defaults domain.Params) (domain.Params, error) {
	p := defaults
	q := r.URL.Query()
	if v := q.Get("norm"); v != "" {
		mode, err := domain.ParseNormMode(v)
		if err != nil {
			return p, err
		}
		p.Norm = mode
	}
	if v := q.Get("cutoff"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, fmt.Errorf("%w: cutoff %q is not a number", domain.ErrInvalidArgument, v)
		}
		p.CutoffPercentile = f
	}
	if v := q.Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("%w: window %q is not an integer", domain.ErrInvalidArgument, v)
		}
		p.Window = n
	}
	return p, p.Validate()
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
