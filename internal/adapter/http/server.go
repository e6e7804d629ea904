package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/hvi-planner/internal/domain"
	"github.com/couchcryptid/hvi-planner/internal/observability"
	"github.com/couchcryptid/hvi-planner/internal/planner"
)

// Planner is the computation behind the API routes.
type Planner interface {
	sharedobs.ReadinessChecker
	GetScored(ctx context.Context, w domain.Weights, s domain.Scenario) domain.FeatureCollection
	Simulate(ctx context.Context, req planner.SimulationRequest) planner.SimulationResult
	Optimize(ctx context.Context, req planner.OptimizationRequest) domain.Plan
}

// Server exposes the planner API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	planner    Planner
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server with /api/data, /api/simulate, /api/optimize,
// /healthz, /readyz, and /metrics routes. allowedOrigins controls CORS; "*"
// allows any origin.
func NewServer(addr string, p Planner, allowedOrigins []string, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      withCORS(allowedOrigins, mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		planner: p,
		logger:  logger,
		metrics: metrics,
	}

	mux.HandleFunc("GET /api/data", s.handleData)
	mux.HandleFunc("POST /api/simulate", s.handleSimulate)
	mux.HandleFunc("POST /api/optimize", s.handleOptimize)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(p))
	mux.Handle("GET /metrics", promhttp.Handler())

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
