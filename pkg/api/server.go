// Package api serves pipeline results over a read-only HTTP API.
//
// The [Server] holds the latest [pipeline.Result] and answers every GET from
// it; POST /api/v1/snapshots recomputes from the graph [Source] and
// optionally exports the snapshot file. Routes:
//
//	GET  /api/v1/health
//	GET  /api/v1/gate
//	GET  /api/v1/gate/{id}           (id may contain slashes, e.g. owner/name)
//	GET  /api/v1/scores/criticality
//	GET  /api/v1/scores/concentration
//	GET  /api/v1/maintenance-debt
//	GET  /api/v1/keystone-contributors
//	GET  /api/v1/funding-efficiency
//	GET  /api/v1/snapshots/latest
//	POST /api/v1/snapshots
//	GET  /api/v1/render?format=svg&detailed=true&ecosystem=npm
//	GET  /metrics
//
// Errors are JSON bodies of the form {"error": "...", "code": "NOT_FOUND"}
// with the HTTP status derived from the [pgerrors.Code].
package api

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pgatlas/pgatlas/pkg/config"
	pgerrors "github.com/pgatlas/pgatlas/pkg/errors"
	"github.com/pgatlas/pgatlas/pkg/graph"
	"github.com/pgatlas/pgatlas/pkg/observability"
	"github.com/pgatlas/pgatlas/pkg/pipeline"
	"github.com/pgatlas/pgatlas/pkg/snapshot"
)

// Source supplies the graph a recomputation runs over.
type Source func(ctx context.Context) (*graph.Graph, error)

// Options configures a [Server].
type Options struct {
	Config config.Config

	// SnapshotDir receives snapshot files written by POST /api/v1/snapshots.
	// Empty disables export.
	SnapshotDir string

	// Metrics serves /metrics when set.
	Metrics *observability.Metrics

	// Timeout bounds each request. Zero means one minute.
	Timeout time.Duration

	Logger *log.Logger
}

// Server answers API requests from the latest pipeline result.
type Server struct {
	runner *pipeline.Runner
	source Source
	opts   Options
	logger *log.Logger

	mu     sync.RWMutex
	result *pipeline.Result

	// refreshMu serializes recomputations.
	refreshMu sync.Mutex
}

// New creates a server. It holds no result until [Server.Refresh] succeeds.
func New(runner *pipeline.Runner, source Source, opts Options) *Server {
	if opts.Timeout == 0 {
		opts.Timeout = time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{runner: runner, source: source, opts: opts, logger: logger}
}

// Refresh recomputes the pipeline from the source and swaps in the result.
// round labels the snapshot. On failure the previous result stays in place.
func (s *Server) Refresh(ctx context.Context, round string) (*pipeline.Result, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	g, err := s.source(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.runner.Execute(ctx, g, pipeline.Options{
		Config: s.opts.Config,
		Round:  round,
		Logger: s.logger,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.result = res
	s.mu.Unlock()
	s.logger.Info("refreshed results", "snapshot", res.Snapshot.ID, "gate", len(res.Gate))
	return res, nil
}

// Set installs an already computed result.
func (s *Server) Set(res *pipeline.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = res
}

// Result returns the current result, or a NOT_READY error before the first
// successful refresh.
func (s *Server) Result() (*pipeline.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil, pgerrors.New(pgerrors.ErrCodeNotReady, "no pipeline result yet")
	}
	return s.result, nil
}

// export writes the snapshot to the configured directory.
func (s *Server) export(snap *snapshot.Snapshot) (string, error) {
	if s.opts.SnapshotDir == "" {
		return "", nil
	}
	return snapshot.WriteFile(s.opts.SnapshotDir, snap)
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.Timeout))
	r.Use(s.observe)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/gate", s.handleGateList)
		r.Get("/gate/*", s.handleGate)
		r.Get("/scores/criticality", s.handleCriticality)
		r.Get("/scores/concentration", s.handleConcentration)
		r.Get("/maintenance-debt", s.handleDebt)
		r.Get("/keystone-contributors", s.handleKeystone)
		r.Get("/funding-efficiency", s.handleFunding)
		r.Get("/snapshots/latest", s.handleLatestSnapshot)
		r.Post("/snapshots", s.handleCreateSnapshot)
		r.Get("/render", s.handleRender)
	})
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}
	return r
}

// observe reports each request to the HTTP hooks and the logger.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
