package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sharawey74/PhishSniffer/internal/classifier"
	"github.com/Sharawey74/PhishSniffer/internal/config"
	"github.com/Sharawey74/PhishSniffer/internal/database"
	"github.com/Sharawey74/PhishSniffer/internal/heuristic"
)

// apiVersion is reported by the health and root endpoints.
const apiVersion = "2.0.0"

// apiService is the service name reported by the health endpoint.
const apiService = "PhishSniffer API"

// Server is the REST API server. It wraps the analysis pipeline behind
// HTTP handlers and owns no analysis logic of its own.
//
// Design decision: The server holds a single shared Predictor rather
// than creating one per request because threshold updates via the API
// must affect subsequent analyses. The heuristic analyzer and database
// handle are shared for the same reason; both are safe for concurrent
// use.
type Server struct {
	cfg       *config.Config
	predictor *classifier.Predictor
	analyzer  *heuristic.Analyzer
	db        *database.AnalysisDB
	logger    *slog.Logger
}

// New creates a REST API server. db may be nil, in which case analyses
// are not persisted.
func New(cfg *config.Config, predictor *classifier.Predictor, db *database.AnalysisDB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:       cfg,
		predictor: predictor,
		analyzer:  heuristic.NewAnalyzer(),
		db:        db,
		logger:    logger,
	}
}

// Handler returns the HTTP handler with all API routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api", s.handleRoot)
	mux.HandleFunc("POST /api/v1/analyze/text", s.handleAnalyzeText)
	mux.HandleFunc("POST /api/v1/analyze/file", s.handleAnalyzeFile)
	mux.HandleFunc("GET /api/v1/models/info", s.handleModelInfo)
	mux.HandleFunc("GET /api/v1/models/available", s.handleModelsAvailable)
	mux.HandleFunc("PUT /api/v1/models/threshold", s.handleThreshold)
	mux.HandleFunc("POST /api/v1/urls/analyze", s.handleAnalyzeURLs)

	// Everything else is a JSON 404 rather than the default text page.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, "Not Found",
			"The requested resource was not found")
	})

	return s.logRequests(mux)
}

// ListenAndServe runs the API server until ctx is cancelled, then shuts
// down gracefully, waiting up to the configured timeout for in-flight
// requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ServeAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "addr", s.cfg.ServeAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down api server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}

// logRequests wraps a handler with structured request logging.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed", time.Since(start),
		)
	})
}
