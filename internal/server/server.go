// internal/server/server.go

// Package server exposes the experiment REST API. Routing and JSON plumbing
// stay deliberately thin; the experiment runner and the store do the work.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/promptlab/promptlab/internal/appconfig"
	"github.com/promptlab/promptlab/internal/experiment"
	"github.com/promptlab/promptlab/internal/providers"
	"github.com/promptlab/promptlab/internal/store"
)

const (
	appName    = "promptlab"
	appVersion = "1.0.0"
	// historyLimit caps how many experiments the list endpoint returns.
	historyLimit = 10
)

// ClientFactory builds the provider client for one request's model and
// credentials. Injected so tests can substitute a fake provider.
type ClientFactory func(model string, keys Keys) (providers.Client, error)

// Keys are the per-provider credentials read from request headers.
type Keys struct {
	OpenAI    string
	Anthropic string
	Together  string
}

// Server wires the HTTP mux to the store and the experiment runner.
type Server struct {
	cfg       *appconfig.Config
	store     *store.Store
	runner    *experiment.Runner
	newClient ClientFactory
}

// New constructs a Server around an open store.
func New(cfg *appconfig.Config, st *store.Store, newClient ClientFactory) *Server {
	return &Server{
		cfg:       cfg,
		store:     st,
		runner:    &experiment.Runner{MaxSamples: cfg.MaxSamples()},
		newClient: newClient,
	}
}

// Handler returns the fully routed HTTP handler, CORS included.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleWelcome)
	mux.HandleFunc("POST /api/experiments", s.handleRunExperiment)
	mux.HandleFunc("GET /api/experiments", s.handleListExperiments)
	mux.HandleFunc("GET /api/usage", s.handleUsage)
	mux.HandleFunc("POST /api/export", s.handleExport)
	mux.HandleFunc("DELETE /api/reset", s.handleReset)
	return s.corsMiddleware(mux)
}

// ListenAndServe runs the API server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddress(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("api server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Welcome to %s", appName),
		"version": appVersion,
		"limits": map[string]any{
			"max_samples": s.cfg.MaxSamples(),
		},
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]bool)
	for _, origin := range s.cfg.AllowedOrigins() {
		allowed[origin] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-OpenAI-API-Key, X-Anthropic-API-Key, X-Together-API-Key")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
