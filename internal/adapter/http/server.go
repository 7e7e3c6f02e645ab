package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/city-climate-stats/internal/domain"
)

// Server exposes health, readiness, metrics and the generated tables.
type Server struct {
	httpServer *http.Server
	outputDir  string
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, /cities
// and /tables routes. Tables are served read-only from outputDir.
func NewServer(addr, outputDir string, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		outputDir: outputDir,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /cities", handleCities)
	mux.HandleFunc("GET /tables", s.handleTables)
	mux.HandleFunc("GET /tables/{name}", s.handleTable)

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

func handleCities(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, domain.Cities())
}

func (s *Server) handleTables(w http.ResponseWriter, _ *http.Request) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil && !os.IsNotExist(err) {
		s.logger.Error("list tables", "dir", s.outputDir, "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "cannot list tables"})
		return
	}

	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	sharedobs.WriteJSON(w, http.StatusOK, map[string][]string{"tables": names})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".csv") {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table name"})
		return
	}
	path := filepath.Join(s.outputDir, name)
	if _, err := os.Stat(path); err != nil {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	http.ServeFile(w, r, path)
}
