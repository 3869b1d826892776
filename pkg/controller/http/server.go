package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/interfaces"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
)

// Server represents the HTTP server
type Server struct {
	*http.Server
	router chi.Router
}

// NewServer creates a new HTTP server exposing the stored datasets
func NewServer(ctx context.Context, addr string, repo interfaces.Repository) *Server {
	router := chi.NewRouter()
	h := &datasetHandler{repo: repo}

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", handleHealth)

	// API routes
	router.Route("/api/datasets", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/latest", h.latest)
		r.Get("/latest/commits/{commit}", h.latestCommit)
		r.Get("/{runID}", h.get)
		r.Get("/{runID}/csv", h.csv)
		r.Get("/{runID}/commits/{commit}", h.commit)
	})

	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router: router,
	}
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "scantrend",
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}

// writeError writes an error response. Missing datasets map to 404 and
// everything else not classified by the caller to 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = http.StatusInternalServerError
		if errors.Is(err, model.ErrDatasetNotFound) {
			status = http.StatusNotFound
		}
	}
	if status >= http.StatusInternalServerError {
		ctxlog.From(r.Context()).Error("request failed", "error", err, "path", r.URL.Path)
	}

	var message string
	if goErr := goerr.Unwrap(err); goErr != nil {
		message = goErr.Error()
	} else {
		message = err.Error()
	}

	writeJSON(w, r, status, map[string]string{
		"error": message,
	})
}
