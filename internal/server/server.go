// Package server exposes the client core over a small HTTP surface:
// catalog browsing, reading statistics, health, and metrics. It is the
// JSON API the local web UI talks to.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"comicshelf/internal/api"
	"comicshelf/internal/logger"
	"comicshelf/internal/stats"
)

// Server wraps the HTTP listener around a Provider
type Server struct {
	provider api.Provider
	logger   *logger.Logger
	registry *prometheus.Registry
	http     *http.Server
}

// New builds a Server listening on port. registry may be nil to
// disable the /metrics endpoint.
func New(port string, provider api.Provider, registry *prometheus.Registry, log *logger.Logger) *Server {
	s := &Server{
		provider: provider,
		logger:   log,
		registry: registry,
	}
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.HTTPMiddleware)

	r.Get("/healthz", s.handleHealth)
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/comics", s.handleListComics)
		r.Get("/comics/featured", s.handleFeatured)
		r.Get("/comics/latest", s.handleLatest)
		r.Get("/comics/{comicID}", s.handleComic)
		r.Get("/comics/{comicID}/chapters", s.handleChapters)
		r.Get("/genres", s.handleGenres)
		r.Get("/search", s.handleSearch)
		r.Get("/stats", s.handleStats)
	})

	return r
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start blocks serving HTTP until Shutdown or a listener error
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{
		"addr": s.http.Addr,
	})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListComics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := api.ListParams{
		Page:   intQuery(q.Get("page")),
		Limit:  intQuery(q.Get("limit")),
		Sort:   q.Get("sort"),
		Status: q.Get("status"),
	}
	if genres := q.Get("genres"); genres != "" {
		params.Genres = strings.Split(genres, ",")
	}

	page, err := s.provider.ListComics(r.Context(), params)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, page)
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	comics, err := s.provider.FeaturedComics(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]interface{}{"comics": comics})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.provider.LatestComics(r.Context(), intQuery(q.Get("page")), intQuery(q.Get("limit")))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, page)
}

func (s *Server) handleComic(w http.ResponseWriter, r *http.Request) {
	comic, err := s.provider.ComicByID(r.Context(), chi.URLParam(r, "comicID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, comic)
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := s.provider.ComicChapters(r.Context(), chi.URLParam(r, "comicID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]interface{}{"chapters": chapters})
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.provider.Genres(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]interface{}{"genres": genres})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	comics, err := s.provider.SearchComics(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]interface{}{"comics": comics})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	history, err := s.provider.ReadingHistory(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, stats.Summarize(history, time.Now()))
}

func (s *Server) respond(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// respondError maps the provider error taxonomy onto HTTP statuses
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway

	var valErr *api.ValidationError
	var apiErr *api.APIError
	switch {
	case errors.As(err, &valErr):
		status = http.StatusBadRequest
	case errors.Is(err, api.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &apiErr):
		status = apiErr.StatusCode
	}

	s.respond(w, status, map[string]string{"message": err.Error()})
}

func intQuery(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
