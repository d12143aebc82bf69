// Package server exposes the JSON API over chi.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ObaidOIS/TSFSE/internal/config"
	"github.com/ObaidOIS/TSFSE/internal/database"
	"github.com/ObaidOIS/TSFSE/internal/ingest"
	"github.com/ObaidOIS/TSFSE/internal/search"
)

// ArticleStore is the database surface the handlers read from.
type ArticleStore interface {
	ListArticles(ctx context.Context, category string, limit, offset int) ([]*database.Article, error)
	CountArticles(ctx context.Context, category string) (int, error)
	GetArticleByID(ctx context.Context, id string) (*database.Article, error)
	LatestArticles(ctx context.Context, limit int) ([]*database.Article, error)
	RecentArticles(ctx context.Context, since time.Time, limit int) ([]*database.Article, error)
	RecentlyScraped(ctx context.Context, limit int) ([]*database.Article, error)
	GetCategoryByName(ctx context.Context, name string) (*database.Category, error)
	CategoryCounts(ctx context.Context) ([]database.CategoryCount, error)
	Ping(ctx context.Context) error
}

// Searcher runs queries, suggestions and stats.
type Searcher interface {
	Search(ctx context.Context, params search.Params) (*search.Response, error)
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
	Stats(ctx context.Context) (*search.Stats, error)
}

// Ingester exposes scheduler controls.
type Ingester interface {
	State() ingest.State
	Toggle(fetch *bool) ingest.State
	Trigger() error
	History() []ingest.CycleSummary
}

// Server is the HTTP layer.
type Server struct {
	router   *chi.Mux
	store    ArticleStore
	searcher Searcher
	ingester Ingester
	config   *config.Config
	logger   *zap.SugaredLogger
}

// New creates a server with all routes registered.
func New(store ArticleStore, searcher Searcher, ingester Ingester, cfg *config.Config, logger *zap.SugaredLogger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		store:    store,
		searcher: searcher,
		ingester: ingester,
		config:   cfg,
		logger:   logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Post("/search", s.handleSearch)
		r.Get("/search/suggestions", s.handleSuggestions)
		r.Get("/search/stats", s.handleSearchStats)

		r.Get("/categories", s.handleCategories)

		r.Get("/articles", s.handleArticleList)
		r.Get("/articles/latest", s.handleLatestArticles)
		r.Get("/articles/by_category/{name}", s.handleArticlesByCategory)
		r.Get("/articles/{id}", s.handleArticleDetail)

		r.Get("/scraper/status", s.handleScraperStatus)
		r.Post("/scraper/toggle", s.handleScraperToggle)
		r.Post("/scraper/trigger", s.handleScraperTrigger)
		r.Get("/scraper/history", s.handleScraperHistory)
	})

	s.router.Get("/rss.xml", s.handleRSS)
	s.router.Get("/health", s.handleHealth)
}

// Router returns the Chi router
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	s.logger.Infow("starting server", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// handleHealth reports liveness and database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		s.logger.Warnw("health check database ping failed", "error", err)
	}
	writeJSON(w, code, map[string]string{"status": status})
}
