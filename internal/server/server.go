// Package server exposes the collectors and the record store over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sjsage522/socialscraper/internal/record"
	"sjsage522/socialscraper/logger"
	"sjsage522/socialscraper/services/store"
)

// Fetcher runs a fetch and records its result
type Fetcher interface {
	FetchTikTok(ctx context.Context, username string) (record.ScrapedRecord, error)
	FetchYouTube(ctx context.Context, url string) (record.ScrapedRecord, error)
}

// Server holds the HTTP handlers
type Server struct {
	fetcher Fetcher
	store   *store.Store
	limiter *RateLimiter
	started time.Time
	now     func() time.Time
	log     *logger.Logger
}

// Option customises a Server
type Option func(*Server)

// WithRateLimiter replaces the default per-client limiter
func WithRateLimiter(l *RateLimiter) Option { return func(s *Server) { s.limiter = l } }

// WithClock replaces the wall clock used for uptime and export names
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// WithLogger replaces the component logger
func WithLogger(l *logger.Logger) Option { return func(s *Server) { s.log = l } }

// New creates a new Server
func New(fetcher Fetcher, st *store.Store, opts ...Option) *Server {
	s := &Server{
		fetcher: fetcher,
		store:   st,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter == nil {
		s.limiter = NewRateLimiter(DefaultRateLimitRequests, DefaultRateLimitWindow)
	}
	if s.log == nil {
		s.log = logger.ForServer()
	}
	s.started = s.now()
	return s
}

// Router builds the route tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors)
	r.Use(s.limiter.Middleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/fetch/tiktok", s.handleFetchTikTok)
		r.Post("/fetch/youtube", s.handleFetchYouTube)

		r.Get("/history", s.handleListHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Get("/history/{id}", s.handleGetHistory)
		r.Delete("/history/{id}", s.handleDeleteHistory)

		r.Get("/export/json", s.handleExportJSON)
		r.Get("/export/csv", s.handleExportCSV)
	})

	return r
}
