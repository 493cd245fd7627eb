package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"kzmarket/listingworker/internal/adapter"
	"kzmarket/listingworker/logger"
)

// Parser runs one fetch-and-extract invocation
type Parser interface {
	ParseURL(ctx context.Context, rawURL string, verifyTLS bool) ([]adapter.ListingRecord, error)
}

// Options configures the API
type Options struct {
	// AppURL is the richer view linked from text summaries
	AppURL string
	// Sites lists the supported site keys
	Sites []string
	// VerifyTLS is used when a request does not set verify_ssl
	VerifyTLS bool
}

// Server is the HTTP API over the scraper
type Server struct {
	httpServer *http.Server
	parser     Parser
	opts       Options
	now        func() time.Time
	log        *logger.Logger
}

// NewServer creates the API server listening on addr
func NewServer(addr string, parser Parser, opts Options) *Server {
	s := &Server{
		parser: parser,
		opts:   opts,
		now:    time.Now,
		log:    logger.ForAPI(),
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(s.log), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/api/parser", func(r chi.Router) {
		r.Get("/scrape", s.handleScrapeQuery)
		r.Post("/scrape", s.handleScrapeBody)
		r.Get("/export.csv", s.handleExport)
		r.Get("/summary", s.handleSummary)
		r.Get("/sites", s.handleSites)
	})

	return r
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.log.Info().Str("address", s.httpServer.Addr).Msg("Starting HTTP API")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info().Msg("Stopping HTTP API")
	return s.httpServer.Shutdown(ctx)
}
