// Package server exposes recipe flattening over HTTP.
//
// Routes:
//
//	GET  /healthz                      liveness probe
//	GET  /api/version                  build information
//	GET  /api/categories               craftable items by category
//	GET  /api/items/{id}/flow          flow graph JSON
//	GET  /api/items/{id}/flow.{format} rendered diagram (svg, dot, png, pdf)
//	POST /api/flows                    flatten several items at once
//
// Item routes accept the query parameters barrels, detect_cycles and
// validate (booleans). Errors are returned as {"code", "message"} JSON.
// When the catalog contains an ingredient cycle, cycle detection is on for
// every request regardless of detect_cycles.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/recipeflow/pkg/pipeline"
	"github.com/matzehuels/recipeflow/pkg/recipe"
	"github.com/matzehuels/recipeflow/pkg/render"
)

// Catalog is the recipe database served by the API.
// *recipe.Catalog implements it.
type Catalog interface {
	pipeline.Database
	Categories() []recipe.Category
	Len() int
	FindCycle() []string
}

// Config tunes request handling.
type Config struct {
	// Barrels is the liquid-in-barrels default when a request omits it.
	Barrels bool

	// Concurrency bounds the items flattened at once by POST /api/flows.
	Concurrency int

	// MaxBatch bounds the number of items in one POST /api/flows request.
	MaxBatch int

	// AllowedOrigin is sent as Access-Control-Allow-Origin. Empty disables
	// CORS headers.
	AllowedOrigin string
}

const defaultMaxBatch = 500

// Server serves the API for one catalog.
type Server struct {
	runner  *pipeline.Runner
	catalog Catalog
	logger  *log.Logger
	cfg     Config
	started time.Time

	// cyclic forces cycle detection on every walk.
	cyclic bool
}

// New creates a server. A nil logger means log.Default().
func New(runner *pipeline.Runner, catalog Catalog, logger *log.Logger, cfg Config) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = pipeline.DefaultConcurrency
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = defaultMaxBatch
	}
	s := &Server{
		runner:  runner,
		catalog: catalog,
		logger:  logger,
		cfg:     cfg,
		started: time.Now(),
	}
	if cycle := catalog.FindCycle(); cycle != nil {
		s.cyclic = true
		logger.Warn("recipe database has a cycle, cycle detection forced on", "cycle", strings.Join(cycle, " -> "))
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if s.cfg.AllowedOrigin != "" {
		r.Use(cors(s.cfg.AllowedOrigin))
	}

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/categories", s.handleCategories)
		r.Route("/items/{id}", func(r chi.Router) {
			r.Get("/flow", s.handleFlow)
			for _, f := range render.Formats {
				if f != render.FormatJSON {
					r.Get("/flow."+f, s.handleDiagram(f))
				}
			}
		})
		r.Post("/flows", s.handleFlows)
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
