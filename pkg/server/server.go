// Package server exposes trees, layouts and viewing sessions over HTTP.
//
// # Routes
//
//	GET    /healthz
//	POST   /api/v1/trees                         store a tree or ToT response
//	GET    /api/v1/trees/{key}                   read a stored tree
//	POST   /api/v1/layout                        one-shot scene for a posted tree
//	POST   /api/v1/sessions                      open a viewing session
//	GET    /api/v1/sessions/{id}                 session state and scene
//	PATCH  /api/v1/sessions/{id}                 change the depth cutoff
//	DELETE /api/v1/sessions/{id}                 close a session
//	POST   /api/v1/sessions/{id}/toggle          collapse or expand one node
//	POST   /api/v1/sessions/{id}/expand          expand every node
//	POST   /api/v1/sessions/{id}/events          apply raw pointer and wheel events
//	GET    /api/v1/sessions/{id}/render.{format} render the session
//
// Errors are JSON objects {"error": CODE, "message": ...} with the status
// derived from the error code.
//
// # Sessions
//
// Each session's controller is mutated by one request at a time. Live
// controllers are kept in memory so that a drag spanning several event
// batches keeps its anchor; the persisted state in the session store is
// authoritative and a controller is rebuilt whenever the stored state was
// written by someone else.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/thoughttree/pkg/config"
	"github.com/matzehuels/thoughttree/pkg/pipeline"
	"github.com/matzehuels/thoughttree/pkg/session"
	"github.com/matzehuels/thoughttree/pkg/treestore"
)

// Server serves the HTTP API.
type Server struct {
	trees    treestore.Store
	sessions session.Store
	runner   *pipeline.Runner
	logger   *log.Logger
	cfg      config.Config

	live *registry
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets geometry, text, viewport and server limits. Defaults to
// [config.Default].
func WithConfig(cfg config.Config) Option {
	return func(s *Server) { s.cfg = cfg }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRunner sets the pipeline runner used for rendering. Defaults to an
// uncached runner.
func WithRunner(r *pipeline.Runner) Option {
	return func(s *Server) { s.runner = r }
}

// New creates a server over the given stores.
func New(trees treestore.Store, sessions session.Store, opts ...Option) *Server {
	s := &Server{
		trees:    trees,
		sessions: sessions,
		cfg:      config.Default(),
		live:     newRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if n := s.cfg.Server.MaxBodyBytes; n > 0 {
		r.Use(middleware.RequestSize(n))
	}

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/trees", s.handlePutTree)
		r.Get("/trees/{key}", s.handleGetTree)
		r.Post("/layout", s.handleLayout)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Patch("/", s.handleUpdateSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/toggle", s.handleToggle)
			r.Post("/expand", s.handleExpandAll)
			r.Post("/events", s.handleEvents)
			r.Get("/render.{format}", s.handleRender)
		})
	})
	return r
}

// NewHTTPServer wraps the handler with the configured address and sane
// timeouts.
func (s *Server) NewHTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}

// Close releases the stores and the runner's cache.
func (s *Server) Close() error {
	var first error
	for _, c := range []interface{ Close() error }{s.sessions, s.trees, s.runner} {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Sweep expires stale sessions in the store and drops live controllers of
// sessions that no longer exist.
func (s *Server) Sweep(ctx context.Context) error {
	if err := s.sessions.Cleanup(ctx); err != nil {
		return err
	}
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return err
	}
	if n := s.live.retain(ids); n > 0 {
		s.logger.Debug("dropped idle sessions", "count", n)
	}
	return nil
}

// RunSweeper calls Sweep every interval until ctx is done. A non-positive
// interval disables sweeping.
func (s *Server) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.logger.Warn("session sweeper disabled", "interval", interval)
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Warn("session sweep failed", "err", err)
			}
		}
	}
}
