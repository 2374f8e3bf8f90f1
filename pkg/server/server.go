// Package server exposes content trees and canvas layouts over HTTP.
//
// # Routes
//
//	GET  /healthz                 liveness and build info
//	GET  /api/tree                the full content tree
//	GET  /api/layout              layout for query parameters (see below)
//	POST /api/layout              layout for a JSON body (pipeline.Options)
//	GET  /api/render              layout rendered as svg, dot or graphviz
//	GET  /api/nodes/{id}          one node with its descendant ids
//	GET  /api/nodes/{id}/path     ids from the root to the node
//
// Layout query parameters: expand (repeatable or comma separated), all,
// mobile, vw, vh, edges. Responses carry an X-Cache header (hit or miss).
//
// # Errors
//
// Failures are JSON bodies of the form {"error": {"code": ..., "message": ...}}.
// Invalid input maps to 400, unknown ids to 404 and everything else to 500.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/pipeline"
	"github.com/matzehuels/systemmap/pkg/source"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

// Options configures [New].
type Options struct {
	Runner *pipeline.Runner
	Source source.Source
	Logger *log.Logger

	// AllowedOrigins enables CORS for the listed origins. "*" allows any.
	AllowedOrigins []string
}

// Server serves the HTTP API. It holds no per-request state.
type Server struct {
	runner  *pipeline.Runner
	src     source.Source
	logger  *log.Logger
	origins []string
}

// New returns a server. Runner and Source are required.
func New(opts Options) (*Server, error) {
	if opts.Runner == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "runner is required")
	}
	if opts.Source == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "source is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		runner:  opts.Runner,
		src:     opts.Source,
		logger:  logger,
		origins: opts.AllowedOrigins,
	}, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	if len(s.origins) > 0 {
		r.Use(cors(s.origins))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/tree", s.handleTree)
		r.Get("/layout", s.handleLayoutQuery)
		r.Post("/layout", s.handleLayoutBody)
		r.Get("/render", s.handleRender)
		r.Get("/nodes/{id}", s.handleNode)
		r.Get("/nodes/{id}/path", s.handleNodePath)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errs.New(errs.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: errorDetail{
			Code:    string(errs.ErrCodeInvalidInput),
			Message: "method not allowed",
		}})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "source", s.src.Name())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
