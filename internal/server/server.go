// Package server exposes the estimator as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bornholm/fieldwork/internal/engine"
	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/refdata"
	"github.com/bornholm/fieldwork/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ShutdownTimeout bounds the graceful shutdown of the HTTP server
const ShutdownTimeout = 10 * time.Second

// Server serves the HTTP API
type Server struct {
	catalog *refdata.Catalog
	history store.HistoryStore
	config  *model.Config
	router  chi.Router
}

// Options contains options for the HTTP server
type Options struct {
	Config  *model.Config
	Catalog *refdata.Catalog
	// History is optional, history routes answer 503 when it is nil
	History store.HistoryStore
	// AllowedOrigins configures CORS, all origins are allowed when empty
	AllowedOrigins []string
}

// New creates a new HTTP server
func New(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = refdata.NewCatalog(nil)
	}

	s := &Server{
		catalog: catalog,
		history: opts.History,
		config:  cfg,
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/estimate", s.handleEstimate(false))
		r.Post("/estimate/quick", s.handleEstimate(true))
		r.Post("/cpi", s.handleCPI)
		r.Post("/compare", s.handleCompare)

		r.Get("/timing", s.handleTiming)
		r.Get("/timing/check", s.handleTimingCheck)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleListHistory)
			r.Post("/", s.handleSaveHistory)
			r.Delete("/{id}", s.handleDeleteHistory)
		})

		r.Get("/reference", s.handleReference)
		r.Post("/reference/invalidate", s.handleInvalidateReference)
	})

	s.router = r

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on the given port until the context is cancelled
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("server shutdown failed", zap.Error(err))
		}
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server listen")
	}

	return nil
}

func (s *Server) engine(ctx context.Context) *engine.Engine {
	return engine.Load(ctx, s.catalog)
}
