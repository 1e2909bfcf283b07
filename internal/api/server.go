// Package api serves the catalog, the prompt builder, the interpreter and
// live simulation runs over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alexanderramin/mirrorer/internal/catalog"
	"github.com/alexanderramin/mirrorer/internal/service"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

type Server struct {
	router *chi.Mux
	addr   string
	users  catalog.Provider
	sims   service.SimulationService
	logger *slog.Logger
}

func NewServer(addr string, users catalog.Provider, sims service.SimulationService, logger *slog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		addr:   addr,
		users:  users,
		sims:   sims,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/domains", s.domains)
		r.Get("/users", s.listUsers)
		r.Get("/users/{id}", s.getUser)
		r.Get("/users/{id}/prompt", s.getPrompt)
		r.Post("/users/{id}/simulate", s.simulate)
		r.Post("/interpret", s.interpret)
	})

	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is done, then shuts down gracefully. Open
// simulation streams are cancelled with their request contexts.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
