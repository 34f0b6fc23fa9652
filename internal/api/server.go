package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/habitcanvas/timerd/internal/preset"
	"github.com/habitcanvas/timerd/internal/store"
	"github.com/habitcanvas/timerd/internal/timer"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 30 * time.Second
)

// Server wraps the chi router and application dependencies.
type Server struct {
	router  *chi.Mux
	store   store.Store
	presets *preset.Registry
	timers  *timer.Manager
	logger  *slog.Logger
	loc     *time.Location
	addr    string
}

// NewServer creates and configures a new HTTP server. loc decides the
// calendar days reported by the stats endpoint.
func NewServer(addr string, s store.Store, presets *preset.Registry, timers *timer.Manager, loc *time.Location, logger *slog.Logger) *Server {
	if loc == nil {
		loc = time.Local
	}
	srv := &Server{
		router:  chi.NewRouter(),
		store:   s,
		presets: presets,
		timers:  timers,
		logger:  logger,
		loc:     loc,
		addr:    addr,
	}

	srv.router.Use(middleware.RequestID)
	srv.router.Use(middleware.Recoverer)
	srv.router.Use(srv.loggingMiddleware)
	srv.router.Use(metricsMiddleware)
	srv.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	srv.routes()

	return srv
}

// routes registers all HTTP routes on the router.
func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", metricsHandler())

	s.router.Get("/v1/presets", s.handleListPresets)
	s.router.Get("/v1/stats", s.handleGetStats)
	s.router.Get("/v1/sessions", s.handleListSessions)

	s.router.Route("/v1/timers", func(r chi.Router) {
		r.Post("/", s.handleCreateTimer)
		r.Get("/", s.handleListTimers)
		r.Get("/{id}", s.handleGetTimer)
		r.Delete("/{id}", s.handleDeleteTimer)
		r.Post("/{id}/commands", s.handleSendCommand)
		r.Post("/{id}/start", s.handleStartTimer)
		r.Get("/{id}/events", s.handleStreamEvents)
	})
}

// Router returns the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Run serves HTTP on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, l)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", l.Addr().String())
		if err := httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down", "reason", context.Cause(ctx).Error())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// loggingMiddleware logs each request using the structured logger.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
