// AngelaMos | 2026
// server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/byzip-v2/byzip-backend-v2/internal/config"
)

type ReadinessSetter interface {
	SetReady(ready bool)
	SetShutdown(shutdown bool)
}

type Config struct {
	ServerConfig  config.ServerConfig
	HealthHandler ReadinessSetter
	Logger        *slog.Logger
	// Middleware wraps every route, including /metrics. chi requires it to
	// be installed before any route is registered.
	Middleware []func(http.Handler) http.Handler
}

type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	health     ReadinessSetter
	logger     *slog.Logger
}

func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(cfg.Middleware...)
	router.Handle("/metrics", promhttp.Handler())

	addr := net.JoinHostPort(cfg.ServerConfig.Host, strconv.Itoa(cfg.ServerConfig.Port))

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadTimeout:       cfg.ServerConfig.ReadTimeout,
			WriteTimeout:      cfg.ServerConfig.WriteTimeout,
			IdleTimeout:       cfg.ServerConfig.IdleTimeout,
			ReadHeaderTimeout: 10 * time.Second,
		},
		router: router,
		health: cfg.HealthHandler,
		logger: cfg.Logger,
	}
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown marks the instance not ready, waits drainDelay so load balancers
// stop routing to it, then drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context, drainDelay time.Duration) error {
	if s.health != nil {
		s.health.SetReady(false)
	}

	if drainDelay > 0 {
		s.logger.Info("draining before shutdown", "delay", drainDelay)
		select {
		case <-time.After(drainDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if s.health != nil {
		s.health.SetShutdown(true)
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}
