// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the portal as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/activity"
	"github.com/pdiddy/research-portal/internal/auth"
	"github.com/pdiddy/research-portal/internal/collab"
	"github.com/pdiddy/research-portal/internal/cv"
	"github.com/pdiddy/research-portal/internal/research"
	"github.com/pdiddy/research-portal/internal/stats"
	"github.com/pdiddy/research-portal/pkg/types"
)

const readHeaderTimeout = 5 * time.Second

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the domain services behind the API.
type Services struct {
	Auth     *auth.Service
	Research *research.Service
	Activity *activity.Service
	Collab   *collab.Service
	CV       *cv.Service
	Stats    *stats.Service
	Health   Pinger
}

// Server serves the API.
type Server struct {
	cfg     types.PortalConfig
	svc     Services
	logger  *zap.Logger
	handler http.Handler
}

// New builds a Server and its handler chain.
func New(cfg types.PortalConfig, svc Services, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, svc: svc, logger: logger}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = s.wrap(mux)
	return s
}

// wrap applies the middleware chain. Request logging sits outside panic
// recovery so a recovered request still gets its log line.
func (s *Server) wrap(h http.Handler) http.Handler {
	return chain(h,
		s.logRequests(),
		s.recoverPanic(),
		s.cors(),
		s.authenticate(),
	)
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))

	select {
	case <-ctx.Done():
		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("http server shutting down", zap.Duration("timeout", timeout))
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		<-serveErr
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	}
}

func (s *Server) cors() middleware {
	origins := s.cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: !wildcard,
		MaxAge:           600,
	})
	return c.Handler
}
