// Package server exposes token lookups over HTTP and interactive lookup
// sessions over WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tokenScope/internal/analytics"
	"tokenScope/internal/lifecycle"
)

const defaultShutdownTimeout = 5 * time.Second

// Option configures Server.
type Option func(*Server)

// WithLogger sets the server and session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAnalytics sets the sink shared by every lookup the server runs.
func WithAnalytics(sink analytics.Sink) Option {
	return func(s *Server) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithShutdownTimeout bounds how long Serve waits for requests and sessions to drain.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// Server serves the HTTP API. A Server is meant to be run once.
type Server struct {
	fetcher         lifecycle.Fetcher
	sink            analytics.Sink
	logger          *zap.Logger
	shutdownTimeout time.Duration
	upgrader        websocket.Upgrader

	closing   chan struct{}
	closeOnce sync.Once
	sessions  sync.WaitGroup
}

// New returns a Server that looks tokens up through fetcher.
func New(fetcher lifecycle.Fetcher, opts ...Option) *Server {
	s := &Server{
		fetcher:         fetcher,
		sink:            analytics.Nop{},
		logger:          zap.NewNop(),
		shutdownTimeout: defaultShutdownTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		closing: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/v1/tokens/{address}/risk", s.handleRisk)
	mux.HandleFunc("GET /api/v1/session", s.handleSession)
	return mux
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully:
// plain requests are drained and open sessions are closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.closeSessions)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("server started", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		s.closeSessions()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.waitSessions(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) closeSessions() {
	s.closeOnce.Do(func() { close(s.closing) })
}

func (s *Server) waitSessions(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("sessions still open after shutdown timeout")
	}
}

func (s *Server) newController(opts ...lifecycle.Option) *lifecycle.Controller {
	base := []lifecycle.Option{
		lifecycle.WithLogger(s.logger),
		lifecycle.WithAnalytics(s.sink),
	}
	return lifecycle.New(s.fetcher, append(base, opts...)...)
}
