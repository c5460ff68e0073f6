package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/mailroom/pkg/logger"
)

const defaultShutdownTimeout = 30 * time.Second

// Hook runs at server start or stop.
type Hook func(context.Context) error

// Server runs the HTTP listener with startup and shutdown hooks.
type Server struct {
	handler  http.Handler
	logger   *slog.Logger
	startup  []Hook
	shutdown []Hook
	cfg      Config
}

// ServerOption configures a Server.
type ServerOption func(*Server)

func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStartupHook runs fn before the listener accepts connections.
func WithStartupHook(fn Hook) ServerOption {
	return func(s *Server) {
		s.startup = append(s.startup, fn)
	}
}

// WithShutdownHook runs fn after the listener stopped, in registration order.
func WithShutdownHook(fn Hook) ServerOption {
	return func(s *Server) {
		s.shutdown = append(s.shutdown, fn)
	}
}

// NewServer creates a server for handler.
func NewServer(handler http.Handler, cfg Config, opts ...ServerOption) *Server {
	s := &Server{handler: handler, cfg: cfg, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves until ctx is canceled, then shuts down gracefully within
// Config.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	for _, hook := range s.startup {
		if err := hook(ctx); err != nil {
			_ = ln.Close()
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var errs []error
	select {
	case err := <-errCh:
		if err != nil {
			errs = append(errs, err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range s.shutdown {
		if err := hook(shutdownCtx); err != nil {
			s.logger.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.logger.Info("shutdown completed")
	return nil
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.cfg.ShutdownTimeout > 0 {
		return s.cfg.ShutdownTimeout
	}
	return defaultShutdownTimeout
}
