package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/guestgallery/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// Server runs an http.Handler until its context is cancelled.
type Server struct {
	name    string
	address string
	handler http.Handler
	logger  logging.Logger
}

// NewServer wraps handler in a Server listening on address.
func NewServer(name, address string, handler http.Handler, l logging.Logger) *Server {
	return &Server{
		name:    name,
		address: address,
		handler: handler,
		logger:  l.With("module", name),
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
