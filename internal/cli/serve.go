package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/graphnav/pkg/adapters/http"
)

// ShutdownTimeout bounds the graceful shutdown of Serve.
const ShutdownTimeout = 5 * time.Second

// Serve exposes s over HTTP on ln until ctx is done.
func Serve(ctx context.Context, s *Session, ln net.Listener, metrics bool) error {
	opts := []httpAdapter.Option{httpAdapter.WithLogger(s.Logger)}
	if metrics {
		opts = append(opts, httpAdapter.WithMetrics(s.Registry))
	}
	api := httpAdapter.NewServer(s.Editor, opts...)
	defer api.Close()

	// Request contexts end with ctx so open event streams let Shutdown finish.
	srv := &http.Server{
		Handler:     api.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.Logger.Info("serving", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.Logger.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		s.Logger.Info("server stopped")
		return nil
	}
}

// ListenAndServe is Serve on a new TCP listener at addr.
func ListenAndServe(ctx context.Context, s *Session, addr string, metrics bool) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return Serve(ctx, s, ln, metrics)
}
