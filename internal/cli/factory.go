// Package cli wires configuration, storage and front ends into runnable
// graphnav commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/graphnav"
	"github.com/aretw0/graphnav/internal/config"
	"github.com/aretw0/graphnav/internal/logging"
	"github.com/aretw0/graphnav/pkg/adapters/memory"
	"github.com/aretw0/graphnav/pkg/adapters/redis"
	"github.com/aretw0/graphnav/pkg/bus"
	"github.com/aretw0/graphnav/pkg/ports"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Session is an editor together with the resources it was built on.
type Session struct {
	ID       string
	Editor   *graphnav.Editor
	Registry *prometheus.Registry
	Logger   *slog.Logger

	closers []io.Closer
}

// Close tears the editor down and releases the store.
func (s *Session) Close(ctx context.Context) error {
	err := s.Editor.Close(ctx)
	for _, c := range s.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// NewLogger builds the process logger from the configured level. Debug
// forces the debug level.
func NewLogger(cfg config.Config, debug bool) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	return logging.New(level), nil
}

// OpenSession builds the reference engine, the configured context store and
// an editor over them. Each session gets its own ID, which also namespaces
// its keys in a shared Redis.
func OpenSession(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	id := uuid.NewString()
	logger = logger.With("session", id)

	engineOpts := []memory.EngineOption{memory.WithEngineLogger(logger)}
	if len(cfg.Catalog) > 0 {
		engineOpts = append(engineOpts, memory.WithCatalog(cfg.Catalog...))
	}
	engine, err := memory.NewEngine(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	s := &Session{ID: id, Registry: prometheus.NewRegistry(), Logger: logger}

	opts := []graphnav.Option{
		graphnav.WithLogger(logger),
		graphnav.WithMetrics(bus.NewMetrics(s.Registry)),
	}
	store, err := openStore(ctx, cfg.Store, id, logger)
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts = append(opts, graphnav.WithStore(store))
		s.closers = append(s.closers, store)
	}

	ed, err := graphnav.New(ctx, engine, opts...)
	if err != nil {
		for _, c := range s.closers {
			_ = c.Close()
		}
		return nil, fmt.Errorf("error initializing editor: %w", err)
	}
	s.Editor = ed
	return s, nil
}

type closableStore interface {
	ports.ContextStore
	io.Closer
}

// openStore returns nil for the in-memory backend, which the editor builds itself.
func openStore(ctx context.Context, cfg config.StoreConfig, sessionID string, logger *slog.Logger) (closableStore, error) {
	if cfg.Backend != config.BackendRedis {
		return nil, nil
	}
	store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		redis.WithPrefix(cfg.Redis.Prefix+sessionID+":"),
		redis.WithTTL(cfg.Redis.TTL),
	)
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Redis.Addr, err)
	}
	logger.Debug("context cache in redis", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	return store, nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return f != nil && termIsTerminal(int(f.Fd()))
}
