// Package redis stores context cache entries in Redis so the cache can live
// outside the editor process.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/graphnav/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "graphnav:ctx:"

// Store implements ports.ContextStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets how long entries outlive a closed store. Entries never expire
// while the store is open. Zero keeps them until Clear.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix, typically one per editor session.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis store on an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) key(k domain.ContextKey) string {
	return s.prefix + "entry:" + string(k)
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save writes the entry and records its key in the index.
func (s *Store) Save(ctx context.Context, entry *domain.ContextEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(entry.Context), data, 0)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Member: string(entry.Context)})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load returns the entry for key, or domain.ErrContextNotFound.
func (s *Store) Load(ctx context.Context, key domain.ContextKey) (*domain.ContextEntry, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrContextNotFound, key)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var entry domain.ContextEntry
	if err := json.Unmarshal(val, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &entry, nil
}

// List returns the keys of stored entries.
func (s *Store) List(ctx context.Context) ([]domain.ContextKey, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	keys := make([]domain.ContextKey, len(members))
	for i, m := range members {
		keys[i] = domain.ContextKey(m)
	}
	return keys, nil
}

// Expire gives every remaining entry and the index the configured TTL.
// It is a no-op without a TTL.
func (s *Store) Expire(ctx context.Context) error {
	if s.ttl <= 0 {
		return nil
	}
	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	pipe := s.client.TxPipeline()
	for _, m := range members {
		pipe.Expire(ctx, s.key(domain.ContextKey(m)), s.ttl)
	}
	pipe.Expire(ctx, s.indexKey(), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to expire entries: %w", err)
	}
	return nil
}

// Clear deletes every entry under the prefix together with the index.
func (s *Store) Clear(ctx context.Context) error {
	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		keys = append(keys, s.key(domain.ContextKey(m)))
	}
	keys = append(keys, s.indexKey())
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear redis: %w", err)
	}
	return nil
}

// Close hands leftover entries their TTL and closes the redis client.
func (s *Store) Close() error {
	err := s.Expire(context.Background())
	if cerr := s.client.Close(); err == nil {
		err = cerr
	}
	return err
}
