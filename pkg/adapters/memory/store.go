package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/graphnav/pkg/domain"
)

// Store implements ports.ContextStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[domain.ContextKey]*domain.ContextEntry
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[domain.ContextKey]*domain.ContextEntry),
	}
}

// Save stores a copy of the entry so later mutation by the caller is not visible.
func (s *Store) Save(ctx context.Context, entry *domain.ContextEntry) error {
	copied := entry.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[entry.Context] = copied
	return nil
}

// Load returns a copy of the entry for key.
func (s *Store) Load(ctx context.Context, key domain.ContextKey) (*domain.ContextEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[key]
	if !ok {
		return nil, domain.ErrContextNotFound
	}
	return entry.Clone(), nil
}

// List returns the stored keys in sorted order.
func (s *Store) List(ctx context.Context) ([]domain.ContextKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]domain.ContextKey, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[domain.ContextKey]*domain.ContextEntry)
	return nil
}
