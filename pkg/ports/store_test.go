package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/ports"
)

// MockStore is a minimal map-backed ContextStore used to check the contract itself.
type MockStore struct {
	data map[domain.ContextKey]*domain.ContextEntry
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[domain.ContextKey]*domain.ContextEntry)}
}

func (m *MockStore) Save(ctx context.Context, entry *domain.ContextEntry) error {
	m.data[entry.Context] = entry.Clone()
	return nil
}

func (m *MockStore) Load(ctx context.Context, key domain.ContextKey) (*domain.ContextEntry, error) {
	entry, ok := m.data[key]
	if !ok {
		return nil, domain.ErrContextNotFound
	}
	return entry.Clone(), nil
}

func (m *MockStore) List(ctx context.Context) ([]domain.ContextKey, error) {
	keys := make([]domain.ContextKey, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *MockStore) Clear(ctx context.Context) error {
	m.data = make(map[domain.ContextKey]*domain.ContextEntry)
	return nil
}

func TestContextStore_Contract(t *testing.T) {
	ports.RunContextStoreContract(t, NewMockStore())
}
