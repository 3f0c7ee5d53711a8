package ports

import (
	"context"

	"github.com/aretw0/graphnav/pkg/domain"
)

// ContextStore backs the context cache: at most one entry per context key.
// Entries are never evicted during a session; Clear drops everything at teardown.
type ContextStore interface {
	// Save creates or replaces the entry for entry.Context.
	Save(ctx context.Context, entry *domain.ContextEntry) error

	// Load retrieves the entry for key.
	// Returns domain.ErrContextNotFound if the key was never saved.
	Load(ctx context.Context, key domain.ContextKey) (*domain.ContextEntry, error)

	// List returns every stored key.
	List(ctx context.Context) ([]domain.ContextKey, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error
}
