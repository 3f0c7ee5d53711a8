package ports

import (
	"context"
	"testing"

	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunContextStoreContract runs a suite of tests to verify that a ContextStore
// implementation adheres to the interface contract.
func RunContextStoreContract(t *testing.T, store ContextStore) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		entry := &domain.ContextEntry{
			Context:    "r/1.0",
			OutputNode: domain.NodeHandle{ID: "2.0", Type: "Circle"},
			Snapshot:   domain.Snapshot(`{"nodes":[1,2,3]}`),
		}
		require.NoError(t, store.Save(ctx, entry))

		loaded, err := store.Load(ctx, "r/1.0")
		require.NoError(t, err)
		assert.Equal(t, entry.Context, loaded.Context)
		assert.Equal(t, entry.OutputNode, loaded.OutputNode)
		assert.Equal(t, []byte(entry.Snapshot), []byte(loaded.Snapshot), "snapshot must round-trip byte for byte")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "r/never")
		assert.ErrorIs(t, err, domain.ErrContextNotFound)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.ContextEntry{Context: "r", Snapshot: domain.Snapshot("a")}))
		require.NoError(t, store.Save(ctx, &domain.ContextEntry{Context: "r", Snapshot: domain.Snapshot("b")}))

		loaded, err := store.Load(ctx, "r")
		require.NoError(t, err)
		assert.Equal(t, "b", string(loaded.Snapshot))
		assert.True(t, loaded.OutputNode.IsZero())
	})

	t.Run("Isolation", func(t *testing.T) {
		entry := &domain.ContextEntry{Context: "r/iso", Snapshot: domain.Snapshot("abc")}
		require.NoError(t, store.Save(ctx, entry))
		entry.Snapshot[0] = 'x'

		loaded, err := store.Load(ctx, "r/iso")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(loaded.Snapshot))

		loaded.Snapshot[0] = 'y'
		again, err := store.Load(ctx, "r/iso")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(again.Snapshot))
	})

	t.Run("Empty Snapshot", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewContextEntry("r/empty")))

		loaded, err := store.Load(ctx, "r/empty")
		require.NoError(t, err)
		assert.Empty(t, loaded.Snapshot)
	})

	t.Run("List and Clear", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewContextEntry("r/a")))
		require.NoError(t, store.Save(ctx, domain.NewContextEntry("r/b")))

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, domain.ContextKey("r/a"))
		assert.Contains(t, keys, domain.ContextKey("r/b"))

		require.NoError(t, store.Clear(ctx))
		keys, err = store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)

		_, err = store.Load(ctx, "r/a")
		assert.ErrorIs(t, err, domain.ErrContextNotFound)
	})
}
