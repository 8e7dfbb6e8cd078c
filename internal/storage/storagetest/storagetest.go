// Package storagetest holds the behavior every store backend must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Store mirrors storage.Store so backends can be tested without importing
// the factory package.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Run exercises the store contract against stores produced by newStore.
// Each subtest gets a fresh, empty store.
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		v, ok, err := s.Get(context.Background(), "nope")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("SetGetOverwrite", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Set(ctx, "All", []byte(`[]`)))
		v, ok, err := s.Get(ctx, "All")
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `[]`, string(v))

		require.NoError(t, s.Set(ctx, "All", []byte(`[{"title":"T"}]`)))
		v, ok, err = s.Get(ctx, "All")
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `[{"title":"T"}]`, string(v))
	})

	t.Run("RemoveIsIdempotent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Set(ctx, "Work", []byte(`[]`)))
		require.NoError(t, s.Remove(ctx, "Work"))
		require.NoError(t, s.Remove(ctx, "Work"))

		_, ok, err := s.Get(ctx, "Work")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("KeysKeepInsertionOrder", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for _, k := range []string{"categories", "Work", "All", "Home"} {
			require.NoError(t, s.Set(ctx, k, []byte(`[]`)))
		}
		// Overwriting must not move a key to the end
		require.NoError(t, s.Set(ctx, "Work", []byte(`[{"title":"x"}]`)))
		require.NoError(t, s.Remove(ctx, "All"))

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"categories", "Work", "Home"}, keys)
	})

	t.Run("ValuesAreCopied", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		buf := []byte(`["a"]`)
		require.NoError(t, s.Set(ctx, "categories", buf))
		buf[2] = 'z'

		v, _, err := s.Get(ctx, "categories")
		require.NoError(t, err)
		assert.JSONEq(t, `["a"]`, string(v))
	})
}
