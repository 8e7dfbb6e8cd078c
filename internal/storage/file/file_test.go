package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/taskdeck/internal/storage/file"
	"github.com/steveyegge/taskdeck/internal/storage/storagetest"
)

func TestFileStorageContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storagetest.Store {
		s, err := file.New(filepath.Join(t.TempDir(), "store.json"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestFileStorageSharedBetweenHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	a, err := file.New(path)
	require.NoError(t, err)
	defer a.Close()
	b, err := file.New(path)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Set(ctx, "Work", []byte(`[{"title":"T"}]`)))

	v, ok, err := b.Get(ctx, "Work")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"title":"T"}]`, string(v))
}

func TestFileStorageRejectsInvalidJSON(t *testing.T) {
	s, err := file.New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Set(context.Background(), "Work", []byte(`{not json`)))
}

func TestFileStorageCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	s, err := file.New(path)
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.Get(context.Background(), "All")
	assert.Error(t, err)
}
