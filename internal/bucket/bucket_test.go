package bucket

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/taskdeck/internal/events"
	"github.com/steveyegge/taskdeck/internal/storage/memory"
	"github.com/steveyegge/taskdeck/internal/types"
)

// countingStore records how many writes reach the backend
type countingStore struct {
	*memory.MemoryStorage
	sets, removes int
}

func (c *countingStore) Set(ctx context.Context, key string, value []byte) error {
	c.sets++
	return c.MemoryStorage.Set(ctx, key, value)
}

func (c *countingStore) Remove(ctx context.Context, key string) error {
	c.removes++
	return c.MemoryStorage.Remove(ctx, key)
}

func task(title, category string) types.Task {
	return types.Task{Title: title, Date: "2026-10-20", OriginalCategory: category}
}

func TestUpsertReplacesAndAppends(t *testing.T) {
	ctx := context.Background()
	set := NewSet(memory.New(), zerolog.Nop(), nil)

	require.NoError(t, set.Upsert(ctx, "Work", task("A", "Work")))
	require.NoError(t, set.Upsert(ctx, "Work", task("B", "Work")))
	updated := task("A", "Work")
	updated.Description = "second"
	require.NoError(t, set.Upsert(ctx, "Work", updated))

	got, err := set.Get(ctx, "Work")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Title)
	assert.Equal(t, "A", got[1].Title)
	assert.Equal(t, "second", got[1].Description)
}

func TestFlushWritesOnlyChangedBuckets(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStorage: memory.New()}

	set := NewSet(store, zerolog.Nop(), nil)
	require.NoError(t, set.Upsert(ctx, "All", task("A", "Work")))
	require.NoError(t, set.Upsert(ctx, "Work", task("A", "Work")))
	changed, err := set.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"All", "Work"}, changed)
	assert.Equal(t, 2, store.sets)

	// Rewriting identical contents is not a change
	set = NewSet(store, zerolog.Nop(), nil)
	require.NoError(t, set.Upsert(ctx, "All", task("A", "Work")))
	_, err = set.RemoveTitle(ctx, "Upcoming", "A")
	require.NoError(t, err)
	changed, err = set.Flush(ctx)
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Equal(t, 2, store.sets)

	// Upcoming was never stored, so removing from it must not create it
	_, ok, err := store.Get(ctx, "Upcoming")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDropRemovesKey(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStorage: memory.New()}
	require.NoError(t, store.MemoryStorage.Set(ctx, "Work", []byte(`[]`)))

	set := NewSet(store, zerolog.Nop(), nil)
	require.NoError(t, set.Drop(ctx, "Work"))
	require.NoError(t, set.Drop(ctx, "Never"))

	exists, err := set.Exists(ctx, "Work")
	require.NoError(t, err)
	assert.False(t, exists)

	changed, err := set.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Work"}, changed)
	assert.Equal(t, 1, store.removes)
}

func TestMalformedBucketReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, "Work", []byte(`{"title":"not a list"}`)))
	require.NoError(t, store.Set(ctx, "Home", []byte(`null`)))

	bus := events.NewBus()
	var malformed []string
	bus.Subscribe(func(e *events.Event) {
		malformed = append(malformed, e.Data["key"].(string))
	}, events.EventTypeMalformedState)

	for _, key := range []string{"Work", "Home"} {
		got, err := Load(ctx, store, zerolog.Nop(), bus, key)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Equal(t, []string{"Work", "Home"}, malformed)

	// Writing a malformed bucket back replaces it with a valid empty list
	set := NewSet(store, zerolog.Nop(), bus)
	require.NoError(t, set.Put(ctx, "Work", nil))
	_, err := set.Flush(ctx)
	require.NoError(t, err)
	raw, _, err := store.Get(ctx, "Work")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestSubtasksEncodeAsArray(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	set := NewSet(store, zerolog.Nop(), nil)
	require.NoError(t, set.Upsert(ctx, "Work", task("A", "Work")))
	_, err := set.Flush(ctx)
	require.NoError(t, err)

	raw, _, err := store.Get(ctx, "Work")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"subtasks":[]`)
}
