package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/taskdeck/internal/category"
	"github.com/steveyegge/taskdeck/internal/events"
	"github.com/steveyegge/taskdeck/internal/storage/memory"
	"github.com/steveyegge/taskdeck/internal/tasks"
	"github.com/steveyegge/taskdeck/internal/types"
)

func newController(t *testing.T) *Controller {
	t.Helper()
	store := memory.New()
	bus := events.NewBus()
	registry := category.New(store, category.WithBus(bus))
	repo := tasks.New(store, registry, tasks.WithBus(bus), tasks.WithClock(func() time.Time {
		return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	}))
	return New(repo, registry, bus)
}

func TestInitialSelection(t *testing.T) {
	c := newController(t)
	assert.Equal(t, "Upcoming", c.Selected())
}

func TestSelectUnknownCategory(t *testing.T) {
	c := newController(t)
	err := c.Select(context.Background(), "Nowhere")
	require.Error(t, err)
	assert.Equal(t, "Upcoming", c.Selected())
}

func TestCreateUnderSelection(t *testing.T) {
	ctx := context.Background()
	c := newController(t)

	// With a synthetic view selected the task names its category
	_, err := c.Create(ctx, types.Task{Title: "T", Date: "2026-10-20", OriginalCategory: "Work"})
	require.NoError(t, err)

	require.NoError(t, c.Select(ctx, "Work"))
	_, err = c.Create(ctx, types.Task{Title: "U", Date: "2026-10-20", OriginalCategory: "Ignored"})
	require.NoError(t, err)

	list, err := c.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Work", list[1].OriginalCategory)

	_, err = c.Create(ctx, types.Task{Title: "V", Date: "2026-10-20"})
	require.NoError(t, err)
	require.NoError(t, c.Select(ctx, "All"))
	_, err = c.Create(ctx, types.Task{Title: "W", Date: "2026-10-20"})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestSaveMovesOutOfSelectedBucket(t *testing.T) {
	ctx := context.Background()
	c := newController(t)
	_, err := c.Create(ctx, types.Task{Title: "T", Date: "2026-10-20", OriginalCategory: "Work"})
	require.NoError(t, err)
	_, err = c.Create(ctx, types.Task{Title: "U", Date: "2026-10-20", OriginalCategory: "Work"})
	require.NoError(t, err)

	require.NoError(t, c.Select(ctx, "Work"))
	task, ok, err := c.Find(ctx, "T")
	require.NoError(t, err)
	require.True(t, ok)

	task.OriginalCategory = "Home"
	_, err = c.Save(ctx, task)
	require.NoError(t, err)

	list, err := c.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "U", list[0].Title)
	assert.Equal(t, "Work", c.Selected())
}

func TestSaveFromAllRefilesTask(t *testing.T) {
	ctx := context.Background()
	c := newController(t)
	_, err := c.Create(ctx, types.Task{Title: "T", Date: "2026-10-20", OriginalCategory: "Work"})
	require.NoError(t, err)

	require.NoError(t, c.Select(ctx, "All"))
	task, ok, err := c.Find(ctx, "T")
	require.NoError(t, err)
	require.True(t, ok)

	task.OriginalCategory = "Home"
	_, err = c.Save(ctx, task)
	require.NoError(t, err)

	// Work held only T, so it is pruned rather than keeping a stale copy
	assert.Error(t, c.Select(ctx, "Work"))
	require.NoError(t, c.Select(ctx, "Home"))
	list, err := c.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "T", list[0].Title)
}

func TestFallbackWhenSelectedCategoryDeleted(t *testing.T) {
	ctx := context.Background()
	c := newController(t)
	_, err := c.Create(ctx, types.Task{Title: "T", Date: "2026-10-20", OriginalCategory: "Work"})
	require.NoError(t, err)
	require.NoError(t, c.Select(ctx, "Work"))

	deleted, err := c.DeleteCategory(ctx, "Work")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, "Upcoming", c.Selected())
}

func TestFallbackWhenSelectedCategoryPruned(t *testing.T) {
	ctx := context.Background()
	c := newController(t)
	task, err := c.Create(ctx, types.Task{Title: "T", Date: "2026-10-20", OriginalCategory: "Work"})
	require.NoError(t, err)
	require.NoError(t, c.Select(ctx, "Work"))

	require.NoError(t, c.Delete(ctx, task))
	assert.Equal(t, "Upcoming", c.Selected())
}

func TestOtherCategoryEventsKeepSelection(t *testing.T) {
	ctx := context.Background()
	c := newController(t)
	_, err := c.Create(ctx, types.Task{Title: "T", Date: "2026-10-20", OriginalCategory: "Work"})
	require.NoError(t, err)
	added, err := c.AddCategory(ctx, "Home")
	require.NoError(t, err)
	assert.True(t, added)
	require.NoError(t, c.Select(ctx, "Work"))

	_, err = c.DeleteCategory(ctx, "Home")
	require.NoError(t, err)
	assert.Equal(t, "Work", c.Selected())

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, "Work", cats[2].Name)
}
