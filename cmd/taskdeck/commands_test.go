package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/taskdeck/internal/storage"
	"github.com/steveyegge/taskdeck/internal/storage/memory"
	"github.com/steveyegge/taskdeck/internal/types"
)

// useTestStore points the command globals at a fresh memory store and
// captures command output
func useTestStore(t *testing.T) *bytes.Buffer {
	t.Helper()
	color.NoColor = true

	originalStore, originalOut := store, out
	originalBus, originalRegistry, originalRepo := bus, registry, repo
	t.Cleanup(func() {
		store, out = originalStore, originalOut
		bus, registry, repo = originalBus, originalRegistry, originalRepo
	})

	require.NoError(t, wire(memory.New(), "recompute"))
	var buf bytes.Buffer
	out = &buf
	return &buf
}

func TestTaskLifecycleCommands(t *testing.T) {
	ctx := context.Background()
	buf := useTestStore(t)

	require.NoError(t, addTask(ctx, "Work", types.Task{Title: "Report", Date: "2999-01-01", Subtasks: []string{"draft"}}))
	assert.Contains(t, buf.String(), `Created task "Report" in Work`)

	buf.Reset()
	require.NoError(t, listTasks(ctx, types.BucketUpcoming))
	assert.Contains(t, buf.String(), "2999-01-01  Report  [Work] (1 subtasks)")

	desc := "quarterly"
	require.NoError(t, editTask(ctx, "Report", nil, &desc))
	task, err := lookupTask(ctx, "Report")
	require.NoError(t, err)
	assert.Equal(t, "quarterly", task.Description)

	require.NoError(t, moveTask(ctx, "Report", "Office"))
	work, err := repo.List(ctx, "Work")
	require.NoError(t, err)
	assert.Empty(t, work)

	buf.Reset()
	require.NoError(t, showTask(ctx, "Report"))
	assert.Contains(t, buf.String(), "Category: Office")
	assert.Contains(t, buf.String(), "1. draft")

	require.NoError(t, deleteTask(ctx, "Report"))
	_, err = lookupTask(ctx, "Report")
	assert.Error(t, err)

	list, err := registry.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Upcoming", "All"}, list)
}

func TestEditRequiresAChange(t *testing.T) {
	ctx := context.Background()
	useTestStore(t)
	require.NoError(t, addTask(ctx, "Work", types.Task{Title: "T", Date: "2999-01-01"}))
	assert.Error(t, editTask(ctx, "T", nil, nil))

	bad := "tomorrow"
	assert.ErrorIs(t, editTask(ctx, "T", &bad, nil), types.ErrValidation)
}

func TestAddTaskValidation(t *testing.T) {
	useTestStore(t)
	err := addTask(context.Background(), "Work", types.Task{Title: "T"})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestSubtaskCommands(t *testing.T) {
	ctx := context.Background()
	useTestStore(t)
	require.NoError(t, addTask(ctx, "Work", types.Task{Title: "T", Date: "2999-01-01"}))

	require.NoError(t, changeSubtasks(ctx, "T", func(task *types.Task) error { return task.AddSubtask("one") }))
	require.NoError(t, changeSubtasks(ctx, "T", func(task *types.Task) error { return task.AddSubtask("two") }))
	require.NoError(t, changeSubtasks(ctx, "T", func(task *types.Task) error { return task.RemoveSubtask(0) }))

	task, err := lookupTask(ctx, "T")
	require.NoError(t, err)
	assert.Equal(t, []string{"two"}, task.Subtasks)

	err = changeSubtasks(ctx, "T", func(task *types.Task) error { return task.EditSubtask(3, "x") })
	assert.ErrorIs(t, err, types.ErrSubtaskIndex)

	i, err := subtaskIndex("2")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	_, err = subtaskIndex("two")
	assert.Error(t, err)
}

func TestCategoryCommands(t *testing.T) {
	ctx := context.Background()
	buf := useTestStore(t)

	require.NoError(t, addCategory(ctx, "Idle"))
	assert.Contains(t, buf.String(), "Created category Idle (#")

	buf.Reset()
	require.NoError(t, addCategory(ctx, "All"))
	assert.Contains(t, buf.String(), "already exists or is reserved")

	require.NoError(t, addTask(ctx, "Work", types.Task{Title: "T", Date: "2999-01-01"}))

	buf.Reset()
	require.NoError(t, listCategories(ctx))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "#FE6D66  Upcoming", lines[0])
	assert.True(t, strings.HasSuffix(lines[3], "  Work"))

	buf.Reset()
	require.NoError(t, reconcileCategories(ctx))
	assert.Contains(t, buf.String(), "1 categories (1 pruned)")

	buf.Reset()
	require.NoError(t, deleteCategory(ctx, "Upcoming"))
	assert.Contains(t, buf.String(), "cannot be deleted")

	buf.Reset()
	require.NoError(t, deleteCategory(ctx, "Work"))
	assert.Contains(t, buf.String(), "Deleted category Work")
	all, err := repo.List(ctx, types.BucketAll)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExportImportCommands(t *testing.T) {
	ctx := context.Background()
	useTestStore(t)
	require.NoError(t, addTask(ctx, "Work", types.Task{Title: "A", Date: "2999-01-01"}))
	require.NoError(t, addTask(ctx, "Home", types.Task{Title: "B", Date: "2000-01-01"}))

	path := filepath.Join(t.TempDir(), "backup.yaml")
	require.NoError(t, exportSnapshot(ctx, path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "title: A")

	buf := useTestStore(t)
	require.NoError(t, importSnapshot(ctx, path))
	assert.Contains(t, buf.String(), "Imported 2 tasks")

	upcoming, err := repo.List(ctx, types.BucketUpcoming)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "A", upcoming[0].Title)
}

func TestInitProject(t *testing.T) {
	dir := t.TempDir()
	path, err := initProject(context.Background(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, storage.DataDir, "taskdeck.db"), path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = initProject(context.Background(), dir, "")
	assert.Error(t, err, "second init must not clobber the database")
}

func TestOpenStoreWithMemoryBackend(t *testing.T) {
	useTestStore(t)
	t.Chdir(t.TempDir())

	originalBackend := backendName
	backendName = "memory"
	t.Cleanup(func() { backendName = originalBackend })

	require.NoError(t, openStore(context.Background()))
	assert.Equal(t, "memory", cfg.Storage.Backend)
	require.NoError(t, addTask(context.Background(), "Work", types.Task{Title: "T", Date: "2999-01-01"}))
}

func TestNeedsStore(t *testing.T) {
	assert.False(t, needsStore(initCmd))
	assert.False(t, needsStore(versionCmd))
	assert.True(t, needsStore(taskListCmd))
	assert.True(t, needsStore(shellCmd))
}

func TestVersion(t *testing.T) {
	buf := useTestStore(t)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "taskdeck dev\n", buf.String())
}
