// Package tasks keeps each task consistent across the "All" bucket, the
// "Upcoming" bucket and the bucket of the category it is filed under.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/steveyegge/taskdeck/internal/bucket"
	"github.com/steveyegge/taskdeck/internal/category"
	"github.com/steveyegge/taskdeck/internal/events"
	"github.com/steveyegge/taskdeck/internal/storage"
	"github.com/steveyegge/taskdeck/internal/types"
)

// UpcomingMode controls how updates maintain the "Upcoming" bucket
type UpcomingMode string

const (
	// ModeRecompute adds or removes the task from "Upcoming" on every write
	ModeRecompute UpcomingMode = "recompute"
	// ModeLegacy only ever adds to "Upcoming" on create/update; a task edited
	// into the past stays there until it is deleted
	ModeLegacy UpcomingMode = "legacy"
)

// ParseMode parses an upcoming mode name. Empty means ModeRecompute.
func ParseMode(s string) (UpcomingMode, error) {
	switch UpcomingMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRecompute:
		return ModeRecompute, nil
	case ModeLegacy:
		return ModeLegacy, nil
	default:
		return "", fmt.Errorf("unknown upcoming mode %q (want recompute or legacy)", s)
	}
}

// Repository owns the task buckets
type Repository struct {
	store    storage.Store
	registry *category.Registry
	bus      *events.Bus
	log      zerolog.Logger
	now      func() time.Time
	mode     UpcomingMode
}

// Option configures a Repository
type Option func(*Repository)

// WithClock sets the source of "now" for the today-or-later test
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithMode sets the upcoming maintenance mode
func WithMode(mode UpcomingMode) Option {
	return func(r *Repository) { r.mode = mode }
}

// WithBus publishes task events to bus
func WithBus(bus *events.Bus) Option {
	return func(r *Repository) { r.bus = bus }
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(r *Repository) { r.log = log }
}

// New creates a repository over store. registry must share the same store.
func New(store storage.Store, registry *category.Registry, opts ...Option) *Repository {
	r := &Repository{
		store:    store,
		registry: registry,
		log:      zerolog.Nop(),
		now:      time.Now,
		mode:     ModeRecompute,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With().Str("component", "tasks").Logger()
	return r
}

// Mode returns the configured upcoming mode
func (r *Repository) Mode() UpcomingMode {
	return r.mode
}

// List returns the tasks stored under key, or an empty slice
func (r *Repository) List(ctx context.Context, key string) ([]types.Task, error) {
	return bucket.Load(ctx, r.store, r.log, r.bus, key)
}

// Get looks a task up by title in "All"
func (r *Repository) Get(ctx context.Context, title string) (types.Task, bool, error) {
	return bucket.NewSet(r.store, r.log, r.bus).Find(ctx, types.BucketAll, title)
}

// Create files task under categoryName. A task with the same title is
// replaced wherever it was filed before.
func (r *Repository) Create(ctx context.Context, categoryName string, task types.Task) (types.Task, error) {
	categoryName = strings.TrimSpace(categoryName)
	task = task.Clone()
	task.OriginalCategory = categoryName
	if err := r.validate(&task); err != nil {
		return types.Task{}, err
	}

	set := bucket.NewSet(r.store, r.log, r.bus)
	filed, found, err := set.Find(ctx, types.BucketAll, task.Title)
	if err != nil {
		return types.Task{}, err
	}
	prev, moved, err := r.file(ctx, set, task, filed, found)
	if err != nil {
		return types.Task{}, err
	}
	if err := r.registry.Ensure(ctx, categoryName); err != nil {
		return types.Task{}, err
	}
	if moved {
		if _, err := r.registry.Reconcile(ctx); err != nil {
			return types.Task{}, err
		}
	}

	r.log.Debug().Str("task", task.Title).Str("category", categoryName).Msg("task created")
	r.bus.Publish(events.NewTaskEvent(events.EventTypeTaskCreated, categoryName, task.Title))
	if moved {
		r.bus.Publish(events.NewTaskMovedEvent(task.Title, events.TaskMovedData{From: prev, To: categoryName}))
	}
	return task, nil
}

// Update writes an edited task. previousBucket is the bucket the task was
// being viewed in; the task is removed there before being filed under
// task.OriginalCategory.
func (r *Repository) Update(ctx context.Context, previousBucket string, task types.Task) (types.Task, error) {
	task = task.Clone()
	task.OriginalCategory = strings.TrimSpace(task.OriginalCategory)
	if err := r.validate(&task); err != nil {
		return types.Task{}, err
	}

	set := bucket.NewSet(r.store, r.log, r.bus)
	// Look the filing up before previousBucket is cleared, which may be "All"
	filed, found, err := set.Find(ctx, types.BucketAll, task.Title)
	if err != nil {
		return types.Task{}, err
	}
	if previousBucket != "" {
		if _, err := set.RemoveTitle(ctx, previousBucket, task.Title); err != nil {
			return types.Task{}, err
		}
	}
	prev, moved, err := r.file(ctx, set, task, filed, found)
	if err != nil {
		return types.Task{}, err
	}
	if err := r.registry.Ensure(ctx, task.OriginalCategory); err != nil {
		return types.Task{}, err
	}
	if _, err := r.registry.Reconcile(ctx); err != nil {
		return types.Task{}, err
	}

	r.log.Debug().Str("task", task.Title).Str("category", task.OriginalCategory).Msg("task updated")
	r.bus.Publish(events.NewTaskEvent(events.EventTypeTaskUpdated, task.OriginalCategory, task.Title))
	if moved {
		r.bus.Publish(events.NewTaskMovedEvent(task.Title, events.TaskMovedData{From: prev, To: task.OriginalCategory}))
	}
	return task, nil
}

// Delete removes the task titled task.Title from "All", "Upcoming" and its
// category bucket. Deleting an absent task is a no-op.
func (r *Repository) Delete(ctx context.Context, task types.Task) error {
	set := bucket.NewSet(r.store, r.log, r.bus)

	keys := []string{types.BucketAll, types.BucketUpcoming}
	if types.IsValidCategoryName(task.OriginalCategory) {
		keys = append(keys, task.OriginalCategory)
	}
	// The filed copy knows its category even when the caller's copy does not
	if filed, ok, err := set.Find(ctx, types.BucketAll, task.Title); err != nil {
		return err
	} else if ok && filed.OriginalCategory != task.OriginalCategory && types.IsValidCategoryName(filed.OriginalCategory) {
		keys = append(keys, filed.OriginalCategory)
	}

	removed := false
	for _, key := range keys {
		ok, err := set.RemoveTitle(ctx, key, task.Title)
		if err != nil {
			return err
		}
		removed = removed || ok
	}
	if _, err := set.Flush(ctx); err != nil {
		return err
	}
	if _, err := r.registry.Reconcile(ctx); err != nil {
		return err
	}

	if removed {
		r.log.Debug().Str("task", task.Title).Str("category", task.OriginalCategory).Msg("task deleted")
		r.bus.Publish(events.NewTaskEvent(events.EventTypeTaskDeleted, task.OriginalCategory, task.Title))
	}
	return nil
}

// file upserts task into "All", its category bucket and (when due) "Upcoming",
// removes the copy left in prev's category when it differs, and flushes. prev
// is the filing found in "All" before any edits to set. It returns the category
// the task was previously filed under and whether that differs.
func (r *Repository) file(ctx context.Context, set *bucket.Set, task, prev types.Task, found bool) (string, bool, error) {
	moved := found && prev.OriginalCategory != task.OriginalCategory
	if moved && types.IsValidCategoryName(prev.OriginalCategory) {
		if _, err := set.RemoveTitle(ctx, prev.OriginalCategory, task.Title); err != nil {
			return "", false, err
		}
	}

	if err := set.Upsert(ctx, types.BucketAll, task); err != nil {
		return "", false, err
	}
	if task.IsUpcoming(r.now()) {
		if err := set.Upsert(ctx, types.BucketUpcoming, task); err != nil {
			return "", false, err
		}
	} else if r.mode == ModeRecompute {
		if _, err := set.RemoveTitle(ctx, types.BucketUpcoming, task.Title); err != nil {
			return "", false, err
		}
	}
	if err := set.Upsert(ctx, task.OriginalCategory, task); err != nil {
		return "", false, err
	}

	if _, err := set.Flush(ctx); err != nil {
		return "", false, err
	}
	return prev.OriginalCategory, moved, nil
}

func (r *Repository) validate(task *types.Task) error {
	task.Normalize()
	if err := task.Validate(); err != nil {
		return err
	}
	if !types.IsValidCategoryName(task.OriginalCategory) {
		return fmt.Errorf("%w: %q is not a category a task can be filed under", types.ErrValidation, task.OriginalCategory)
	}
	return nil
}
