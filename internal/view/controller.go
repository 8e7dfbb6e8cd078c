// Package view tracks the selected category and relays edits to the
// repository on its behalf.
package view

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/steveyegge/taskdeck/internal/category"
	"github.com/steveyegge/taskdeck/internal/events"
	"github.com/steveyegge/taskdeck/internal/tasks"
	"github.com/steveyegge/taskdeck/internal/types"
)

// DefaultSelection is selected at start and whenever the selected category disappears
const DefaultSelection = types.BucketUpcoming

// Controller holds view state for one front end
type Controller struct {
	repo     *tasks.Repository
	registry *category.Registry

	mu       sync.Mutex
	selected string
}

// New creates a controller with "Upcoming" selected. When bus is non-nil the
// controller falls back to "Upcoming" as soon as the selected category is
// deleted or pruned.
func New(repo *tasks.Repository, registry *category.Registry, bus *events.Bus) *Controller {
	c := &Controller{
		repo:     repo,
		registry: registry,
		selected: DefaultSelection,
	}
	bus.Subscribe(c.onCategoryGone, events.EventTypeCategoryDeleted, events.EventTypeCategoryPruned)
	return c
}

func (c *Controller) onCategoryGone(e *events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.Category == c.selected {
		c.selected = DefaultSelection
	}
}

// Selected returns the selected category
func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Select changes the selected category. The name must be in the category list.
func (c *Controller) Select(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	ok, err := c.registry.Contains(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("unknown category %q", name)
	}

	c.mu.Lock()
	c.selected = name
	c.mu.Unlock()
	return nil
}

// Tasks returns the bucket of the selected category
func (c *Controller) Tasks(ctx context.Context) ([]types.Task, error) {
	return c.repo.List(ctx, c.Selected())
}

// Find returns the task titled title in the selected bucket
func (c *Controller) Find(ctx context.Context, title string) (types.Task, bool, error) {
	list, err := c.Tasks(ctx)
	if err != nil {
		return types.Task{}, false, err
	}
	for _, t := range list {
		if t.Title == title {
			return t, true, nil
		}
	}
	return types.Task{}, false, nil
}

// Categories returns the category list with colors
func (c *Controller) Categories(ctx context.Context) ([]types.Category, error) {
	return c.registry.Categories(ctx)
}

// Create files task under the selected category. With "All" or "Upcoming"
// selected, task.OriginalCategory must name the target category.
func (c *Controller) Create(ctx context.Context, task types.Task) (types.Task, error) {
	target := c.Selected()
	if types.IsProtected(target) {
		target = task.OriginalCategory
	}
	return c.repo.Create(ctx, target, task)
}

// Save writes an edited task, treating the selected category as the bucket
// it was edited from
func (c *Controller) Save(ctx context.Context, task types.Task) (types.Task, error) {
	return c.repo.Update(ctx, c.Selected(), task)
}

// Delete removes task everywhere
func (c *Controller) Delete(ctx context.Context, task types.Task) error {
	return c.repo.Delete(ctx, task)
}

// AddCategory creates an empty category
func (c *Controller) AddCategory(ctx context.Context, name string) (bool, error) {
	return c.registry.Add(ctx, name)
}

// DeleteCategory removes a category and its tasks
func (c *Controller) DeleteCategory(ctx context.Context, name string) (bool, error) {
	return c.registry.Delete(ctx, name)
}
