// Package category owns the category list and the name -> color map.
package category

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/steveyegge/taskdeck/internal/bucket"
	"github.com/steveyegge/taskdeck/internal/events"
	"github.com/steveyegge/taskdeck/internal/storage"
	"github.com/steveyegge/taskdeck/internal/types"
)

// ColorSource returns three bytes used as the red, green and blue channels
type ColorSource func() [3]byte

// RandomColor draws each channel independently from crypto/rand
func RandomColor() [3]byte {
	var b [3]byte
	rand.Read(b[:]) // never fails since Go 1.24
	return b
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ErrInvalidColor is returned for colors not written as #rrggbb
var ErrInvalidColor = errors.New("invalid color")

// FormatColor renders channels as #rrggbb
func FormatColor(b [3]byte) string {
	return fmt.Sprintf("#%02x%02x%02x", b[0], b[1], b[2])
}

// Registry mediates category creation, deletion and reconciliation
type Registry struct {
	store  storage.Store
	bus    *events.Bus
	log    zerolog.Logger
	colors ColorSource
}

// Option configures a Registry
type Option func(*Registry)

// WithColorSource replaces the random color generator
func WithColorSource(src ColorSource) Option {
	return func(r *Registry) { r.colors = src }
}

// WithBus publishes lifecycle events to bus
func WithBus(bus *events.Bus) Option {
	return func(r *Registry) { r.bus = bus }
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// New creates a registry over store
func New(store storage.Store, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		log:    zerolog.Nop(),
		colors: RandomColor,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With().Str("component", "category").Logger()
	return r
}

// List returns "Upcoming", "All", then the persisted real categories in
// insertion order, de-duplicated and without "Expired".
func (r *Registry) List(ctx context.Context) ([]string, error) {
	var saved []string
	if _, err := storage.GetJSON(ctx, r.store, types.KeyCategories, &saved); err != nil {
		if !errors.Is(err, storage.ErrMalformed) {
			return nil, err
		}
		r.malformed(types.KeyCategories, err)
		saved = nil
	}
	return normalize(saved), nil
}

// Contains reports whether name is in the category list
func (r *Registry) Contains(ctx context.Context, name string) (bool, error) {
	list, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	return contains(list, name), nil
}

// Add appends name to the category list and gives it a color if it has none.
// Empty, reserved, legacy or already-present names are a no-op (false, nil).
func (r *Registry) Add(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if !types.IsValidCategoryName(name) {
		return false, nil
	}

	list, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	if contains(list, name) {
		return false, nil
	}

	colors, err := r.loadColors(ctx)
	if err != nil {
		return false, err
	}
	assigned := r.ensureColor(colors, name)

	list = append(list, name)
	if err := storage.SetJSON(ctx, r.store, types.KeyCategories, list); err != nil {
		return false, err
	}
	if assigned {
		if err := storage.SetJSON(ctx, r.store, types.KeyCategoryColors, colors); err != nil {
			return false, err
		}
	}

	r.log.Debug().Str("category", name).Str("color", colors[name]).Msg("category added")
	r.bus.Publish(events.NewCategoryCreatedEvent(name, colors[name]))
	return true, nil
}

// Delete removes a real category together with every task filed under it.
// Protected categories and names that are neither listed nor backed by a
// bucket are a no-op (false, nil).
func (r *Registry) Delete(ctx context.Context, name string) (bool, error) {
	if types.IsProtected(name) || strings.TrimSpace(name) == "" {
		return false, nil
	}

	list, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	if !contains(list, name) {
		_, exists, err := r.store.Get(ctx, name)
		if err != nil {
			return false, fmt.Errorf("failed to read bucket %q: %w", name, err)
		}
		if !exists {
			return false, nil
		}
	}

	set := bucket.NewSet(r.store, r.log, r.bus)
	removed := 0
	for _, key := range []string{types.BucketAll, types.BucketUpcoming} {
		tasks, err := set.Get(ctx, key)
		if err != nil {
			return false, err
		}
		kept := bucket.Filter(tasks, func(t types.Task) bool { return t.OriginalCategory != name })
		if key == types.BucketAll {
			removed = len(tasks) - len(kept)
		}
		if len(kept) != len(tasks) {
			if err := set.Put(ctx, key, kept); err != nil {
				return false, err
			}
		}
	}
	if types.IsValidCategoryName(name) {
		if err := set.Drop(ctx, name); err != nil {
			return false, err
		}
	}
	if _, err := set.Flush(ctx); err != nil {
		return false, err
	}

	if err := storage.SetJSON(ctx, r.store, types.KeyCategories, without(list, name)); err != nil {
		return false, err
	}

	colors, err := r.loadColors(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := colors[name]; ok {
		delete(colors, name)
		if err := storage.SetJSON(ctx, r.store, types.KeyCategoryColors, colors); err != nil {
			return false, err
		}
	}

	r.log.Debug().Str("category", name).Int("tasks_removed", removed).Msg("category deleted")
	r.bus.Publish(events.NewCategoryDeletedEvent(name, events.CategoryDeletedData{TasksRemoved: removed}))
	return true, nil
}

// Reconcile recomputes the category list from bucket occupancy. Categories
// whose bucket is empty or missing are dropped along with their bucket and
// color; surviving categories without a color get one. The persisted list is
// returned.
func (r *Registry) Reconcile(ctx context.Context) ([]string, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := r.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list store keys: %w", err)
	}

	// Known categories keep their order; buckets the list does not know yet follow
	candidates := append([]string{}, list[2:]...)
	for _, key := range keys {
		if types.IsValidCategoryName(key) && !contains(candidates, key) {
			candidates = append(candidates, key)
		}
	}

	colors, err := r.loadColors(ctx)
	if err != nil {
		return nil, err
	}
	colorsChanged := false

	set := bucket.NewSet(r.store, r.log, r.bus)
	result := []string{types.BucketUpcoming, types.BucketAll}
	var pruned []string
	for _, name := range candidates {
		tasks, err := set.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		if len(tasks) > 0 {
			result = append(result, name)
			if r.ensureColor(colors, name) {
				colorsChanged = true
			}
			continue
		}
		if err := set.Drop(ctx, name); err != nil {
			return nil, err
		}
		if _, ok := colors[name]; ok {
			delete(colors, name)
			colorsChanged = true
		}
		pruned = append(pruned, name)
	}

	if _, err := set.Flush(ctx); err != nil {
		return nil, err
	}
	if err := storage.SetJSON(ctx, r.store, types.KeyCategories, result); err != nil {
		return nil, err
	}
	if colorsChanged {
		if err := storage.SetJSON(ctx, r.store, types.KeyCategoryColors, colors); err != nil {
			return nil, err
		}
	}

	for _, name := range pruned {
		r.log.Debug().Str("category", name).Msg("pruned empty category")
		r.bus.Publish(events.NewCategoryPrunedEvent(name))
	}
	return result, nil
}

// Ensure adds name when it is not yet a category; used when a task is filed
// under a new name
func (r *Registry) Ensure(ctx context.Context, name string) error {
	_, err := r.Add(ctx, name)
	return err
}

// Color returns the display color of name
func (r *Registry) Color(ctx context.Context, name string) (string, error) {
	if types.IsProtected(name) {
		return types.ReservedColor, nil
	}
	colors, err := r.loadColors(ctx)
	if err != nil {
		return "", err
	}
	if c, ok := colors[name]; ok && c != "" {
		return c, nil
	}
	return types.FallbackColor, nil
}

// Categories returns the category list with display colors
func (r *Registry) Categories(ctx context.Context) ([]types.Category, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	colors, err := r.loadColors(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]types.Category, 0, len(list))
	for _, name := range list {
		c := types.Category{Name: name, Color: types.ReservedColor}
		if !types.IsProtected(name) {
			c.Color = types.FallbackColor
			if stored := colors[name]; stored != "" {
				c.Color = stored
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// Colors returns a copy of the stored color map
func (r *Registry) Colors(ctx context.Context) (map[string]string, error) {
	return r.loadColors(ctx)
}

// SetColor stores an explicit color for name, used when restoring a snapshot
func (r *Registry) SetColor(ctx context.Context, name, color string) error {
	if !types.IsValidCategoryName(name) {
		return fmt.Errorf("invalid category name %q", name)
	}
	if !colorPattern.MatchString(color) {
		return fmt.Errorf("%w %q for %s: want #rrggbb", ErrInvalidColor, color, name)
	}
	colors, err := r.loadColors(ctx)
	if err != nil {
		return err
	}
	colors[name] = color
	return storage.SetJSON(ctx, r.store, types.KeyCategoryColors, colors)
}

// ensureColor assigns a color to name if it has none and reports whether it did
func (r *Registry) ensureColor(colors map[string]string, name string) bool {
	if colors[name] != "" {
		return false
	}
	colors[name] = FormatColor(r.colors())
	r.bus.Publish(events.New(events.EventTypeCategoryColorAssigned, name, "", fmt.Sprintf("category %q colored %s", name, colors[name])))
	return true
}

func (r *Registry) loadColors(ctx context.Context) (map[string]string, error) {
	colors := map[string]string{}
	if _, err := storage.GetJSON(ctx, r.store, types.KeyCategoryColors, &colors); err != nil {
		if !errors.Is(err, storage.ErrMalformed) {
			return nil, err
		}
		r.malformed(types.KeyCategoryColors, err)
		colors = map[string]string{}
	}
	if colors == nil {
		colors = map[string]string{}
	}
	return colors, nil
}

func (r *Registry) malformed(key string, err error) {
	r.log.Warn().Err(err).Str("key", key).Msg("treating malformed value as empty")
	r.bus.Publish(events.NewMalformedStateEvent(key, err))
}

// normalize builds the canonical list: reserved names first, then saved names
// de-duplicated, skipping anything that is not a valid real category
func normalize(saved []string) []string {
	out := []string{types.BucketUpcoming, types.BucketAll}
	for _, name := range saved {
		if !types.IsValidCategoryName(name) || contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

func without(list []string, name string) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
