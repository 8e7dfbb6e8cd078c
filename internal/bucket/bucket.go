// Package bucket reads and writes the task lists stored under bucket keys.
//
// A Set loads each bucket at most once, lets callers compute new contents in
// memory, and on Flush writes only the buckets whose encoding changed. This is
// the single place where task lists touch the store.
package bucket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/steveyegge/taskdeck/internal/events"
	"github.com/steveyegge/taskdeck/internal/storage"
	"github.com/steveyegge/taskdeck/internal/types"
)

type state struct {
	raw     []byte // as loaded; nil when the key was absent
	present bool
	tasks   []types.Task
	dropped bool
	dirty   bool
}

// Set is a working copy of the buckets touched by one operation
type Set struct {
	store storage.Store
	log   zerolog.Logger
	bus   *events.Bus

	buckets map[string]*state
	order   []string
}

// NewSet starts an empty working copy over store
func NewSet(store storage.Store, log zerolog.Logger, bus *events.Bus) *Set {
	return &Set{
		store:   store,
		log:     log,
		bus:     bus,
		buckets: map[string]*state{},
	}
}

// Load reads a bucket directly. Absent or malformed buckets read as empty.
func Load(ctx context.Context, store storage.Store, log zerolog.Logger, bus *events.Bus, key string) ([]types.Task, error) {
	return NewSet(store, log, bus).Get(ctx, key)
}

// Get returns the current contents of key. The returned slice is a copy.
func (s *Set) Get(ctx context.Context, key string) ([]types.Task, error) {
	st, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return cloneAll(st.tasks), nil
}

// Exists reports whether key is stored (or will be after Flush)
func (s *Set) Exists(ctx context.Context, key string) (bool, error) {
	st, err := s.load(ctx, key)
	if err != nil {
		return false, err
	}
	if st.dirty {
		return !st.dropped, nil
	}
	return st.present, nil
}

// Put replaces the contents of key
func (s *Set) Put(ctx context.Context, key string, tasks []types.Task) error {
	st, err := s.load(ctx, key)
	if err != nil {
		return err
	}
	st.tasks = cloneAll(tasks)
	st.dropped = false
	st.dirty = true
	return nil
}

// Drop removes key from the store on Flush
func (s *Set) Drop(ctx context.Context, key string) error {
	st, err := s.load(ctx, key)
	if err != nil {
		return err
	}
	st.tasks = []types.Task{}
	st.dropped = true
	st.dirty = true
	return nil
}

// Upsert replaces any task titled task.Title in key and appends task at the end
func (s *Set) Upsert(ctx context.Context, key string, task types.Task) error {
	tasks, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	tasks, _ = Without(tasks, task.Title)
	return s.Put(ctx, key, append(tasks, task))
}

// RemoveTitle removes any task titled title from key. Absent keys stay absent.
func (s *Set) RemoveTitle(ctx context.Context, key, title string) (bool, error) {
	st, err := s.load(ctx, key)
	if err != nil {
		return false, err
	}
	tasks, removed := Without(st.tasks, title)
	if !removed {
		return false, nil
	}
	return true, s.Put(ctx, key, tasks)
}

// Find returns the task titled title in key
func (s *Set) Find(ctx context.Context, key, title string) (types.Task, bool, error) {
	st, err := s.load(ctx, key)
	if err != nil {
		return types.Task{}, false, err
	}
	for _, t := range st.tasks {
		if t.Title == title {
			return t.Clone(), true, nil
		}
	}
	return types.Task{}, false, nil
}

// Flush persists changed buckets and returns the keys written or removed
func (s *Set) Flush(ctx context.Context) ([]string, error) {
	var changed []string
	for _, key := range s.order {
		st := s.buckets[key]
		if !st.dirty {
			continue
		}

		if st.dropped {
			if !st.present {
				continue
			}
			if err := s.store.Remove(ctx, key); err != nil {
				return changed, fmt.Errorf("failed to remove bucket %q: %w", key, err)
			}
			st.present, st.raw = false, nil
			changed = append(changed, key)
			continue
		}

		raw, err := encode(st.tasks)
		if err != nil {
			return changed, fmt.Errorf("failed to encode bucket %q: %w", key, err)
		}
		if st.present && bytes.Equal(raw, st.raw) {
			continue
		}
		if err := s.store.Set(ctx, key, raw); err != nil {
			return changed, fmt.Errorf("failed to write bucket %q: %w", key, err)
		}
		st.present, st.raw = true, raw
		changed = append(changed, key)
	}

	for _, key := range changed {
		s.buckets[key].dirty = false
	}
	if len(changed) > 0 {
		s.log.Debug().Strs("buckets", changed).Msg("buckets written")
	}
	return changed, nil
}

func (s *Set) load(ctx context.Context, key string) (*state, error) {
	if st, ok := s.buckets[key]; ok {
		return st, nil
	}

	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read bucket %q: %w", key, err)
	}

	// raw holds the canonical encoding so Flush can skip unchanged buckets
	// regardless of how the backend formats stored JSON
	st := &state{present: ok, tasks: []types.Task{}}
	if ok {
		tasks, err := decode(raw)
		if err != nil {
			err = fmt.Errorf("%w: bucket %q: %v", storage.ErrMalformed, key, err)
			s.log.Warn().Err(err).Str("key", key).Msg("treating malformed bucket as empty")
			s.bus.Publish(events.NewMalformedStateEvent(key, err))
		} else {
			st.tasks = tasks
			if st.raw, err = encode(tasks); err != nil {
				st.raw = nil
			}
		}
	}

	s.buckets[key] = st
	s.order = append(s.order, key)
	return st, nil
}

// Without returns tasks minus any titled title, and whether one was removed
func Without(tasks []types.Task, title string) ([]types.Task, bool) {
	out := make([]types.Task, 0, len(tasks))
	removed := false
	for _, t := range tasks {
		if t.Title == title {
			removed = true
			continue
		}
		out = append(out, t)
	}
	return out, removed
}

// Filter returns the tasks for which keep is true
func Filter(tasks []types.Task, keep func(types.Task) bool) []types.Task {
	out := make([]types.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func decode(raw []byte) ([]types.Task, error) {
	var tasks []types.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		// JSON null
		return nil, errors.New("bucket is null")
	}
	for i := range tasks {
		tasks[i].Normalize()
	}
	return tasks, nil
}

func encode(tasks []types.Task) ([]byte, error) {
	out := make([]types.Task, len(tasks))
	for i, t := range tasks {
		t = t.Clone()
		t.Normalize()
		out[i] = t
	}
	return json.Marshal(out)
}

func cloneAll(tasks []types.Task) []types.Task {
	out := make([]types.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
