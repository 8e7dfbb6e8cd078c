// Package snapshot exports and imports the whole task state as YAML.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/steveyegge/taskdeck/internal/category"
	"github.com/steveyegge/taskdeck/internal/tasks"
	"github.com/steveyegge/taskdeck/internal/types"
)

// Version is the current snapshot format version
const Version = 1

// Snapshot is a portable copy of every category and task
type Snapshot struct {
	Version    int              `yaml:"version"`
	ExportedAt time.Time        `yaml:"exported_at"`
	Categories []types.Category `yaml:"categories"`
	Tasks      []types.Task     `yaml:"tasks"`
}

// Export collects the real categories with their colors and every task in "All"
func Export(ctx context.Context, registry *category.Registry, repo *tasks.Repository) (*Snapshot, error) {
	names, err := registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	// Only stored colors are exported; a category without one stays uncolored
	colors, err := registry.Colors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read category colors: %w", err)
	}
	all, err := repo.List(ctx, types.BucketAll)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	snap := &Snapshot{
		Version:    Version,
		ExportedAt: time.Now().UTC().Truncate(time.Second),
		Categories: []types.Category{},
		Tasks:      all,
	}
	for _, name := range names {
		if !types.IsProtected(name) {
			snap.Categories = append(snap.Categories, types.Category{Name: name, Color: colors[name]})
		}
	}
	return snap, nil
}

// Import replays snap through the registry and repository, so every bucket
// and category invariant holds afterwards. It returns the number of tasks filed.
func Import(ctx context.Context, registry *category.Registry, repo *tasks.Repository, snap *Snapshot) (int, error) {
	if snap.Version > Version {
		return 0, fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, Version)
	}

	for _, c := range snap.Categories {
		if _, err := registry.Add(ctx, c.Name); err != nil {
			return 0, fmt.Errorf("failed to add category %q: %w", c.Name, err)
		}
		if c.Color != "" && types.IsValidCategoryName(c.Name) {
			if err := registry.SetColor(ctx, c.Name, c.Color); err != nil {
				return 0, err
			}
		}
	}

	n := 0
	for _, t := range snap.Tasks {
		if _, err := repo.Create(ctx, t.OriginalCategory, t); err != nil {
			return n, fmt.Errorf("failed to import task %q: %w", t.Title, err)
		}
		n++
	}
	return n, nil
}

// Write encodes snap as YAML
func Write(w io.Writer, snap *Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return enc.Close()
}

// Read decodes a YAML snapshot
func Read(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version == 0 {
		snap.Version = Version
	}
	return &snap, nil
}
