// Package file stores every key in one JSON document on disk, guarded by an
// OS file lock so two processes sharing the file never interleave writes.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// entry keeps keys ordered on disk; a JSON object would lose insertion order
type entry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// FileStorage is a key-value store backed by a single JSON file
type FileStorage struct {
	path string
	flk  *flock.Flock
}

// New prepares the store at path. The file is created on first write.
func New(path string) (*FileStorage, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Lock a sidecar file: the data file itself is replaced by rename on every write
	return &FileStorage{
		path: path,
		flk:  flock.New(path + ".lock"),
	}, nil
}

// Get returns the value stored under key
func (f *FileStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := f.flk.RLock(); err != nil {
		return nil, false, fmt.Errorf("failed to acquire read lock on %s: %w", f.path, err)
	}
	defer func() { _ = f.flk.Unlock() }()

	entries, err := f.load()
	if err != nil {
		return nil, false, err
	}
	for _, e := range entries {
		if e.Key == key {
			return append([]byte(nil), e.Value...), true, nil
		}
	}
	return nil, false, nil
}

// Set stores value under key
func (f *FileStorage) Set(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}
	return f.update(func(entries []entry) []entry {
		for i := range entries {
			if entries[i].Key == key {
				entries[i].Value = append(json.RawMessage(nil), value...)
				return entries
			}
		}
		return append(entries, entry{Key: key, Value: append(json.RawMessage(nil), value...)})
	})
}

// Remove deletes key
func (f *FileStorage) Remove(ctx context.Context, key string) error {
	return f.update(func(entries []entry) []entry {
		out := entries[:0]
		for _, e := range entries {
			if e.Key != key {
				out = append(out, e)
			}
		}
		return out
	})
}

// Keys lists keys in insertion order
func (f *FileStorage) Keys(ctx context.Context) ([]string, error) {
	if err := f.flk.RLock(); err != nil {
		return nil, fmt.Errorf("failed to acquire read lock on %s: %w", f.path, err)
	}
	defer func() { _ = f.flk.Unlock() }()

	entries, err := f.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys, nil
}

// Close releases the lock file handle
func (f *FileStorage) Close() error {
	return f.flk.Close()
}

// update applies fn to the current entries under an exclusive lock and
// writes the result back atomically
func (f *FileStorage) update(fn func([]entry) []entry) error {
	if err := f.flk.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", f.path, err)
	}
	defer func() { _ = f.flk.Unlock() }()

	entries, err := f.load()
	if err != nil {
		return err
	}
	return f.save(fn(entries))
}

// load reads the file; the caller holds the lock. A missing or empty file is an empty store.
func (f *FileStorage) load() ([]entry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return entries, nil
}

// save writes entries through a temp file and rename; the caller holds the lock
func (f *FileStorage) save(entries []entry) error {
	if entries == nil {
		entries = []entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	tmp := f.path + ".tmp"
	defer func() { _ = os.Remove(tmp) }()

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}
