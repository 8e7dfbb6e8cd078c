package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/steveyegge/taskdeck/internal/storage/file"
	"github.com/steveyegge/taskdeck/internal/storage/memory"
	"github.com/steveyegge/taskdeck/internal/storage/postgres"
	"github.com/steveyegge/taskdeck/internal/storage/sqlite"
)

// Store is a synchronous string-keyed store of JSON values.
// Writes to different keys are independent; there is no multi-key transaction.
type Store interface {
	// Get returns the raw JSON stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Keys lists every stored key in first-insertion order
	Keys(ctx context.Context) ([]string, error)

	// Lifecycle
	Close() error
}

// ErrMalformed marks a stored value that is not the expected JSON shape
var ErrMalformed = errors.New("malformed persisted value")

// Backend names
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

// Config holds store configuration
type Config struct {
	// Backend selects the implementation: sqlite, postgres, file or memory
	// Default: "sqlite"
	Backend string

	// Path is the SQLite database file or JSON store file path
	// Default: ".taskdeck/taskdeck.db" (sqlite), ".taskdeck/store.json" (file)
	// Special value ":memory:" creates an in-memory SQLite database (useful for tests)
	Path string

	// Postgres is used when Backend is "postgres"
	Postgres *postgres.Config
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	path := DefaultDBPath
	if p := os.Getenv(EnvDBPath); p != "" {
		path = p
	}
	return &Config{
		Backend: BackendSQLite,
		Path:    path,
	}
}

// NewStorage opens the store selected by cfg
func NewStorage(ctx context.Context, cfg *Config) (Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	switch cfg.Backend {
	case "", BackendSQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultDBPath
		}
		return sqlite.New(path)
	case BackendFile:
		path := cfg.Path
		if path == "" {
			path = DefaultFilePath
		}
		return file.New(path)
	case BackendPostgres:
		return postgres.New(ctx, cfg.Postgres)
	case BackendMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want sqlite, postgres, file or memory)", cfg.Backend)
	}
}

// GetJSON decodes the value under key into v. found is false when the key is
// absent. A value that fails to decode returns an error wrapping ErrMalformed.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) (found bool, err error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("%w: key %q: %v", ErrMalformed, key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}
