package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DataDir is the per-project directory holding the store
const DataDir = ".taskdeck"

// Default store locations, relative to the working directory
var (
	DefaultDBPath   = filepath.Join(DataDir, "taskdeck.db")
	DefaultFilePath = filepath.Join(DataDir, "store.json")
)

// EnvDBPath overrides database discovery when set
const EnvDBPath = "TASKDECK_DB_PATH"

// DiscoverDatabase looks for .taskdeck/*.db in the current directory only.
// Returns the absolute path to the database file, or an error if not found.
//
// TASKDECK_DB_PATH is checked first so tests and scripts can point at an
// explicit path (or ":memory:") without a project directory.
func DiscoverDatabase() (string, error) {
	if dbPath := os.Getenv(EnvDBPath); dbPath != "" {
		return dbPath, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return discoverDatabaseInDir(dir)
}

// discoverDatabaseInDir checks for .taskdeck/*.db in the specified directory only.
// Parent directories are not searched.
func discoverDatabaseInDir(dir string) (string, error) {
	dataDir := filepath.Join(dir, DataDir)

	if info, err := os.Stat(dataDir); err == nil && info.IsDir() {
		entries, err := os.ReadDir(dataDir)
		if err == nil {
			for _, entry := range entries {
				if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".db") {
					absPath, err := filepath.Abs(filepath.Join(dataDir, entry.Name()))
					if err != nil {
						return "", fmt.Errorf("failed to get absolute path: %w", err)
					}
					return absPath, nil
				}
			}
		}
	}

	return "", fmt.Errorf(
		"no %s/*.db found in %s\n"+
			"  Run 'taskdeck init' to create a task store in this directory\n"+
			"  Or use --db flag to specify database path explicitly",
		DataDir, dir)
}

// InitProject creates the .taskdeck/ directory under projectDir and returns
// the database path to use. The database itself is created on first open.
func InitProject(projectDir, name string) (string, error) {
	if _, err := os.Stat(projectDir); os.IsNotExist(err) {
		return "", fmt.Errorf("project directory does not exist: %s", projectDir)
	}

	dataDir := filepath.Join(projectDir, DataDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", DataDir, err)
	}

	dbName := name
	if dbName == "" {
		dbName = "taskdeck"
	}
	if !strings.HasSuffix(dbName, ".db") {
		dbName += ".db"
	}

	dbPath := filepath.Join(dataDir, dbName)
	if _, err := os.Stat(dbPath); err == nil {
		return "", fmt.Errorf("database already exists: %s", dbPath)
	}

	return dbPath, nil
}
