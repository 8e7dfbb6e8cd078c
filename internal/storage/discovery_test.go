package storage

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDiscoverDatabaseInDir_CurrentDirOnly verifies that discoverDatabaseInDir
// only checks the specified directory and does NOT walk up the tree.
func TestDiscoverDatabaseInDir_CurrentDirOnly(t *testing.T) {
	tmpRoot := t.TempDir()
	parentDir := filepath.Join(tmpRoot, "parent")
	childDir := filepath.Join(parentDir, "child")

	parentDataDir := filepath.Join(parentDir, DataDir)
	if err := os.MkdirAll(parentDataDir, 0755); err != nil {
		t.Fatalf("failed to create parent data dir: %v", err)
	}
	parentDB := filepath.Join(parentDataDir, "parent.db")
	if err := os.WriteFile(parentDB, []byte(""), 0644); err != nil {
		t.Fatalf("failed to create parent database: %v", err)
	}
	if err := os.MkdirAll(childDir, 0755); err != nil {
		t.Fatalf("failed to create child dir: %v", err)
	}

	if _, err := discoverDatabaseInDir(childDir); err == nil {
		t.Error("Expected error when no database in current dir, but got success")
	}

	dbPath, err := discoverDatabaseInDir(parentDir)
	if err != nil {
		t.Errorf("Expected to find database in parent dir, got error: %v", err)
	}
	if dbPath != parentDB {
		t.Errorf("Expected database path %s, got %s", parentDB, dbPath)
	}
}

func TestDiscoverDatabase_EnvOverride(t *testing.T) {
	t.Setenv(EnvDBPath, ":memory:")
	path, err := DiscoverDatabase()
	if err != nil {
		t.Fatalf("DiscoverDatabase with %s=:memory: failed: %v", EnvDBPath, err)
	}
	if path != ":memory:" {
		t.Errorf("Expected :memory:, got %s", path)
	}

	t.Setenv(EnvDBPath, "/tmp/test.db")
	path, err = DiscoverDatabase()
	if err != nil {
		t.Fatalf("DiscoverDatabase failed: %v", err)
	}
	if path != "/tmp/test.db" {
		t.Errorf("Expected /tmp/test.db, got %s", path)
	}
}

func TestInitProject(t *testing.T) {
	dir := t.TempDir()

	dbPath, err := InitProject(dir, "")
	if err != nil {
		t.Fatalf("InitProject failed: %v", err)
	}
	if want := filepath.Join(dir, DataDir, "taskdeck.db"); dbPath != want {
		t.Errorf("dbPath = %s, want %s", dbPath, want)
	}

	// A second init must refuse to clobber an existing database
	if err := os.WriteFile(dbPath, []byte(""), 0644); err != nil {
		t.Fatalf("failed to create database file: %v", err)
	}
	if _, err := InitProject(dir, ""); err == nil {
		t.Error("Expected error for existing database, got nil")
	}

	if _, err := InitProject(filepath.Join(dir, "missing"), "x"); err == nil {
		t.Error("Expected error for missing project directory")
	}
}
