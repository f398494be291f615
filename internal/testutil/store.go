package testutil

import (
	"path/filepath"
	"testing"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/storage"
)

// NewSQLiteStore returns an in-memory sqlite store closed with the test.
func NewSQLiteStore(t *testing.T) *storage.SQLStore {
	t.Helper()
	s, err := storage.NewSQLiteStorage(":memory:", internal.NewNopLogger())
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// NewFileStore returns a file store rooted in a temp dir, closed with the test.
func NewFileStore(t *testing.T) *storage.FileStorage {
	t.Helper()
	s, err := storage.NewFileStorage(filepath.Join(t.TempDir(), "data.json"), internal.NewNopLogger())
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Backends returns every embedded backend, keyed by name.
func Backends(t *testing.T) map[string]storage.Store {
	t.Helper()
	return map[string]storage.Store{
		"file":   NewFileStore(t),
		"sqlite": NewSQLiteStore(t),
	}
}
