package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/rkc/internal/testutil"
)

// createTestStore creates a new store in a temp dir with deterministic ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDGenerator("term")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
