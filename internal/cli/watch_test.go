package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatchDatabaseRebuildsOnWrite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "alni.cue")
	data, err := os.ReadFile(alniDatabase)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dbPath, data, 0644))

	builds := make(chan struct{}, 16)
	rebuild := func() error {
		builds <- struct{}{}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchDatabase(ctx, dbPath, rebuild, discardLogger()) }()

	select {
	case <-builds:
	case <-time.After(5 * time.Second):
		t.Fatal("initial build did not run")
	}

	// Unrelated files do not trigger a rebuild.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(dbPath, data, 0644))

	select {
	case <-builds:
	case <-time.After(5 * time.Second):
		t.Fatal("write did not trigger a rebuild")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}
}

func TestWatchDatabaseKeepsWatchingAfterFailure(t *testing.T) {
	dir := t.TempDir()

	calls := make(chan struct{}, 16)
	rebuild := func() error {
		calls <- struct{}{}
		return errors.New("broken database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- watchDatabase(ctx, dir, rebuild, discardLogger()) }()

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("initial build did not run")
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.cue"), []byte("package rkdb\n"), 0644))

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("create did not trigger a rebuild")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestWatchDatabaseMissingPath(t *testing.T) {
	err := watchDatabase(context.Background(), "/nonexistent/alni.cue", func() error { return nil }, discardLogger())
	require.Error(t, err)
}

func TestWatchCommandBuildsUntilDone(t *testing.T) {
	cmd := NewRootCommand()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"watch", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI"})

	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.Contains(t, out.String(), "✓ LIQUID: 2 parameter(s), 3 row(s), 0 symbolic")
}
