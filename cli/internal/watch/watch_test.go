package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_RunsCallbackOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "query.sql")
	other := filepath.Join(dir, "other.sql")
	require.NoError(t, os.WriteFile(file, []byte("SELECT 1"), 0o644))

	changed := make(chan string, 4)
	w, err := NewWatcher(func(path string) error {
		changed <- path
		return nil
	}, file)
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(other, []byte("SELECT 3"), 0o644))
	require.NoError(t, os.WriteFile(file, []byte("SELECT 2"), 0o644))

	select {
	case path := <-changed:
		abs, _ := filepath.Abs(file)
		assert.Equal(t, abs, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcher_CallbackErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "query.sql")
	require.NoError(t, os.WriteFile(file, []byte("SELECT 1"), 0o644))

	boom := errors.New("boom")
	errs := make(chan error, 4)
	w, err := NewWatcher(func(string) error { return boom }, file)
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)
	w.OnError(func(err error) { errs <- err })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(file, []byte("SELECT 2"), 0o644))
	select {
	case err := <-errs:
		assert.Same(t, boom, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no error delivered")
	}
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	_, err := NewWatcher(func(string) error { return nil }, filepath.Join(t.TempDir(), "missing", "q.sql"))
	assert.Error(t, err)
}
