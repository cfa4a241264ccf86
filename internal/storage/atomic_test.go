package storage_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SegFaultAndEC/password-manager/internal/events"
	"github.com/SegFaultAndEC/password-manager/internal/storage"
)

func newTestStore(t *testing.T) (*storage.LocalStore, string) {
	t.Helper()

	tmpDir := t.TempDir()
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	store, err := storage.NewLocalStore(tmpDir, logger)
	require.NoError(t, err)

	return store, tmpDir
}

func TestAtomicWrites(t *testing.T) {
	store, tmpDir := newTestStore(t)

	t.Run("concurrent writes different files", func(t *testing.T) {
		var wg sync.WaitGroup
		errors := make(chan error, 10)

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()

				path := fmt.Sprintf("concurrent-%d.txt", n)
				data := fmt.Sprintf("content-%d", n)

				if err := store.Write(path, []byte(data), 0o600); err != nil {
					errors <- err
				}
			}(i)
		}

		wg.Wait()
		close(errors)

		// Check for errors
		for err := range errors {
			t.Errorf("Write error: %v", err)
		}

		// Verify all files
		for i := 0; i < 10; i++ {
			path := fmt.Sprintf("concurrent-%d.txt", i)
			data, err := store.Read(path)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("content-%d", i), string(data))
		}
	})

	t.Run("overwrite replaces content", func(t *testing.T) {
		require.NoError(t, store.Write("replace.txt", []byte("original"), 0o600))
		require.NoError(t, store.Write("replace.txt", []byte("new content"), 0o600))

		data, err := store.Read("replace.txt")
		require.NoError(t, err)
		assert.Equal(t, "new content", string(data))
	})

	t.Run("file mode is applied", func(t *testing.T) {
		require.NoError(t, store.Write("private.txt", []byte("x"), 0o600))

		info, err := os.Stat(filepath.Join(tmpDir, "private.txt"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("size limit", func(t *testing.T) {
		store.SetMaxFileSize(1024)
		defer store.SetMaxFileSize(64 * 1024 * 1024)

		err := store.Write("large.txt", bytes.Repeat([]byte("b"), 2048), 0o600)
		assert.ErrorIs(t, err, storage.ErrTooLarge)

		exists, _ := store.Exists("large.txt")
		assert.False(t, exists)
	})

	t.Run("write failure cleanup", func(t *testing.T) {
		// A directory where we'll try to write a file
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "blocker", "child"), 0o700))

		err := store.Write("blocker", []byte("data"), 0o600)
		assert.Error(t, err)

		// Check no temp files left behind
		files, err := store.ListDir("")
		require.NoError(t, err)

		for _, file := range files {
			assert.False(t, storage.IsTempFile(file.Path), "Found temp file: %s", file.Path)
		}
	})
}

func TestReadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Read("nope.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.Stat("nope.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting a missing file is fine
	assert.NoError(t, store.Delete("nope.txt"))
}

func TestListDir(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Write("a.txt", []byte("a"), 0o600))
	require.NoError(t, store.Write("sub/b.txt", []byte("bb"), 0o600))

	files, err := store.ListDir("")
	require.NoError(t, err)

	byPath := make(map[string]storage.FileInfo)
	for _, f := range files {
		byPath[f.Path] = f
	}

	require.Contains(t, byPath, "a.txt")
	assert.Equal(t, int64(1), byPath["a.txt"].Size)
	require.Contains(t, byPath, "sub")
	assert.True(t, byPath["sub"].IsDir)

	files, err = store.ListDir("sub")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "sub/b.txt", files[0].Path)

	_, err = store.ListDir("missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIsTempFile(t *testing.T) {
	assert.True(t, storage.IsTempFile("password.txt.tmp.1700000000000000000"))
	assert.True(t, storage.IsTempFile("dir/password.txt.tmp.1"))
	assert.False(t, storage.IsTempFile("20240101_120000"))
	assert.False(t, storage.IsTempFile("password.txt"))
}
