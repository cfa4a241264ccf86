package storage_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SegFaultAndEC/password-manager/internal/storage"
)

func TestCreateExclusive(t *testing.T) {
	store, _ := newTestStore(t)

	t.Run("creates new file", func(t *testing.T) {
		require.NoError(t, store.Create("new.txt", []byte("first"), 0o600))

		data, err := store.Read("new.txt")
		require.NoError(t, err)
		assert.Equal(t, "first", string(data))
	})

	t.Run("never overwrites", func(t *testing.T) {
		err := store.Create("new.txt", []byte("second"), 0o600)
		assert.ErrorIs(t, err, storage.ErrExists)

		data, err := store.Read("new.txt")
		require.NoError(t, err)
		assert.Equal(t, "first", string(data))
	})

	t.Run("concurrent creators have one winner", func(t *testing.T) {
		var wg sync.WaitGroup
		results := make(chan error, 8)

		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				results <- store.Create("race.txt", []byte(fmt.Sprintf("writer-%d", n)), 0o600)
			}(i)
		}

		wg.Wait()
		close(results)

		winners := 0
		for err := range results {
			if err == nil {
				winners++
				continue
			}
			assert.ErrorIs(t, err, storage.ErrExists)
		}
		assert.Equal(t, 1, winners)
	})

	t.Run("no temp files remain", func(t *testing.T) {
		files, err := store.ListDir("")
		require.NoError(t, err)

		for _, file := range files {
			assert.False(t, storage.IsTempFile(file.Path), "Found temp file: %s", file.Path)
		}
	})
}

func TestCreateUnique(t *testing.T) {
	stores := map[string]storage.BlobStore{
		"local": func() storage.BlobStore { s, _ := newTestStore(t); return s }(),
		"mock":  storage.NewMockStore(),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			first, err := store.CreateUnique("20240101_120000", []byte("one"), 0o600)
			require.NoError(t, err)
			assert.Equal(t, "20240101_120000", first)

			second, err := store.CreateUnique("20240101_120000", []byte("two"), 0o600)
			require.NoError(t, err)
			assert.Equal(t, "20240101_120000-001", second)

			third, err := store.CreateUnique("20240101_120000", []byte("three"), 0o600)
			require.NoError(t, err)
			assert.Equal(t, "20240101_120000-002", third)

			// Earlier files are untouched
			data, err := store.Read(first)
			require.NoError(t, err)
			assert.Equal(t, "one", string(data))

			data, err = store.Read(second)
			require.NoError(t, err)
			assert.Equal(t, "two", string(data))
		})
	}
}
