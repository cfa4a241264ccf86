package storage

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockStore is an in-memory BlobStore for tests. Individual operations can
// be made to fail per path.
type MockStore struct {
	mu    sync.RWMutex
	files map[string]mockFile

	failWrite  map[string]error
	failRead   map[string]error
	failDelete map[string]error
	failList   error
}

type mockFile struct {
	data    []byte
	modTime time.Time
}

// NewMockStore creates a mock blob store.
func NewMockStore() *MockStore {
	return &MockStore{
		files:      make(map[string]mockFile),
		failWrite:  make(map[string]error),
		failRead:   make(map[string]error),
		failDelete: make(map[string]error),
	}
}

// Write saves data to a file.
func (m *MockStore) Write(p string, data []byte, mode os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failWrite[p]; err != nil {
		return err
	}

	m.put(p, data)
	return nil
}

// Create writes a new file.
func (m *MockStore) Create(p string, data []byte, mode os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failWrite[p]; err != nil {
		return err
	}
	if _, ok := m.files[p]; ok {
		return fmt.Errorf("%w: %s", ErrExists, p)
	}

	m.put(p, data)
	return nil
}

// CreateUnique writes a new file at p or the first free p-NNN.
func (m *MockStore) CreateUnique(p string, data []byte, mode os.FileMode) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failWrite[p]; err != nil {
		return "", err
	}

	for n := 0; n <= MaxUniqueSuffix; n++ {
		candidate := uniqueName(p, n)
		if _, ok := m.files[candidate]; !ok {
			m.put(candidate, data)
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: no free name for %s", ErrExists, p)
}

// Read retrieves file contents.
func (m *MockStore) Read(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failRead[p]; err != nil {
		return nil, err
	}

	if f, ok := m.files[p]; ok {
		result := make([]byte, len(f.data))
		copy(result, f.data)
		return result, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
}

// Delete removes a file.
func (m *MockStore) Delete(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failDelete[p]; err != nil {
		return err
	}

	delete(m.files, p)
	return nil
}

// Exists checks if a file exists.
func (m *MockStore) Exists(p string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.files[p]
	return exists, nil
}

// Stat returns file information.
func (m *MockStore) Stat(p string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if f, ok := m.files[p]; ok {
		return m.info(p, f), nil
	}

	return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, p)
}

// ListDir returns the files directly under dir, sorted by path.
func (m *MockStore) ListDir(dir string) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failList != nil {
		return nil, m.failList
	}

	dir = strings.Trim(dir, "/")

	var files []FileInfo
	for p, f := range m.files {
		if parent := path.Dir(p); parent != dir && !(dir == "" && parent == ".") {
			continue
		}
		files = append(files, m.info(p, f))
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Helper methods for testing

// FailWrite makes writes and creates of p return err. A nil err clears it.
func (m *MockStore) FailWrite(p string, err error) {
	m.setFailure(m.failWrite, p, err)
}

// FailRead makes reads of p return err.
func (m *MockStore) FailRead(p string, err error) {
	m.setFailure(m.failRead, p, err)
}

// FailDelete makes deletes of p return err.
func (m *MockStore) FailDelete(p string, err error) {
	m.setFailure(m.failDelete, p, err)
}

// FailList makes ListDir return err.
func (m *MockStore) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failList = err
}

// FileExists checks if a file exists (helper for tests).
func (m *MockStore) FileExists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.files[p]
	return exists
}

// Paths returns every stored path, sorted.
func (m *MockStore) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (m *MockStore) setFailure(target map[string]error, p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(target, p)
		return
	}
	target[p] = err
}

func (m *MockStore) put(p string, data []byte) {
	stored := make([]byte, len(data))
	copy(stored, data)
	m.files[p] = mockFile{data: stored, modTime: time.Now()}
}

func (m *MockStore) info(p string, f mockFile) FileInfo {
	return FileInfo{
		Path:    p,
		Size:    int64(len(f.data)),
		Mode:    0o600,
		ModTime: f.modTime,
	}
}
