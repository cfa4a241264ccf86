package journal

import (
	"sync"
	"time"
)

// MemoryStore keeps entries in memory. Useful in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	err     error
}

// NewMemoryStore creates an in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record appends an entry, or returns the error set by FailWith.
func (m *MemoryStore) Record(op Operation, detail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.entries = append(m.entries, Entry{
		ID:        int64(len(m.entries) + 1),
		Time:      time.Now(),
		Operation: op,
		Detail:    detail,
	})
	return nil
}

// Recent returns the newest entries first.
func (m *MemoryStore) Recent(limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []Entry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(entries) == limit {
			break
		}
		entries = append(entries, m.entries[i])
	}
	return entries, nil
}

// Close does nothing.
func (m *MemoryStore) Close() error {
	return nil
}

// Helper methods for testing

// Operations returns the recorded operations oldest first.
func (m *MemoryStore) Operations() []Operation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ops := make([]Operation, len(m.entries))
	for i, e := range m.entries {
		ops[i] = e.Operation
	}
	return ops
}

// FailWith makes Record return err. A nil err clears it.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}
