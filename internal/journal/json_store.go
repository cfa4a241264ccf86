package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/SegFaultAndEC/password-manager/internal/events"
)

// MaxJSONEntries caps the entries kept by a JSONStore; the oldest are
// dropped first.
const MaxJSONEntries = 1000

// JSONStore implements file-based journal storage.
type JSONStore struct {
	path   string
	logger *events.Logger
	now    func() time.Time

	mu sync.Mutex
}

type journalFile struct {
	SchemaVersion int     `json:"schema_version"`
	NextID        int64   `json:"next_id"`
	Entries       []Entry `json:"entries"`
	Checksum      string  `json:"checksum,omitempty"`
}

// NewJSONStore creates a JSON-based journal store at path.
func NewJSONStore(path string, logger *events.Logger) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	if logger == nil {
		logger = events.NewNopLogger()
	}

	return &JSONStore{
		path:   path,
		logger: logger.WithField("component", "json_journal"),
		now:    time.Now,
	}, nil
}

// Record appends an entry.
func (s *JSONStore) Record(op Operation, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}

	file.NextID++
	file.Entries = append(file.Entries, Entry{
		ID:        file.NextID,
		Time:      s.now(),
		Operation: op,
		Detail:    detail,
	})
	if len(file.Entries) > MaxJSONEntries {
		file.Entries = file.Entries[len(file.Entries)-MaxJSONEntries:]
	}

	return s.save(file)
}

// Recent returns the newest entries first.
func (s *JSONStore) Recent(limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	n := len(file.Entries)
	if limit > 0 && limit < n {
		n = limit
	}

	entries := make([]Entry, 0, n)
	for i := len(file.Entries) - 1; i >= 0 && len(entries) < n; i-- {
		entries = append(entries, file.Entries[i])
	}

	return entries, nil
}

// Close releases resources.
func (s *JSONStore) Close() error {
	return nil
}

// Helper methods

func (s *JSONStore) load() (*journalFile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &journalFile{SchemaVersion: CurrentSchemaVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal file: %w", err)
	}

	file, err := decodeJournal(data)
	if err != nil {
		// Try backup file
		backup, backupErr := os.ReadFile(s.backupPath())
		if backupErr == nil {
			if recovered, err := decodeJournal(backup); err == nil {
				s.logger.Warn("Loaded journal from backup due to corruption")
				return recovered, nil
			}
		}
		return nil, err
	}

	// Check schema version
	if file.SchemaVersion != CurrentSchemaVersion {
		s.logger.WithField("version", file.SchemaVersion).Warn("Journal schema version mismatch")
	}

	return file, nil
}

func (s *JSONStore) save(file *journalFile) error {
	file.SchemaVersion = CurrentSchemaVersion
	file.Checksum = ""

	checksum, err := journalChecksum(file)
	if err != nil {
		return err
	}
	file.Checksum = checksum

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	// Keep the previous generation for recovery
	if previous, err := os.ReadFile(s.path); err == nil {
		if err := os.WriteFile(s.backupPath(), previous, 0o600); err != nil {
			s.logger.WithError(err).Warn("Failed to create journal backup")
		}
	}

	// Write atomically
	tmpPath := s.path + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	_ = tmp.Sync()
	tmp.Close()

	// Rename atomically
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename journal file: %w", err)
	}

	return nil
}

func (s *JSONStore) backupPath() string {
	return s.path + ".backup"
}

func decodeJournal(data []byte) (*journalFile, error) {
	var file journalFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJournalCorrupt, err)
	}

	// Verify checksum if present
	if file.Checksum != "" {
		stored := file.Checksum
		file.Checksum = ""

		calculated, err := journalChecksum(&file)
		if err != nil {
			return nil, err
		}
		if calculated != stored {
			return nil, fmt.Errorf("%w: checksum mismatch", ErrJournalCorrupt)
		}
		file.Checksum = stored
	}

	return &file, nil
}

// journalChecksum hashes file with an empty Checksum field.
func journalChecksum(file *journalFile) (string, error) {
	data, err := json.Marshal(file)
	if err != nil {
		return "", fmt.Errorf("marshal journal for checksum: %w", err)
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
