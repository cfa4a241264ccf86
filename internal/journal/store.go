package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/SegFaultAndEC/password-manager/internal/config"
	"github.com/SegFaultAndEC/password-manager/internal/events"
)

// Operation names a recorded vault operation.
type Operation string

// Recorded operations.
const (
	OpInit         Operation = "init"
	OpSave         Operation = "save"
	OpBackup       Operation = "backup"
	OpClearBackups Operation = "clear_backups"
	OpChangeKey    Operation = "change_key"
)

// Entry is one journal line. Detail never carries platform or account
// names or secret values; it holds a backup file name or a count.
type Entry struct {
	ID        int64     `json:"id"`
	Time      time.Time `json:"time"`
	Operation Operation `json:"operation"`
	Detail    string    `json:"detail,omitempty"`
}

// Recorder accepts journal entries.
type Recorder interface {
	Record(op Operation, detail string) error
}

// Store manages journal persistence.
type Store interface {
	Recorder

	// Recent returns up to limit entries, newest first. A limit of zero
	// or less returns every entry.
	Recent(limit int) ([]Entry, error)

	// Close releases resources.
	Close() error
}

// Errors
var (
	ErrJournalCorrupt = errors.New("journal file is corrupt")
	ErrUnknownDriver  = errors.New("unknown journal driver")
)

// CurrentSchemaVersion for migrations.
const CurrentSchemaVersion = 1

// Open creates the store selected by cfg.Journal.Driver.
func Open(cfg *config.Config, logger *events.Logger) (Store, error) {
	switch cfg.Journal.Driver {
	case "sqlite":
		return NewSQLiteStore(cfg.JournalPath(), logger)
	case "json":
		return NewJSONStore(cfg.JournalPath(), logger)
	case "none", "":
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Journal.Driver)
	}
}

// NopStore discards entries.
type NopStore struct{}

// Record discards the entry.
func (NopStore) Record(Operation, string) error { return nil }

// Recent returns nothing.
func (NopStore) Recent(int) ([]Entry, error) { return nil, nil }

// Close does nothing.
func (NopStore) Close() error { return nil }
