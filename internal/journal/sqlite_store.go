package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/SegFaultAndEC/password-manager/internal/events"
)

// SQLiteStore implements SQLite-based journal storage.
type SQLiteStore struct {
	db     *sql.DB
	logger *events.Logger
	now    func() time.Time
}

// NewSQLiteStore creates a SQLite journal store.
func NewSQLiteStore(dbPath string, logger *events.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if logger == nil {
		logger = events.NewNopLogger()
	}

	store := &SQLiteStore{
		db:     db,
		logger: logger.WithField("component", "sqlite_journal"),
		now:    time.Now,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	// Restrict the database to the owner, as the vault itself is.
	_ = os.Chmod(dbPath, 0o600)

	return store, nil
}

// initialize creates tables and indexes.
func (s *SQLiteStore) initialize() error {
	schema := `
    CREATE TABLE IF NOT EXISTS journal_entries (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        recorded_at INTEGER NOT NULL,
        operation TEXT NOT NULL,
        detail TEXT NOT NULL DEFAULT ''
    );

    CREATE INDEX IF NOT EXISTS idx_journal_recorded_at ON journal_entries(recorded_at);

    CREATE TABLE IF NOT EXISTS schema_info (
        version INTEGER PRIMARY KEY
    );

    INSERT OR IGNORE INTO schema_info (version) VALUES (?);
    `

	if _, err := s.db.Exec(schema, CurrentSchemaVersion); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Record appends an entry.
func (s *SQLiteStore) Record(op Operation, detail string) error {
	s.logger.WithFields(map[string]interface{}{
		"operation": string(op),
		"detail":    detail,
	}).Debug("Recording journal entry")

	_, err := s.db.Exec(`
        INSERT INTO journal_entries (recorded_at, operation, detail)
        VALUES (?, ?, ?)
    `, s.now().UnixNano(), string(op), detail)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	return nil
}

// Recent returns the newest entries first.
func (s *SQLiteStore) Recent(limit int) ([]Entry, error) {
	query := `
        SELECT id, recorded_at, operation, detail
        FROM journal_entries
        ORDER BY id DESC
    `
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			recordedAt int64
			op         string
		)
		if err := rows.Scan(&entry.ID, &recordedAt, &op, &entry.Detail); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		entry.Time = time.Unix(0, recordedAt)
		entry.Operation = Operation(op)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
