package vault

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/SegFaultAndEC/password-manager/internal/config"
	"github.com/SegFaultAndEC/password-manager/internal/crypto"
	"github.com/SegFaultAndEC/password-manager/internal/events"
	"github.com/SegFaultAndEC/password-manager/internal/journal"
	"github.com/SegFaultAndEC/password-manager/internal/models"
	"github.com/SegFaultAndEC/password-manager/internal/storage"
)

// BackupTimeFormat names backup files after the local time of the save
// that displaced them.
const BackupTimeFormat = "20060102_150405"

// fileMode keeps vault and backup files private to the owner.
const fileMode = 0o600

// Backup describes one backup file next to the primary vault file.
type Backup struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Store owns the on-disk vault: one encrypted primary file plus timestamped
// backups of every version it replaced. Store is not safe for concurrent
// use on its own; Index serializes access within a process and cross
// process writers are unsupported.
type Store struct {
	blobs   storage.BlobStore
	crypto  crypto.Provider
	journal journal.Recorder
	logger  *events.Logger
	now     func() time.Time

	dir  string
	file string
}

// Option configures a Store.
type Option func(*Store)

// WithJournal records store activity to r.
func WithJournal(r journal.Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.journal = r
		}
	}
}

// WithClock overrides the clock used to name backups.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithProvider overrides the crypto provider.
func WithProvider(p crypto.Provider) Option {
	return func(s *Store) {
		s.crypto = p
	}
}

// NewStore creates a store keeping file inside blobs. dir is the directory
// blobs is rooted at and is only used for reporting paths.
func NewStore(blobs storage.BlobStore, dir, file string, logger *events.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = events.NewNopLogger()
	}

	s := &Store{
		blobs:   blobs,
		crypto:  crypto.NewProvider(),
		journal: journal.NopStore{},
		logger:  logger.WithField("component", "vault_store"),
		now:     time.Now,
		dir:     dir,
		file:    file,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// OpenStore creates a store over the configured data directory.
func OpenStore(cfg *config.StorageConfig, logger *events.Logger, opts ...Option) (*Store, error) {
	local, err := storage.NewLocalStore(cfg.DataDir, logger)
	if err != nil {
		return nil, models.NewError("open", models.ErrIO, err)
	}

	return NewStore(local, local.BaseDir(), cfg.VaultFile, logger, opts...), nil
}

// Path returns the primary vault file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, s.file)
}

// Dir returns the directory holding the vault and its backups.
func (s *Store) Dir() string {
	return s.dir
}

// Exists reports whether the primary vault file is present.
func (s *Store) Exists() (bool, error) {
	exists, err := s.blobs.Exists(s.file)
	if err != nil {
		return false, models.NewError("exists", models.ErrIO, err)
	}
	return exists, nil
}

// Initialize creates an empty vault guarded by passphrase. It never
// replaces an existing vault.
func (s *Store) Initialize(passphrase string) error {
	if passphrase == "" {
		return models.Errorf("initialize", models.ErrInvalidInput, "master key must not be empty")
	}

	transport, err := s.seal(models.NewDocument(s.crypto.HashPassphrase(passphrase)), passphrase)
	if err != nil {
		return models.NewError("initialize", models.ErrIO, err)
	}

	if err := s.blobs.Create(s.file, []byte(transport), fileMode); err != nil {
		if errors.Is(err, storage.ErrExists) {
			return models.NewError("initialize", models.ErrVaultExists, err)
		}
		return models.NewError("initialize", models.ErrIO, err)
	}

	s.logger.WithField("path", s.Path()).Info("Vault initialized")
	s.record(journal.OpInit, "")

	return nil
}

// Load reads, decrypts and parses the vault.
func (s *Store) Load(passphrase string) (*models.Document, error) {
	raw, err := s.blobs.Read(s.file)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, models.NewError("load", models.ErrVaultMissing, err)
		}
		return nil, models.NewError("load", models.ErrIO, err)
	}

	plaintext, err := s.crypto.Decrypt(string(raw), passphrase)
	if err != nil {
		return nil, models.NewError("load", models.ErrWrongKeyOrCorrupt, err)
	}

	doc, err := models.ParseDocument(plaintext)
	if err != nil {
		return nil, models.NewError("load", models.ErrWrongKeyOrCorrupt, err)
	}

	// Padding can pass by chance under a wrong key, the stored hash cannot.
	if !hashesEqual(doc.Key, s.crypto.HashPassphrase(passphrase)) {
		return nil, models.Errorf("load", models.ErrWrongKeyOrCorrupt, "key hash mismatch")
	}

	s.logger.WithField("platforms", len(doc.Platforms)).Debug("Vault loaded")

	return doc, nil
}

// Save encrypts doc under passphrase and replaces the primary file. The
// current primary, when readable, is first copied to a new backup.
func (s *Store) Save(passphrase string, doc *models.Document) error {
	if doc == nil {
		return models.Errorf("save", models.ErrInvalidInput, "nil document")
	}
	if err := doc.Validate(); err != nil {
		return models.NewError("save", models.ErrInvalidInput, err)
	}

	// Encrypt before touching the disk so a failure leaves no backup behind
	transport, err := s.seal(doc, passphrase)
	if err != nil {
		return models.NewError("save", models.ErrIO, err)
	}

	if err := s.backup(); err != nil {
		return models.NewError("save", models.ErrIO, err)
	}

	if err := s.blobs.Write(s.file, []byte(transport), fileMode); err != nil {
		return models.NewError("save", models.ErrIO, err)
	}

	s.logger.WithField("platforms", len(doc.Platforms)).Info("Vault saved")
	s.record(journal.OpSave, "")

	return nil
}

// ChangeKey re-encrypts the vault under newPassphrase and returns the
// saved document. Existing backups stay readable with the old key only.
func (s *Store) ChangeKey(oldPassphrase, newPassphrase string) (*models.Document, error) {
	if newPassphrase == "" {
		return nil, models.Errorf("change key", models.ErrInvalidInput, "new master key must not be empty")
	}

	doc, err := s.Load(oldPassphrase)
	if err != nil {
		return nil, err
	}

	doc.Key = s.crypto.HashPassphrase(newPassphrase)
	if err := s.Save(newPassphrase, doc); err != nil {
		return nil, err
	}

	s.logger.Info("Master key changed")
	s.record(journal.OpChangeKey, "")

	return doc, nil
}

// Backups lists backup files, oldest first.
func (s *Store) Backups() ([]Backup, error) {
	files, err := s.blobs.ListDir("")
	if err != nil {
		return nil, models.NewError("list backups", models.ErrIO, err)
	}

	var backups []Backup
	for _, f := range files {
		if f.IsDir || f.Path == s.file || storage.IsTempFile(f.Path) {
			continue
		}
		backups = append(backups, Backup{
			Name:    f.Path,
			Path:    filepath.Join(s.dir, filepath.FromSlash(f.Path)),
			Size:    f.Size,
			ModTime: f.ModTime,
		})
	}

	// Timestamp names sort chronologically
	sort.Slice(backups, func(i, j int) bool { return backups[i].Name < backups[j].Name })

	return backups, nil
}

// ClearBackups removes every file in the vault directory except the
// primary. Files that cannot be removed are logged and skipped.
func (s *Store) ClearBackups() (int, error) {
	files, err := s.blobs.ListDir("")
	if err != nil {
		return 0, models.NewError("clear backups", models.ErrIO, err)
	}

	removed := 0
	for _, f := range files {
		if f.IsDir || f.Path == s.file {
			continue
		}

		if err := s.blobs.Delete(f.Path); err != nil {
			s.logger.WithError(err).WithField("file", f.Path).Warn("Failed to remove backup")
			continue
		}
		removed++
	}

	s.logger.WithField("removed", removed).Info("Backups cleared")
	s.record(journal.OpClearBackups, strconv.Itoa(removed))

	return removed, nil
}

// Helper methods

func (s *Store) seal(doc *models.Document, passphrase string) (string, error) {
	data, err := doc.Marshal()
	if err != nil {
		return "", err
	}

	transport, err := s.crypto.Encrypt(data, passphrase)
	if err != nil {
		return "", fmt.Errorf("encrypt vault: %w", err)
	}

	return transport, nil
}

// backup copies the current primary to a new timestamped file. A missing
// or unreadable primary skips the backup.
func (s *Store) backup() error {
	raw, err := s.blobs.Read(s.file)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.WithError(err).Warn("Cannot read vault for backup, skipping backup")
		}
		return nil
	}

	name, err := s.blobs.CreateUnique(s.now().Format(BackupTimeFormat), raw, fileMode)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}

	s.logger.WithField("backup", name).Debug("Backup created")
	s.record(journal.OpBackup, name)

	return nil
}

func (s *Store) record(op journal.Operation, detail string) {
	if err := s.journal.Record(op, detail); err != nil {
		s.logger.WithError(err).WithField("operation", string(op)).Warn("Failed to record journal entry")
	}
}

func hashesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
