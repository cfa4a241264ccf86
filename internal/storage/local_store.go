package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/SegFaultAndEC/password-manager/internal/events"
)

// LocalStore implements file system operations rooted at one directory.
type LocalStore struct {
	baseDir string
	logger  *events.Logger

	// Security settings
	allowSymlinks bool
	maxPathLength int
	maxFileSize   int64
}

// NewLocalStore creates a local file store. The base directory is created
// with owner-only permissions.
func NewLocalStore(baseDir string, logger *events.Logger) (*LocalStore, error) {
	// Resolve absolute path
	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}

	if err := os.MkdirAll(absPath, 0o700); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}

	if logger == nil {
		logger = events.NewNopLogger()
	}

	return &LocalStore{
		baseDir:       absPath,
		logger:        logger.WithField("component", "local_store"),
		allowSymlinks: false,
		maxPathLength: 4096,
		maxFileSize:   64 * 1024 * 1024,
	}, nil
}

// BaseDir returns the absolute root of the store.
func (s *LocalStore) BaseDir() string {
	return s.baseDir
}

// SetMaxFileSize sets the maximum file size limit.
func (s *LocalStore) SetMaxFileSize(size int64) {
	s.maxFileSize = size
}

// Write saves data to a file atomically: temp file, fsync, rename.
func (s *LocalStore) Write(path string, data []byte, mode os.FileMode) error {
	safePath, err := s.prepare(path, data)
	if err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"path": path,
		"size": len(data),
	}).Debug("Writing file")

	tempPath, err := s.writeTemp(safePath, data, mode)
	if err != nil {
		return err
	}

	// Rename atomically
	if err := os.Rename(tempPath, safePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Create writes a new file without ever replacing an existing one. The
// content is staged in a temp file and hard-linked into place so the file
// appears complete or not at all.
func (s *LocalStore) Create(path string, data []byte, mode os.FileMode) error {
	safePath, err := s.prepare(path, data)
	if err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"path": path,
		"size": len(data),
	}).Debug("Creating file")

	return s.createExclusive(safePath, path, data, mode)
}

// CreateUnique writes a new file at path or, when taken, at the first free
// path-NNN sibling.
func (s *LocalStore) CreateUnique(path string, data []byte, mode os.FileMode) (string, error) {
	if _, err := s.prepare(path, data); err != nil {
		return "", err
	}

	for n := 0; n <= MaxUniqueSuffix; n++ {
		candidate := uniqueName(path, n)

		safePath, err := s.sanitizePath(candidate)
		if err != nil {
			return "", err
		}

		err = s.createExclusive(safePath, candidate, data, mode)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, ErrExists) {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: no free name for %s", ErrExists, path)
}

// Read retrieves file contents.
func (s *LocalStore) Read(path string) ([]byte, error) {
	safePath, err := s.sanitizePath(path)
	if err != nil {
		return nil, err
	}

	// Check if it's a symlink and we don't allow symlinks
	if !s.allowSymlinks {
		stat, err := os.Lstat(safePath)
		if err == nil && stat.Mode()&os.ModeSymlink != 0 {
			return nil, fmt.Errorf("%w: %s", ErrSymlink, path)
		}
	}

	data, err := os.ReadFile(safePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// Delete removes a file. Deleting a missing file is not an error.
func (s *LocalStore) Delete(path string) error {
	safePath, err := s.sanitizePath(path)
	if err != nil {
		return err
	}

	s.logger.WithField("path", path).Debug("Deleting file")

	if err := os.Remove(safePath); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted
		}
		return fmt.Errorf("delete file: %w", err)
	}

	return nil
}

// Exists checks if a file exists.
func (s *LocalStore) Exists(path string) (bool, error) {
	safePath, err := s.sanitizePath(path)
	if err != nil {
		return false, err
	}

	_, err = os.Lstat(safePath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Stat returns file information.
func (s *LocalStore) Stat(path string) (FileInfo, error) {
	safePath, err := s.sanitizePath(path)
	if err != nil {
		return FileInfo{}, err
	}

	stat, err := os.Lstat(safePath)
	if err != nil {
		if os.IsNotExist(err) {
			return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return FileInfo{}, fmt.Errorf("stat file: %w", err)
	}

	info := FileInfo{
		Path:      path,
		Size:      stat.Size(),
		Mode:      stat.Mode(),
		ModTime:   stat.ModTime(),
		IsDir:     stat.IsDir(),
		IsSymlink: stat.Mode()&os.ModeSymlink != 0,
	}

	// Resolve symlink
	if info.IsSymlink {
		target, err := os.Readlink(safePath)
		if err == nil {
			info.LinkTarget = target
		}
	}

	return info, nil
}

// ListDir returns directory contents.
func (s *LocalStore) ListDir(path string) ([]FileInfo, error) {
	safePath, err := s.sanitizePath(path)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(safePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:      filepath.ToSlash(filepath.Join(path, entry.Name())),
			Size:      info.Size(),
			Mode:      info.Mode(),
			ModTime:   info.ModTime(),
			IsDir:     info.IsDir(),
			IsSymlink: info.Mode()&os.ModeSymlink != 0,
		})
	}

	return files, nil
}

// Helper methods

// prepare validates a write and ensures the parent directory exists.
func (s *LocalStore) prepare(path string, data []byte) (string, error) {
	safePath, err := s.sanitizePath(path)
	if err != nil {
		return "", err
	}

	if int64(len(data)) > s.maxFileSize {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrTooLarge, len(data), s.maxFileSize)
	}

	if err := os.MkdirAll(filepath.Dir(safePath), 0o700); err != nil {
		return "", fmt.Errorf("create parent directory: %w", err)
	}

	return safePath, nil
}

// writeTemp writes data next to safePath and syncs it. The caller owns the
// returned temp file.
func (s *LocalStore) writeTemp(safePath string, data []byte, mode os.FileMode) (string, error) {
	tempPath := fmt.Sprintf("%s.tmp.%d", safePath, time.Now().UnixNano())

	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}

	// Sync to disk
	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("sync temp file: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return tempPath, nil
}

func (s *LocalStore) createExclusive(safePath, path string, data []byte, mode os.FileMode) error {
	tempPath, err := s.writeTemp(safePath, data, mode)
	if err != nil {
		return err
	}
	defer os.Remove(tempPath)

	err = os.Link(tempPath, safePath)
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}

	// Filesystems without hard links still get an exclusive create.
	s.logger.WithError(err).Debug("Hard link failed, falling back to O_EXCL")

	file, err := os.OpenFile(safePath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		_ = os.Remove(safePath)
		return fmt.Errorf("write file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(safePath)
		return fmt.Errorf("sync file: %w", err)
	}

	return file.Close()
}

// sanitizePath validates and normalizes a file path.
func (s *LocalStore) sanitizePath(path string) (string, error) {
	// Check for null bytes
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("%w: path contains null bytes", ErrInvalidPath)
	}

	// Normalize path separators
	normalized := filepath.FromSlash(path)

	// Clean path (remove .., ., etc)
	cleaned := filepath.Clean(normalized)

	// Check for directory traversal
	for _, part := range strings.Split(cleaned, string(filepath.Separator)) {
		if part == ".." {
			return "", fmt.Errorf("%w: path contains '..'", ErrInvalidPath)
		}
	}

	// Remove leading separators
	cleaned = strings.TrimPrefix(cleaned, string(filepath.Separator))

	// Build full path
	fullPath := filepath.Join(s.baseDir, cleaned)

	// Verify it's under base directory
	if !strings.HasPrefix(fullPath, s.baseDir+string(filepath.Separator)) && fullPath != s.baseDir {
		return "", fmt.Errorf("%w: path escapes base directory", ErrInvalidPath)
	}

	// Check path length
	if len(fullPath) > s.maxPathLength {
		return "", fmt.Errorf("%w: path too long: %d characters (max: %d)", ErrInvalidPath, len(fullPath), s.maxPathLength)
	}

	// Platform-specific checks
	if err := s.validatePlatformPath(cleaned); err != nil {
		return "", err
	}

	return fullPath, nil
}

// validatePlatformPath checks platform-specific path restrictions.
func (s *LocalStore) validatePlatformPath(path string) error {
	if runtime.GOOS == "windows" {
		// Windows reserved names
		reserved := []string{"CON", "PRN", "AUX", "NUL", "COM1", "COM2", "COM3", "COM4",
			"COM5", "COM6", "COM7", "COM8", "COM9", "LPT1", "LPT2", "LPT3",
			"LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9"}

		parts := strings.Split(path, string(filepath.Separator))
		for _, part := range parts {
			baseName := strings.TrimSuffix(part, filepath.Ext(part))
			upperName := strings.ToUpper(baseName)

			for _, reserved := range reserved {
				if upperName == reserved {
					return fmt.Errorf("%w: contains reserved name '%s'", ErrInvalidPath, part)
				}
			}

			// Check for invalid characters
			for _, char := range `<>:"|?*` {
				if strings.ContainsRune(part, char) {
					return fmt.Errorf("%w: contains character '%c'", ErrInvalidPath, char)
				}
			}
		}
	}

	return nil
}

// uniqueName returns path for n == 0 and path-NNN otherwise.
func uniqueName(path string, n int) string {
	if n == 0 {
		return path
	}
	return fmt.Sprintf("%s-%03d", path, n)
}

// IsTempFile reports whether name looks like a temp file left by Write.
func IsTempFile(name string) bool {
	return strings.Contains(filepath.Base(name), ".tmp.")
}
