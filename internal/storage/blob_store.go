package storage

import (
	"errors"
	"os"
	"time"
)

// Errors returned by blob stores.
var (
	ErrNotFound    = errors.New("file not found")
	ErrExists      = errors.New("file already exists")
	ErrInvalidPath = errors.New("invalid path")
	ErrTooLarge    = errors.New("file too large")
	ErrSymlink     = errors.New("symlinks not allowed")
)

// BlobStore manages the files of one directory tree.
type BlobStore interface {
	// Write replaces a file atomically.
	Write(path string, data []byte, mode os.FileMode) error

	// Create writes a new file and fails with ErrExists if path is taken.
	Create(path string, data []byte, mode os.FileMode) error

	// CreateUnique writes a new file at path, or at path-NNN when path is
	// taken, and returns the path used.
	CreateUnique(path string, data []byte, mode os.FileMode) (string, error)

	// Read retrieves file contents.
	Read(path string) ([]byte, error)

	// Delete removes a file.
	Delete(path string) error

	// Exists checks if a file exists.
	Exists(path string) (bool, error)

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// ListDir returns directory contents.
	ListDir(path string) ([]FileInfo, error)
}

// FileInfo contains file metadata.
type FileInfo struct {
	Path       string
	Size       int64
	Mode       os.FileMode
	ModTime    time.Time
	IsDir      bool
	IsSymlink  bool
	LinkTarget string
}

// MaxUniqueSuffix bounds the -NNN suffixes tried by CreateUnique.
const MaxUniqueSuffix = 999
