package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	// Storage paths
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Activity journal
	Journal JournalConfig `mapstructure:"journal" yaml:"journal"`

	// Password generator defaults
	Generator GeneratorConfig `mapstructure:"generator" yaml:"generator"`

	// Logging
	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// StorageConfig for local file paths.
type StorageConfig struct {
	DataDir   string `mapstructure:"data_dir" yaml:"data_dir"`     // Directory holding the vault and its backups
	VaultFile string `mapstructure:"vault_file" yaml:"vault_file"` // Primary vault file name inside DataDir
	StateDir  string `mapstructure:"state_dir" yaml:"state_dir"`   // Journal and other non-secret state
}

// VaultPath returns the absolute location of the primary vault file.
func (s StorageConfig) VaultPath() string {
	return filepath.Join(s.DataDir, s.VaultFile)
}

// JournalConfig selects the activity journal backend.
type JournalConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // sqlite, json, none
	Path   string `mapstructure:"path" yaml:"path"`     // empty = <state_dir>/journal.<ext>
}

// GeneratorConfig for the random password generator.
type GeneratorConfig struct {
	Length  int  `mapstructure:"length" yaml:"length"`
	Symbols bool `mapstructure:"symbols" yaml:"symbols"`
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
	File   string `mapstructure:"file" yaml:"file"`     // Log file path (empty = stderr)
	Color  bool   `mapstructure:"color" yaml:"color"`   // Enable colored output
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	stateDir := filepath.Join(home, ".config", "password-manager")
	if dir, err := os.UserConfigDir(); err == nil {
		stateDir = filepath.Join(dir, "password-manager")
	}

	return &Config{
		Storage: StorageConfig{
			DataDir:   filepath.Join(home, "password_manager"),
			VaultFile: "password.txt",
			StateDir:  stateDir,
		},
		Journal: JournalConfig{
			Driver: "sqlite",
		},
		Generator: GeneratorConfig{
			Length:  14,
			Symbols: true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
			File:   "",
			Color:  true,
		},
	}
}

// JournalPath returns the journal location for the configured driver.
func (c *Config) JournalPath() string {
	if c.Journal.Path != "" {
		return ExpandHome(c.Journal.Path)
	}
	ext := "db"
	if c.Journal.Driver == "json" {
		ext = "json"
	}
	return filepath.Join(c.Storage.StateDir, "journal."+ext)
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Storage.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}

	if c.Storage.VaultFile == "" {
		return errors.New("storage.vault_file is required")
	}

	if strings.ContainsAny(c.Storage.VaultFile, `/\`) {
		return fmt.Errorf("storage.vault_file must be a bare file name: %s", c.Storage.VaultFile)
	}

	if c.Storage.StateDir == "" {
		return errors.New("storage.state_dir is required")
	}

	// The journal must never live inside the vault directory, clearing
	// backups removes every file there except the vault.
	if sameDir(c.Storage.StateDir, c.Storage.DataDir) {
		return errors.New("storage.state_dir must differ from storage.data_dir")
	}

	validDrivers := map[string]bool{"sqlite": true, "json": true, "none": true}
	if !validDrivers[c.Journal.Driver] {
		return fmt.Errorf("invalid journal driver: %s", c.Journal.Driver)
	}

	if c.Journal.Driver != "none" && sameDir(filepath.Dir(c.JournalPath()), c.Storage.DataDir) {
		return errors.New("journal path must be outside storage.data_dir")
	}

	if c.Log.File != "" && sameDir(filepath.Dir(ExpandHome(c.Log.File)), c.Storage.DataDir) {
		return errors.New("log.file must be outside storage.data_dir")
	}

	if c.Generator.Length <= 0 {
		return errors.New("generator.length must be positive")
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDir,
		c.Storage.StateDir,
	}

	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
