package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SegFaultAndEC/password-manager/internal/config"
)

// isolateHome points the home and config directories at a temp dir so the
// default search paths never pick up a developer's real config.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return home
}

func TestDefaultConfig(t *testing.T) {
	home := isolateHome(t)
	cfg := config.DefaultConfig()

	assert.Equal(t, filepath.Join(home, "password_manager"), cfg.Storage.DataDir)
	assert.Equal(t, "password.txt", cfg.Storage.VaultFile)
	assert.Equal(t, filepath.Join(home, "password_manager", "password.txt"), cfg.Storage.VaultPath())
	assert.Equal(t, "sqlite", cfg.Journal.Driver)
	assert.Equal(t, 14, cfg.Generator.Length)
	assert.True(t, cfg.Generator.Symbols)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr string
	}{
		{
			name:    "valid config",
			modify:  func(c *config.Config) {},
			wantErr: "",
		},
		{
			name: "missing data dir",
			modify: func(c *config.Config) {
				c.Storage.DataDir = ""
			},
			wantErr: "storage.data_dir is required",
		},
		{
			name: "vault file with separator",
			modify: func(c *config.Config) {
				c.Storage.VaultFile = "sub/password.txt"
			},
			wantErr: "bare file name",
		},
		{
			name: "state dir inside vault dir",
			modify: func(c *config.Config) {
				c.Storage.StateDir = c.Storage.DataDir
			},
			wantErr: "must differ",
		},
		{
			name: "journal inside vault dir",
			modify: func(c *config.Config) {
				c.Journal.Path = filepath.Join(c.Storage.DataDir, "journal.db")
			},
			wantErr: "journal path must be outside",
		},
		{
			name: "json journal inside vault dir",
			modify: func(c *config.Config) {
				c.Journal.Driver = "json"
				c.Journal.Path = filepath.Join(c.Storage.DataDir, "journal.json")
			},
			wantErr: "journal path must be outside",
		},
		{
			name: "disabled journal ignores its path",
			modify: func(c *config.Config) {
				c.Journal.Driver = "none"
				c.Journal.Path = filepath.Join(c.Storage.DataDir, "journal.db")
			},
			wantErr: "",
		},
		{
			name: "log file inside vault dir",
			modify: func(c *config.Config) {
				c.Log.File = filepath.Join(c.Storage.DataDir, "pwm.log")
			},
			wantErr: "log.file must be outside",
		},
		{
			name: "log file elsewhere",
			modify: func(c *config.Config) {
				c.Log.File = filepath.Join(c.Storage.StateDir, "pwm.log")
			},
			wantErr: "",
		},
		{
			name: "unknown journal driver",
			modify: func(c *config.Config) {
				c.Journal.Driver = "postgres"
			},
			wantErr: "invalid journal driver",
		},
		{
			name: "zero generator length",
			modify: func(c *config.Config) {
				c.Generator.Length = 0
			},
			wantErr: "generator.length must be positive",
		},
		{
			name: "invalid log level",
			modify: func(c *config.Config) {
				c.Log.Level = "invalid"
			},
			wantErr: "invalid log level",
		},
		{
			name: "invalid log format",
			modify: func(c *config.Config) {
				c.Log.Format = "xml"
			},
			wantErr: "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoaderEnv(t *testing.T) {
	home := isolateHome(t)
	dataDir := filepath.Join(home, "vault-data")

	t.Setenv("PWM_STORAGE_DATA_DIR", dataDir)
	t.Setenv("PWM_LOG_LEVEL", "DEBUG")
	t.Setenv("PWM_GENERATOR_LENGTH", "20")
	t.Setenv("PWM_JOURNAL_DRIVER", "json")

	loader := config.NewLoader("")
	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.Storage.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 20, cfg.Generator.Length)
	assert.Equal(t, "json", cfg.Journal.Driver)
	assert.Equal(t, filepath.Join(cfg.Storage.StateDir, "journal.json"), cfg.JournalPath())
	assert.Empty(t, loader.ConfigFileUsed())
}

func TestLoaderEnvAlias(t *testing.T) {
	home := isolateHome(t)
	dataDir := filepath.Join(home, "alias-data")

	t.Setenv("PWM_DATA_DIR", dataDir)

	cfg, err := config.NewLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.Storage.DataDir)
}

func TestLoaderFile(t *testing.T) {
	isolateHome(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	configYAML := `storage:
  data_dir: ` + filepath.Join(tmpDir, "vault") + `
  vault_file: secrets.txt
log:
  level: error
  format: json
generator:
  symbols: false
`

	err := os.WriteFile(configPath, []byte(configYAML), 0600)
	require.NoError(t, err)

	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "vault", "secrets.txt"), cfg.Storage.VaultPath())
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Generator.Symbols)
	assert.Equal(t, 14, cfg.Generator.Length)
	assert.Equal(t, configPath, loader.ConfigFileUsed())
}

func TestLoaderMissingExplicitFile(t *testing.T) {
	isolateHome(t)

	_, err := config.NewLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load()
	assert.Error(t, err)
}

func TestLoaderFlags(t *testing.T) {
	home := isolateHome(t)
	t.Setenv("PWM_LOG_LEVEL", "info")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("data-dir", "", "")
	fs.String("log-level", "", "")
	require.NoError(t, fs.Parse([]string{"--data-dir", filepath.Join(home, "flagged"), "--log-level", "error"}))

	loader := config.NewLoader("")
	require.NoError(t, loader.BindFlags(fs, map[string]string{
		"storage.data_dir": "data-dir",
		"log.level":        "log-level",
	}))

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "flagged"), cfg.Storage.DataDir)
	assert.Equal(t, "error", cfg.Log.Level)

	err = loader.BindFlags(fs, map[string]string{"log.file": "missing"})
	assert.Error(t, err)
}

func TestSaveExampleRoundTrip(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "example", "password-manager.yaml")

	require.NoError(t, config.SaveExample(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg, err := config.NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "password.txt", cfg.Storage.VaultFile)
}

func TestConfigEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.DataDir = filepath.Join(tmpDir, "data")
	cfg.Storage.StateDir = filepath.Join(tmpDir, "state")
	cfg.Log.File = filepath.Join(tmpDir, "logs", "app.log")

	err := cfg.EnsureDirectories()
	require.NoError(t, err)

	assert.DirExists(t, cfg.Storage.DataDir)
	assert.DirExists(t, cfg.Storage.StateDir)
	assert.DirExists(t, filepath.Dir(cfg.Log.File))
}

func TestExpandHome(t *testing.T) {
	home := isolateHome(t)

	assert.Equal(t, filepath.Join(home, "x"), config.ExpandHome("~/x"))
	assert.Equal(t, "/abs/x", config.ExpandHome("/abs/x"))
	assert.Equal(t, "rel/~x", config.ExpandHome("rel/~x"))
}
