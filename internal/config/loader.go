package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g.
// PWM_STORAGE_DATA_DIR or PWM_LOG_LEVEL.
const EnvPrefix = "PWM"

// configName is the base name searched for in the default locations.
const configName = "password-manager"

// Loader handles configuration loading from multiple sources.
type Loader struct {
	configPath string
	v          *viper.Viper
}

// NewLoader creates a config loader. An empty configPath searches the
// default locations and tolerates a missing file.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		v:          viper.New(),
	}
}

// BindFlags lets command-line flags override file and environment values.
// bindings maps a config key (e.g. "storage.data_dir") to a flag name.
func (l *Loader) BindFlags(fs *pflag.FlagSet, bindings map[string]string) error {
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			return fmt.Errorf("unknown flag %q for key %s", name, key)
		}
		if err := l.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// ConfigFileUsed reports the file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Load reads configuration from defaults, file, environment and flags, in
// increasing order of precedence.
func (l *Loader) Load() (*Config, error) {
	// Start with defaults
	l.setDefaults(DefaultConfig())

	if l.configPath != "" {
		l.v.SetConfigFile(ExpandHome(l.configPath))
	} else {
		l.v.SetConfigName(configName)
		for _, dir := range l.defaultPaths() {
			l.v.AddConfigPath(dir)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// Override with environment variables
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
	l.bindAliases()

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Storage.DataDir = ExpandHome(cfg.Storage.DataDir)
	cfg.Storage.StateDir = ExpandHome(cfg.Storage.StateDir)
	cfg.Log.File = ExpandHome(cfg.Log.File)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	// Validate final config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// defaultPaths returns default config file locations.
func (l *Loader) defaultPaths() []string {
	var paths []string

	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, configName))
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, "."+configName))
	}

	return append(paths, ".")
}

func (l *Loader) setDefaults(cfg *Config) {
	l.v.SetDefault("storage.data_dir", cfg.Storage.DataDir)
	l.v.SetDefault("storage.vault_file", cfg.Storage.VaultFile)
	l.v.SetDefault("storage.state_dir", cfg.Storage.StateDir)

	l.v.SetDefault("journal.driver", cfg.Journal.Driver)
	l.v.SetDefault("journal.path", cfg.Journal.Path)

	l.v.SetDefault("generator.length", cfg.Generator.Length)
	l.v.SetDefault("generator.symbols", cfg.Generator.Symbols)

	l.v.SetDefault("log.level", cfg.Log.Level)
	l.v.SetDefault("log.format", cfg.Log.Format)
	l.v.SetDefault("log.file", cfg.Log.File)
	l.v.SetDefault("log.color", cfg.Log.Color)
}

// bindAliases registers the short environment names.
func (l *Loader) bindAliases() {
	aliases := map[string]string{
		"storage.data_dir":  "DATA_DIR",
		"storage.state_dir": "STATE_DIR",
		"log.level":         "LOG_LEVEL",
		"log.format":        "LOG_FORMAT",
		"log.file":          "LOG_FILE",
	}
	for key, alias := range aliases {
		full := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = l.v.BindEnv(key, full, EnvPrefix+"_"+alias)
	}
}

// SaveExample writes an example config file.
func SaveExample(path string) error {
	cfg := DefaultConfig()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	example := fmt.Sprintf(`# password-manager configuration file
# Environment variables override these settings using the %s_ prefix,
# for example: %s_LOG_LEVEL=debug

%s`, EnvPrefix, EnvPrefix, data)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(example), 0600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}
