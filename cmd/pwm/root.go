package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SegFaultAndEC/password-manager/internal/client"
	"github.com/SegFaultAndEC/password-manager/internal/config"
	"github.com/SegFaultAndEC/password-manager/internal/events"
	"github.com/SegFaultAndEC/password-manager/internal/services/vault"
)

var version = "dev"

// Global flags
var (
	cfgFile    string
	dataDir    string
	logLevel   string
	jsonOutput bool
	noColor    bool
)

// Per-invocation state, set up by the root command before any subcommand runs
var (
	cfg       *config.Config
	logger    *events.Logger
	apiClient *client.Client

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	input  *bufio.Reader
	tty    *os.File
)

// flagBindings maps config keys to the global flags overriding them.
var flagBindings = map[string]string{
	"storage.data_dir": "data-dir",
	"log.level":        "log-level",
}

// newRootCmd builds a fresh command tree.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pwm",
		Short: "Encrypted single-user password vault",
		Long: `pwm keeps platform/account secrets in one AES-256 encrypted file.

Every change backs up the previous vault file next to it. The master key is
read from PWM_PASSPHRASE when set, otherwise it is prompted for without echo.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file (default searches ~/.config/password-manager, ~/.password-manager and .)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"Directory holding the vault and its backups")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output in JSON format")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")

	cmd.AddCommand(
		newInitCmd(),
		newPlatformsCmd(),
		newPlatformCmd(),
		newAccountsCmd(),
		newAccountCmd(),
		newShowCmd(),
		newFindCmd(),
		newOTPCmd(),
		newPasswdCmd(),
		newBackupsCmd(),
		newGenerateCmd(),
		newHistoryCmd(),
		newConfigCmd(),
	)

	return cmd
}

// execute runs root and releases whatever setup opened.
func execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	teardown()
	return err
}

func setup(cmd *cobra.Command, args []string) error {
	stdout = cmd.OutOrStdout()
	stderr = cmd.ErrOrStderr()
	input = bufio.NewReader(cmd.InOrStdin())
	tty = nil
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		tty = f
	}

	if noColor {
		color.NoColor = true
	}

	loader := config.NewLoader(cfgFile)
	if err := loader.BindFlags(cmd.Root().PersistentFlags(), flagBindings); err != nil {
		return err
	}

	var err error
	cfg, err = loader.Load()
	if err != nil {
		return err
	}
	if noColor {
		cfg.Log.Color = false
	}

	logger, err = events.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	events.SetDefault(logger)
	if used := loader.ConfigFileUsed(); used != "" {
		logger.WithField("config", used).Debug("Loaded config file")
	}

	ctx := events.WithLogger(cmd.Context(), logger)
	cmd.SetContext(events.WithOperation(ctx, cmd.Name()))

	apiClient, err = client.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	return nil
}

func teardown() {
	if apiClient != nil {
		if err := apiClient.Close(); err != nil && logger != nil {
			logger.WithError(err).Warn("Failed to close journal")
		}
		apiClient = nil
	}
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
}

// unlock prompts for the master key and opens the vault index.
func unlock(prompt string) (*vault.Index, string, error) {
	passphrase, err := readPassphrase(prompt)
	if err != nil {
		return nil, "", err
	}

	index, err := apiClient.Open(passphrase)
	if err != nil {
		return nil, "", err
	}

	return index, passphrase, nil
}
