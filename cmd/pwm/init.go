package main

import (
	"github.com/spf13/cobra"

	"github.com/SegFaultAndEC/password-manager/internal/models"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new vault",
		Long: `Init creates an empty vault guarded by a new master key.

An existing vault is never overwritten.`,
		Example: `  pwm init
  PWM_PASSPHRASE=secret pwm init --data-dir ./vault`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	exists, err := apiClient.Vault.Exists()
	if err != nil {
		return err
	}
	if exists {
		return models.Errorf("initialize", models.ErrVaultExists, "%s", apiClient.Vault.Path())
	}

	passphrase, err := readNewPassphrase(PassphraseEnv, "New master key: ", "Repeat master key: ")
	if err != nil {
		return err
	}

	if err := apiClient.Vault.Initialize(passphrase); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success": true,
			"path":    apiClient.Vault.Path(),
		})
	} else {
		printSuccess("Vault created at %s", apiClient.Vault.Path())
	}

	return nil
}
