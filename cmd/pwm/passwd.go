package main

import (
	"github.com/spf13/cobra"
)

func newPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the master key",
		Long: `Passwd re-encrypts the vault under a new master key.

Backups written before the change stay encrypted under the old key. The new
key is read from PWM_NEW_PASSPHRASE when set.`,
		Args: cobra.NoArgs,
		RunE: runPasswd,
	}
}

func runPasswd(cmd *cobra.Command, args []string) error {
	index, current, err := unlock("Current master key: ")
	if err != nil {
		return err
	}

	next, err := readNewPassphrase(NewPassphraseEnv, "New master key: ", "Repeat new master key: ")
	if err != nil {
		return err
	}

	if err := index.ChangeMasterKey(current, next); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{"success": true})
	} else {
		printSuccess("Master key changed")
		printWarning("Existing backups still open with the previous key")
	}

	return nil
}
