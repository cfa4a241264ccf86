package main

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/SegFaultAndEC/password-manager/internal/events"
	"github.com/SegFaultAndEC/password-manager/internal/models"
)

var showCopy bool

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <platform> <account>",
		Short: "Reveal the secret of an account",
		Long: `Show asks for the master key a second time before revealing a secret.

With --copy the secret goes to the clipboard instead of the terminal.`,
		Example: `  pwm show email me@example.com
  pwm show email me@example.com --copy`,
		Args: cobra.ExactArgs(2),
		RunE: runShow,
	}

	cmd.Flags().BoolVarP(&showCopy, "copy", "c", false, "Copy the secret to the clipboard")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	platform, account := args[0], args[1]

	index, passphrase, err := unlock("Master key: ")
	if err != nil {
		return err
	}

	confirmation, err := readPassphrase("Confirm master key: ")
	if err != nil {
		return err
	}
	if !index.VerifyPassphrase(confirmation) {
		return models.Errorf("show", models.ErrWrongKeyOrCorrupt, "master key confirmation failed")
	}

	secret, err := index.Secret(platform, account, passphrase)
	if err != nil {
		return err
	}

	if showCopy {
		if err := clipboard.WriteAll(secret); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		events.FromContext(cmd.Context()).Debug("Secret copied to clipboard")

		if jsonOutput {
			printJSON(map[string]interface{}{
				"success":  true,
				"platform": platform,
				"account":  account,
				"copied":   true,
			})
		} else {
			printSuccess("Copied secret of %s/%s to the clipboard", platform, account)
		}
		return nil
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"platform": platform,
			"account":  account,
			"secret":   secret,
		})
	} else {
		secretColor.Fprintln(stdout, secret)
	}

	return nil
}
