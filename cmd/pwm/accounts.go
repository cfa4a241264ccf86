package main

import (
	"github.com/spf13/cobra"

	"github.com/SegFaultAndEC/password-manager/internal/models"
	"github.com/SegFaultAndEC/password-manager/internal/services/vault"
)

var (
	accountSecret    string
	accountName      string
	accountGenerate  bool
	accountLength    int
	accountNoSymbols bool
)

func newAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts <platform>",
		Short: "List the accounts of a platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, _, err := unlock("Master key: ")
			if err != nil {
				return err
			}
			if err := requirePlatform(index, "list accounts", args[0]); err != nil {
				return err
			}

			printList("accounts", index.Accounts(args[0]), "No accounts yet")
			return nil
		},
	}
}

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Add, edit or remove accounts",
	}

	add := &cobra.Command{
		Use:   "add <platform> <account>",
		Short: "Add an account, replacing its secret if it exists",
		Long: `Add stores a secret for an account of an existing platform.

The secret is taken from --secret, generated with --generate, or prompted for.`,
		Example: `  pwm account add email me@example.com
  pwm account add email me@example.com --generate --length 20`,
		Args: cobra.ExactArgs(2),
		RunE: runAccountAdd,
	}
	add.Flags().StringVarP(&accountSecret, "secret", "s", "", "Secret to store (prompted if omitted)")
	addGeneratorFlags(add)
	cmd.AddCommand(add)

	edit := &cobra.Command{
		Use:   "edit <platform> <account>",
		Short: "Rename an account and/or change its secret",
		Long: `Edit renames an account and/or replaces its secret in a single save.

Without --name or --secret a new secret is prompted for; leaving the
prompt blank keeps the current one.`,
		Example: `  pwm account edit email me@example.com --name work@example.com
  pwm account edit email me@example.com --generate`,
		Args: cobra.ExactArgs(2),
		RunE: runAccountEdit,
	}
	edit.Flags().StringVarP(&accountName, "name", "n", "", "New account name")
	edit.Flags().StringVarP(&accountSecret, "secret", "s", "", "New secret")
	addGeneratorFlags(edit)
	cmd.AddCommand(edit)

	rm := &cobra.Command{
		Use:     "rm <platform> <account>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove an account",
		Args:    cobra.ExactArgs(2),
		RunE:    runAccountRemove,
	}
	rm.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	cmd.AddCommand(rm)

	return cmd
}

func addGeneratorFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&accountGenerate, "generate", "g", false, "Generate a random secret")
	cmd.Flags().IntVarP(&accountLength, "length", "l", 0, "Generated secret length (default from config)")
	cmd.Flags().BoolVar(&accountNoSymbols, "no-symbols", false, "Generate letters and digits only")
	cmd.MarkFlagsMutuallyExclusive("secret", "generate")
}

func runAccountAdd(cmd *cobra.Command, args []string) error {
	platform, account := args[0], args[1]

	index, passphrase, err := unlock("Master key: ")
	if err != nil {
		return err
	}
	if err := requirePlatform(index, "add account", platform); err != nil {
		return err
	}

	secret, err := accountSecretInput("Secret: ")
	if err != nil {
		return err
	}

	replaced := index.HasAccount(platform, account)
	if err := index.AddAccount(platform, account, secret, passphrase); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":   true,
			"platform":  platform,
			"account":   account,
			"replaced":  replaced,
			"generated": accountGenerate,
		})
	} else if replaced {
		printSuccess("Replaced secret of %s/%s", platform, account)
	} else {
		printSuccess("Added account %s/%s", platform, account)
	}

	return nil
}

func runAccountEdit(cmd *cobra.Command, args []string) error {
	platform, account := args[0], args[1]

	index, passphrase, err := unlock("Master key: ")
	if err != nil {
		return err
	}
	if !index.HasAccount(platform, account) {
		return &models.VaultError{Op: "change account", Kind: models.ErrNotFound, Platform: platform, Account: account}
	}

	secret := accountSecret
	switch {
	case accountGenerate:
		secret, err = apiClient.GeneratePassword(accountLength, !accountNoSymbols && cfg.Generator.Symbols)
	case secret == "" && accountName == "":
		secret, err = promptHidden("New secret (blank keeps current): ")
	}
	if err != nil {
		return err
	}

	if err := index.ChangeAccount(platform, account, accountName, secret, passphrase); err != nil {
		return err
	}

	newName := account
	if accountName != "" {
		newName = accountName
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":  true,
			"platform": platform,
			"account":  newName,
		})
	} else {
		printSuccess("Updated account %s/%s", platform, newName)
	}

	return nil
}

func runAccountRemove(cmd *cobra.Command, args []string) error {
	platform, account := args[0], args[1]

	index, passphrase, err := unlock("Master key: ")
	if err != nil {
		return err
	}
	if !index.HasAccount(platform, account) {
		return &models.VaultError{Op: "delete account", Kind: models.ErrNotFound, Platform: platform, Account: account}
	}

	if !assumeYes {
		ok, err := confirm("Delete account " + platform + "/" + account + "?")
		if err != nil {
			return err
		}
		if !ok {
			printWarning("Aborted")
			return nil
		}
	}

	if err := index.DeleteAccount(platform, account, passphrase); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":  true,
			"platform": platform,
			"account":  account,
		})
	} else {
		printSuccess("Removed account %s/%s", platform, account)
	}

	return nil
}

// accountSecretInput resolves the secret for account add.
func accountSecretInput(prompt string) (string, error) {
	if accountGenerate {
		return apiClient.GeneratePassword(accountLength, !accountNoSymbols && cfg.Generator.Symbols)
	}
	if accountSecret != "" {
		return accountSecret, nil
	}
	return promptHidden(prompt)
}

func requirePlatform(index *vault.Index, op, platform string) error {
	if !index.HasPlatform(platform) {
		return &models.VaultError{Op: op, Kind: models.ErrNotFound, Platform: platform}
	}
	return nil
}
