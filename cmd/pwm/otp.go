package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/SegFaultAndEC/password-manager/internal/models"
)

func newOTPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "otp <platform> <account>",
		Short: "Print the current TOTP code of an account",
		Long: `Otp treats the account secret as a base32 TOTP seed or an otpauth:// URI
and prints the code for the current time step.`,
		Example: `  pwm otp github octocat-2fa`,
		Args:    cobra.ExactArgs(2),
		RunE:    runOTP,
	}
}

func runOTP(cmd *cobra.Command, args []string) error {
	platform, account := args[0], args[1]

	index, passphrase, err := unlock("Master key: ")
	if err != nil {
		return err
	}

	secret, err := index.Secret(platform, account, passphrase)
	if err != nil {
		return err
	}

	if err := apiClient.TOTP.IsValidSecret(secret); err != nil {
		return &models.VaultError{Op: "otp", Kind: models.ErrInvalidInput, Platform: platform, Account: account, Err: err}
	}

	code, err := apiClient.TOTP.GenerateCode(secret)
	if err != nil {
		return err
	}
	_, remaining := apiClient.TOTP.TimeWindow()

	if jsonOutput {
		printJSON(map[string]interface{}{
			"platform":   platform,
			"account":    account,
			"code":       code,
			"expires_in": int(remaining.Round(time.Second).Seconds()),
		})
	} else {
		secretColor.Fprint(stdout, code)
		printInfo(" (valid for %v)", remaining.Round(time.Second))
	}

	return nil
}
