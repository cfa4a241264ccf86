package main

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var (
	generateLength    int
	generateNoSymbols bool
	generateCopy      bool
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate a random password",
		Example: `  pwm generate
  pwm generate --length 24 --no-symbols --copy`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}

	cmd.Flags().IntVarP(&generateLength, "length", "l", 0, "Password length (default from config)")
	cmd.Flags().BoolVar(&generateNoSymbols, "no-symbols", false, "Use letters and digits only")
	cmd.Flags().BoolVarP(&generateCopy, "copy", "c", false, "Copy the password to the clipboard")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	password, err := apiClient.GeneratePassword(generateLength, !generateNoSymbols && cfg.Generator.Symbols)
	if err != nil {
		return err
	}

	if generateCopy {
		if err := clipboard.WriteAll(password); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		printSuccess("Copied password to the clipboard")
		return nil
	}

	if jsonOutput {
		printJSON(map[string]interface{}{"password": password})
	} else {
		fmt.Fprintln(stdout, password)
	}

	return nil
}
