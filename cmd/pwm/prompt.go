package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/SegFaultAndEC/password-manager/internal/models"
)

// Environment variables supplying master keys without prompting.
const (
	PassphraseEnv    = "PWM_PASSPHRASE"
	NewPassphraseEnv = "PWM_NEW_PASSPHRASE"
)

var errPassphraseMismatch = errors.New("master keys did not match")

// readPassphrase returns the master key from the environment or a prompt.
func readPassphrase(prompt string) (string, error) {
	if passphrase, ok := os.LookupEnv(PassphraseEnv); ok {
		return passphrase, nil
	}
	return promptHidden(prompt)
}

// readNewPassphrase returns a new master key from env, or asks for it twice.
func readNewPassphrase(env, prompt, repeat string) (string, error) {
	if passphrase, ok := os.LookupEnv(env); ok {
		return checkPassphrase(passphrase)
	}

	first, err := promptHidden(prompt)
	if err != nil {
		return "", err
	}
	second, err := promptHidden(repeat)
	if err != nil {
		return "", err
	}
	if first != second {
		return "", models.NewError("read master key", models.ErrInvalidInput, errPassphraseMismatch)
	}

	return checkPassphrase(first)
}

func checkPassphrase(passphrase string) (string, error) {
	if passphrase == "" {
		return "", models.Errorf("read master key", models.ErrInvalidInput, "master key must not be empty")
	}
	return passphrase, nil
}

// promptHidden reads one line without echo from a terminal, or as plain
// text when input is piped.
func promptHidden(prompt string) (string, error) {
	fmt.Fprint(stderr, prompt)

	if tty != nil && term.IsTerminal(int(tty.Fd())) {
		// Read password without echo
		value, err := term.ReadPassword(int(tty.Fd()))
		fmt.Fprintln(stderr) // New line after password
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(value), nil
	}

	return readLine()
}

// promptLine reads one visible line.
func promptLine(prompt string) (string, error) {
	fmt.Fprint(stderr, prompt)
	return readLine()
}

// confirm asks a yes/no question, defaulting to no.
func confirm(prompt string) (bool, error) {
	answer, err := promptLine(prompt + " [y/N]: ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func readLine() (string, error) {
	line, err := input.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
