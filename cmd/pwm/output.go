package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/SegFaultAndEC/password-manager/internal/models"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	secretColor  = color.New(color.FgHiBlue, color.Bold)
)

func printSuccess(format string, args ...interface{}) {
	successColor.Fprintf(stdout, format+"\n", args...)
}

func printInfo(format string, args ...interface{}) {
	infoColor.Fprintf(stdout, format+"\n", args...)
}

func printWarning(format string, args ...interface{}) {
	warnColor.Fprintf(stderr, format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	errorColor.Fprintf(stderr, format+"\n", args...)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		printError("Failed to encode output: %v", err)
	}
}

// printList prints names one per line, or as a JSON array.
func printList(key string, names []string, empty string) {
	if jsonOutput {
		printJSON(map[string]interface{}{key: names})
		return
	}

	if len(names) == 0 {
		printInfo("%s", empty)
		return
	}
	for _, name := range names {
		fmt.Fprintln(stdout, name)
	}
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
}

// reportError prints a failed command's error in the selected format.
func reportError(err error) {
	if jsonOutput {
		printJSON(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
			"code":    models.ErrorCode(err),
		})
		return
	}
	printError("Error: %v", err)
}

// exitCode maps error kinds to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, models.ErrWrongKeyOrCorrupt):
		return 3
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrVaultMissing):
		return 4
	case errors.Is(err, models.ErrInvalidInput):
		return 2
	default:
		return 1
	}
}
