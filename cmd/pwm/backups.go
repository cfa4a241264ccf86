package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newBackupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List vault backups",
		Long: `Backups lists the copies of the vault kept next to it, oldest first.

Every save copies the previous vault file to a backup named after the local
time of the save.`,
		Args: cobra.NoArgs,
		RunE: runBackups,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every backup",
		Long: `Clear removes every file in the vault directory except the vault
itself. Files that cannot be removed are skipped. The master key is required.`,
		Args: cobra.NoArgs,
		RunE: runBackupsClear,
	}
	clearCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	cmd.AddCommand(clearCmd)

	return cmd
}

func runBackups(cmd *cobra.Command, args []string) error {
	backups, err := apiClient.Vault.Backups()
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"dir":     apiClient.Vault.Dir(),
			"backups": backups,
		})
		return nil
	}

	if len(backups) == 0 {
		printInfo("No backups in %s", apiClient.Vault.Dir())
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED")
	for _, b := range backups {
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Name, formatBytes(b.Size), b.ModTime.Format(time.DateTime))
	}
	return w.Flush()
}

func runBackupsClear(cmd *cobra.Command, args []string) error {
	if _, _, err := unlock("Master key: "); err != nil {
		return err
	}

	if !assumeYes {
		ok, err := confirm("Delete every file in " + apiClient.Vault.Dir() + " except the vault?")
		if err != nil {
			return err
		}
		if !ok {
			printWarning("Aborted")
			return nil
		}
	}

	removed, err := apiClient.Vault.ClearBackups()
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success": true,
			"removed": removed,
		})
	} else {
		printSuccess("Removed %d backup(s)", removed)
	}

	return nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
