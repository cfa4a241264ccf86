package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent vault activity",
		Long: `History lists recent vault operations from the activity journal, newest
first. The journal never holds platform, account or secret values.`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	entries, err := apiClient.History(historyLimit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]interface{}{"entries": entries})
		return nil
	}

	if len(entries) == 0 {
		if cfg.Journal.Driver == "none" {
			printInfo("The activity journal is disabled")
		} else {
			printInfo("No activity recorded")
		}
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "TIME\tOPERATION\tDETAIL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Time.Local().Format(time.DateTime), e.Operation, e.Detail)
	}
	return w.Flush()
}
