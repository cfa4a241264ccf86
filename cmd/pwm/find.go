package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "find <query>",
		Short:   "Fuzzy search platform and account names",
		Example: `  pwm find gh`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, _, err := unlock("Master key: ")
			if err != nil {
				return err
			}

			matches := index.Find(args[0])

			if jsonOutput {
				printJSON(map[string]interface{}{"matches": matches})
				return nil
			}

			if len(matches) == 0 {
				printInfo("No matches for %q", args[0])
				return nil
			}

			w := newTable()
			fmt.Fprintln(w, "PLATFORM\tACCOUNT")
			for _, m := range matches {
				fmt.Fprintf(w, "%s\t%s\n", m.Platform, m.Account)
			}
			return w.Flush()
		},
	}
}
