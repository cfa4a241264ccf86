package main

import (
	"github.com/spf13/cobra"

	"github.com/SegFaultAndEC/password-manager/internal/events"
	"github.com/SegFaultAndEC/password-manager/internal/models"
)

func newPlatformsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "platforms",
		Aliases: []string{"ls"},
		Short:   "List platforms",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, _, err := unlock("Master key: ")
			if err != nil {
				return err
			}

			printList("platforms", index.Platforms(), "No platforms yet")
			return nil
		},
	}
}

func newPlatformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platform",
		Short: "Add or remove platforms",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "add <name>",
		Short:   "Add a platform",
		Example: `  pwm platform add email`,
		Args:    cobra.ExactArgs(1),
		RunE:    runPlatformAdd,
	})

	rm := &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a platform and all of its accounts",
		Args:    cobra.ExactArgs(1),
		RunE:    runPlatformRemove,
	}
	rm.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	cmd.AddCommand(rm)

	return cmd
}

// assumeYes skips confirmation prompts of destructive commands.
var assumeYes bool

func runPlatformAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	index, passphrase, err := unlock("Master key: ")
	if err != nil {
		return err
	}

	existed := index.HasPlatform(name)
	if err := index.AddPlatform(name, passphrase); err != nil {
		return err
	}

	events.FromContext(cmd.Context()).WithField("platform", name).Debug("Platform added")

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":  true,
			"platform": name,
			"created":  !existed,
		})
	} else if existed {
		printWarning("Platform %q already exists", name)
	} else {
		printSuccess("Added platform %q", name)
	}

	return nil
}

func runPlatformRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	index, passphrase, err := unlock("Master key: ")
	if err != nil {
		return err
	}

	if !index.HasPlatform(name) {
		return models.Errorf("delete platform", models.ErrNotFound, "unknown platform %q", name)
	}

	if !assumeYes {
		ok, err := confirm("Delete platform " + name + " and all of its accounts?")
		if err != nil {
			return err
		}
		if !ok {
			printWarning("Aborted")
			return nil
		}
	}

	if err := index.DeletePlatform(name, passphrase); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":  true,
			"platform": name,
		})
	} else {
		printSuccess("Removed platform %q", name)
	}

	return nil
}
