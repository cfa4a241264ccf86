package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/SegFaultAndEC/password-manager/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput {
				printJSON(cfg)
				return nil
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = stdout.Write(data)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "example <path>",
		Short:   "Write an example config file",
		Example: `  pwm config example ~/.config/password-manager/password-manager.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ExpandHome(args[0])
			if err := config.SaveExample(path); err != nil {
				return err
			}
			printSuccess("Wrote example config to %s", path)
			return nil
		},
	})

	return cmd
}
