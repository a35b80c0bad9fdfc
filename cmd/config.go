package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/validatorlabs/kms/config"
)

func configCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "manage configuration file",
		RunE:    noCommand,
	}

	cmd.AddCommand(
		configShowCmd(ctx),
		configInitCmd(ctx),
	)

	return cmd
}

// Command for initializing an empty config at the --home location
func configInitCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"i"},
		Short:   "Creates a default config file at path defined by --home",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := ctx.ConfigPath
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists: %s", cfgPath)
			}

			if err := os.MkdirAll(filepath.Dir(cfgPath), os.ModePerm); err != nil {
				return err
			}

			out, err := config.MarshalYAML(config.DefaultConfig())
			if err != nil {
				return err
			}
			return os.WriteFile(cfgPath, out, 0600)
		},
	}
	return cmd
}

// Command for printing current configuration
func configShowCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"s", "list", "l"},
		Short:   "Prints current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := ctx.ConfigPath
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				return fmt.Errorf("config does not exist: %s", cfgPath)
			}

			out, err := config.MarshalJSON(*ctx.Config)
			if err != nil {
				return err
			}

			fmt.Println(string(out))
			return nil
		},
	}

	return cmd
}
