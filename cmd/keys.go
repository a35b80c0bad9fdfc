package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/validatorlabs/kms/config"
	"github.com/validatorlabs/kms/core"
)

func keysCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "manage signing keys",
		RunE:  noCommand,
	}

	cmd.AddCommand(
		keysListCmd(ctx),
	)

	return cmd
}

// Command for listing the public keys of the configured keyring
func keysListCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "Builds the keyring and prints its public keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := ctx.BuildSigners()
			if err != nil {
				return err
			}
			keyring, err := core.NewKeyring(cmd.Context(), entries)
			if err != nil {
				return err
			}
			for _, info := range keyring.List() {
				fmt.Printf("%s:%s\t%s\n", info.Provider, info.KeyID, info.PubKey)
			}
			return nil
		},
	}
	return cmd
}
