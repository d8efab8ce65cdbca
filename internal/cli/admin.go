package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/blackjack-go/internal/services/auth"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Server administration helpers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "hash-key <key>",
		Short: "Print the bcrypt hash to set as BJ_ADMIN_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		// Runs offline
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashAdminKey(args[0])
			if err != nil {
				return fmt.Errorf("hash key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	})

	return cmd
}
