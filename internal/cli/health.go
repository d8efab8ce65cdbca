package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/blackjack-go/internal/api/response"
)

func newHealthCmd(c *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Health
			if err := c.client.Get(cmd.Context(), "/api/v1/health", &result); err != nil {
				return err
			}

			c.out(cmd).Print(result)
			return nil
		},
	}
}
