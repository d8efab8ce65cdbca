package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/blackjack-go/internal/api/response"
)

func newHistoryCmd(c *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "history [player]",
		Short: "Show a player's record, your own by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player := "me"
			if len(args) > 0 {
				player = args[0]
			}

			var result response.History
			if err := c.client.Get(cmd.Context(), "/api/v1/history/"+url.PathEscape(player), &result); err != nil {
				return err
			}

			c.out(cmd).Print(result)
			return nil
		},
	}
}

func newLeaderboardCmd(c *cliContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the players with the most wins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Leaderboard
			if err := c.client.Get(cmd.Context(), fmt.Sprintf("/api/v1/history?limit=%d", limit), &result); err != nil {
				return err
			}

			c.out(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of entries (1-100)")

	return cmd
}
