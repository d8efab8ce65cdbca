package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/blackjack-go/internal/api/request"
	"github.com/mcoot/blackjack-go/internal/api/response"
)

func newChannelsCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "Channel allow-list commands (list, allow and remove need --admin-key)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List allowed channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Channels
			if err := c.client.Get(cmd.Context(), "/api/v1/channels", &result); err != nil {
				return err
			}

			c.out(cmd).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "allow <channel>",
		Short: "Allow games in a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Channels
			req := request.AllowChannelRequest{ChannelID: args[0]}
			if err := c.client.Post(cmd.Context(), "/api/v1/channels", req, &result); err != nil {
				return err
			}

			c.out(cmd).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <channel>",
		Short: "Stop allowing games in a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.client.Delete(cmd.Context(), "/api/v1/channels/"+url.PathEscape(args[0])); err != nil {
				return err
			}

			c.out(cmd).PrintMessage("Channel " + args[0] + " removed")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <channel>",
		Short: "Check whether games may be played in a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.ChannelAllowed
			if err := c.client.Get(cmd.Context(), "/api/v1/channels/"+url.PathEscape(args[0])+"/allowed", &result); err != nil {
				return err
			}

			c.out(cmd).Print(result)
			return nil
		},
	})

	return cmd
}
