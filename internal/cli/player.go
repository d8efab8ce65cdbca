package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/blackjack-go/internal/api/request"
	"github.com/mcoot/blackjack-go/internal/api/response"
)

func newPlayerCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerGuestCmd(c))
	cmd.AddCommand(newPlayerMeCmd(c))
	cmd.AddCommand(newPlayerLogoutCmd(c))

	return cmd
}

func newPlayerGuestCmd(c *cliContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Create a guest player and save its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.AuthResponse
			req := request.CreateGuestRequest{DisplayName: name}
			if err := c.client.Post(cmd.Context(), "/api/v1/players/guest", req, &result); err != nil {
				return err
			}

			if err := c.cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			c.out(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlayerMeCmd(c *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show current player info",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			if err := c.client.Get(cmd.Context(), "/api/v1/players/me", &result); err != nil {
				return err
			}

			c.out(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerLogoutCmd(c *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.client.Post(cmd.Context(), "/api/v1/players/logout", nil, nil); err != nil {
				return err
			}
			if err := c.cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			c.out(cmd).PrintMessage("Logged out")
			return nil
		},
	}
}
