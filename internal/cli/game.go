package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/blackjack-go/internal/api/response"
)

func newGameCmd(c *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameStartCmd(c))
	cmd.AddCommand(newGameGetCmd(c))
	cmd.AddCommand(newGameActionCmd(c, "hit", "Draw a card"))
	cmd.AddCommand(newGameActionCmd(c, "stand", "Stand and let the dealer play"))
	cmd.AddCommand(newGameTableCmd(c))
	cmd.AddCommand(newEventsCmd(c))

	return cmd
}

// gamePath returns the API path of a player's game; no owner means the caller
func gamePath(args []string, suffix string) string {
	owner := "me"
	if len(args) > 0 && args[0] != "" {
		owner = args[0]
	}
	return "/api/v1/games/" + url.PathEscape(owner) + suffix
}

func newGameStartCmd(c *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a new game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game
			if err := c.client.Post(cmd.Context(), "/api/v1/games", nil, &result); err != nil {
				return err
			}

			c.out(cmd).Print(result)
			return nil
		},
	}
}

func newGameGetCmd(c *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get [owner]",
		Short: "Show a game, your own by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game
			if err := c.client.Get(cmd.Context(), gamePath(args, ""), &result); err != nil {
				return err
			}

			c.out(cmd).Print(result)
			return nil
		},
	}
}

func newGameActionCmd(c *cliContext, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " [owner]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Action
			if err := c.client.Post(cmd.Context(), gamePath(args, "/"+action), nil, &result); err != nil {
				var apiErr *APIError
				if errors.As(err, &apiErr) && apiErr.Action != nil {
					c.out(cmd).Print(*apiErr.Action)
				}
				return err
			}

			c.out(cmd).Print(result)
			return nil
		},
	}
}

func newGameTableCmd(c *cliContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "table [owner]",
		Short: "Save the table image as a PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			png, err := c.client.GetRaw(cmd.Context(), gamePath(args, "/table.png"))
			if err != nil {
				return err
			}
			if err := os.WriteFile(file, png, 0644); err != nil {
				return fmt.Errorf("failed to write image: %w", err)
			}

			c.out(cmd).PrintMessage("Table saved to " + file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "table.png", "Where to write the image")

	return cmd
}
