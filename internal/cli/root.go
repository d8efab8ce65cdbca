package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// cliContext is shared by every subcommand of one root command
type cliContext struct {
	cfg    *Config
	client *Client
}

func (c *cliContext) out(cmd *cobra.Command) *Output {
	return NewOutput(c.cfg.Output, cmd.OutOrStdout())
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	c := &cliContext{cfg: DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "bjgame",
		Short: "CLI tool for the blackjack API",
		Long: `bjgame is a CLI tool for playing blackjack against the blackjack JSON API.

It covers guest login, starting and playing games, live game events,
history and the leaderboard, and channel allow-list administration.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.LoadToken(); err != nil {
				return err
			}
			c.client = NewClient(c.cfg.ServerURL, c.cfg.Token, c.cfg.AdminKey)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.cfg.ServerURL, "server", c.cfg.ServerURL, "Server URL (env: BJGAME_SERVER)")
	rootCmd.PersistentFlags().StringVar(&c.cfg.Token, "token", c.cfg.Token, "Session token (env: BJGAME_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&c.cfg.TokenFile, "token-file", c.cfg.TokenFile, "Token file path (env: BJGAME_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVar(&c.cfg.AdminKey, "admin-key", c.cfg.AdminKey, "Admin key for channel commands (env: BJGAME_ADMIN_KEY)")
	rootCmd.PersistentFlags().StringVarP(&c.cfg.Output, "output", "o", c.cfg.Output, "Output format: text, json")

	rootCmd.AddCommand(newPlayerCmd(c))
	rootCmd.AddCommand(newGameCmd(c))
	rootCmd.AddCommand(newHistoryCmd(c))
	rootCmd.AddCommand(newLeaderboardCmd(c))
	rootCmd.AddCommand(newChannelsCmd(c))
	rootCmd.AddCommand(newHealthCmd(c))
	rootCmd.AddCommand(newAdminCmd())

	return rootCmd
}

// Execute runs the root command, cancelling on SIGINT or SIGTERM
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
