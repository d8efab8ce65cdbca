package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/mcoot/blackjack-go/internal/model"
)

// Slash command names
const (
	CommandBlackjack     = "blackjack"
	CommandAllowChannel  = "blackjack-channel"
	CommandRemoveChannel = "blackjack-channel-remove"
	CommandHistory       = "blackjack-history"
)

// User-facing replies
const (
	msgChannelNotAllowed     = "This channel is not allowed for Blackjack. Please ask admin to set allowed channel."
	msgAlreadyActive         = "You already have an active game. Finish it first."
	msgNotThePlayer          = "You are not the player."
	msgDeckExhausted         = "The deck ran out of cards. This game has been abandoned."
	msgChannelAlreadyAllowed = "This channel is already allowed."
	msgChannelAllowed        = "This channel is now allowed for Blackjack commands."
	msgChannelNotListed      = "This channel was not allowed."
	msgChannelRemoved        = "Blackjack command is no longer allowed in this channel."
	msgNoHistory             = "No history found."
	msgAdminRequired         = "You need administrator permission to run this command."
	msgSaveFailed            = "Could not save the channel list. Please try again later."
)

// Commands returns the application commands the bot registers
func Commands() []*discordgo.ApplicationCommand {
	admin := int64(discordgo.PermissionAdministrator)
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandBlackjack,
			Description: "Start a blackjack game",
		},
		{
			Name:                     CommandAllowChannel,
			Description:              "Set the allowed channel for blackjack",
			DefaultMemberPermissions: &admin,
		},
		{
			Name:                     CommandRemoveChannel,
			Description:              "Remove allowed blackjack channel",
			DefaultMemberPermissions: &admin,
		},
		{
			Name:        CommandHistory,
			Description: "Show your blackjack game history",
		},
	}
}

func (g *Gateway) handleCommand(ctx context.Context, i *discordgo.Interaction) error {
	switch name := i.ApplicationCommandData().Name; name {
	case CommandBlackjack:
		return g.startGame(ctx, i)
	case CommandAllowChannel:
		return g.allowChannel(ctx, i)
	case CommandRemoveChannel:
		return g.removeChannel(ctx, i)
	case CommandHistory:
		return g.showHistory(i)
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

func (g *Gateway) startGame(ctx context.Context, i *discordgo.Interaction) error {
	if !g.channels.IsAllowed(model.ChannelID(i.ChannelID)) {
		return g.ephemeral(i, msgChannelNotAllowed)
	}

	player := model.PlayerID(interactionUser(i).ID)
	snap, err := g.controller.Start(ctx, player)
	switch {
	case errors.Is(err, model.ErrAlreadyActive):
		return g.ephemeral(i, msgAlreadyActive)
	case err != nil:
		return err
	}

	embed, files := g.gameMessage(snap)
	err = g.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Files:      files,
			Components: gameButtons(snap),
		},
	})
	if err != nil {
		// Nobody can press the buttons, so free the player straight away
		g.controller.Expire(ctx, player, snap.ID)
		return err
	}

	msg, err := g.api.InteractionResponse(i)
	if err != nil {
		g.logger.Warn("look up game message",
			slog.String("session_id", string(snap.ID)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if cur, err := g.controller.Current(ctx, player); err == nil && cur.ID == snap.ID {
		g.track(snap.ID, messageRef{channelID: msg.ChannelID, messageID: msg.ID})
	}
	return nil
}

func (g *Gateway) allowChannel(ctx context.Context, i *discordgo.Interaction) error {
	if !isAdmin(i) {
		return g.ephemeral(i, msgAdminRequired)
	}
	err := g.channels.Allow(ctx, model.ChannelID(i.ChannelID))
	switch {
	case errors.Is(err, model.ErrChannelAlreadyAllowed):
		return g.ephemeral(i, msgChannelAlreadyAllowed)
	case err != nil:
		g.logger.Error("allow channel", slog.String("channel_id", i.ChannelID), slog.String("error", err.Error()))
		return g.ephemeral(i, msgSaveFailed)
	}
	return g.say(i, msgChannelAllowed)
}

func (g *Gateway) removeChannel(ctx context.Context, i *discordgo.Interaction) error {
	if !isAdmin(i) {
		return g.ephemeral(i, msgAdminRequired)
	}
	err := g.channels.Remove(ctx, model.ChannelID(i.ChannelID))
	switch {
	case errors.Is(err, model.ErrChannelNotListed):
		return g.ephemeral(i, msgChannelNotListed)
	case err != nil:
		g.logger.Error("remove channel", slog.String("channel_id", i.ChannelID), slog.String("error", err.Error()))
		return g.ephemeral(i, msgSaveFailed)
	}
	return g.say(i, msgChannelRemoved)
}

func (g *Gateway) showHistory(i *discordgo.Interaction) error {
	rec, ok := g.history.Get(model.PlayerID(interactionUser(i).ID))
	if !ok {
		return g.ephemeral(i, msgNoHistory)
	}
	return g.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{historyEmbed(displayName(i), rec)},
		},
	})
}
