// Package discord runs blackjack games through Discord slash commands and
// message buttons.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/game"
)

// API is the part of *discordgo.Session the gateway calls
type API interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponse(interaction *discordgo.Interaction, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// TableRenderer draws the table image for a game
type TableRenderer interface {
	Render(player, dealer model.Hand, hideDealerSecondCard bool) ([]byte, error)
}

// HistoryReader looks up a player's record
type HistoryReader interface {
	Get(playerID model.PlayerID) (model.HistoryRecord, bool)
}

// ChannelList is the allow-list the gateway enforces and edits
type ChannelList interface {
	IsAllowed(id model.ChannelID) bool
	Allow(ctx context.Context, id model.ChannelID) error
	Remove(ctx context.Context, id model.ChannelID) error
}

// Deps are the services behind the gateway
type Deps struct {
	Controller game.ControllerInterface
	History    HistoryReader
	Channels   ChannelList
	Renderer   TableRenderer
}

type messageRef struct {
	channelID string
	messageID string
}

// Gateway translates Discord interactions into controller calls
type Gateway struct {
	api        API
	controller game.ControllerInterface
	history    HistoryReader
	channels   ChannelList
	renderer   TableRenderer
	logger     *slog.Logger

	mu       sync.Mutex
	messages map[model.SessionID]messageRef
}

// New creates a gateway and subscribes it to controller events
func New(api API, deps Deps, logger *slog.Logger) *Gateway {
	g := &Gateway{
		api:        api,
		controller: deps.Controller,
		history:    deps.History,
		channels:   deps.Channels,
		renderer:   deps.Renderer,
		logger:     logger,
		messages:   make(map[model.SessionID]messageRef),
	}
	deps.Controller.Subscribe(g.onEvent)
	return g
}

// Config holds the bot credentials
type Config struct {
	Token string
	// GuildID registers commands in one guild; empty registers them globally
	GuildID string
}

// Run connects the bot, registers its commands and serves interactions
// until ctx is cancelled.
func Run(ctx context.Context, cfg Config, deps Deps, logger *slog.Logger) error {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	gw := New(dg, deps, logger)
	dg.AddHandler(func(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
		gw.HandleInteraction(ctx, ic.Interaction)
	})

	if err := dg.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer dg.Close()

	if _, err := dg.ApplicationCommandBulkOverwrite(dg.State.User.ID, cfg.GuildID, Commands()); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	logger.Info("discord gateway ready", slog.String("user", dg.State.User.Username))

	<-ctx.Done()
	return nil
}

// HandleInteraction dispatches one interaction
func (g *Gateway) HandleInteraction(ctx context.Context, i *discordgo.Interaction) {
	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		err = g.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		err = g.handleButton(ctx, i)
	default:
		return
	}
	if err != nil {
		g.logger.Error("interaction failed",
			slog.String("interaction_id", i.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (g *Gateway) handleButton(ctx context.Context, i *discordgo.Interaction) error {
	action, owner, err := parseButtonID(i.MessageComponentData().CustomID)
	if err != nil {
		return err
	}
	actor := model.PlayerID(interactionUser(i).ID)
	if actor != owner {
		return g.ephemeral(i, msgNotThePlayer)
	}

	var res game.ActionResult
	switch action {
	case actionHit:
		res, err = g.controller.Hit(ctx, owner, actor)
	default:
		res, err = g.controller.Stand(ctx, owner, actor)
	}

	switch {
	case errors.Is(err, model.ErrNoActiveGame):
		return g.deferUpdate(i)
	case errors.Is(err, model.ErrNotOwner):
		return g.ephemeral(i, msgNotThePlayer)
	case errors.Is(err, model.ErrDeckExhausted):
		return g.ephemeral(i, msgDeckExhausted)
	case errors.Is(err, model.ErrPersistence):
		// The game is settled; show it and keep going
		g.logger.Error("history not saved",
			slog.String("player_id", string(owner)),
			slog.String("error", err.Error()),
		)
	case err != nil:
		return err
	}

	if !res.Applied {
		return g.deferUpdate(i)
	}
	if res.Game.State.IsTerminal() {
		g.forget(res.Game.ID)
	}

	embed, files := g.gameMessage(res.Game)
	components := gameButtons(res.Game)
	return g.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Files:      files,
			Components: components,
		},
	})
}

// gameMessage builds the embed and table attachment for a game. A failed
// render drops the image rather than the update.
func (g *Gateway) gameMessage(snap model.GameSnapshot) (*discordgo.MessageEmbed, []*discordgo.File) {
	embed := gameEmbed(snap)
	png, err := g.renderer.Render(snap.PlayerHand, snap.DealerHand, snap.HideDealerCard())
	if err != nil {
		g.logger.Warn("table render failed",
			slog.String("session_id", string(snap.ID)),
			slog.String("error", err.Error()),
		)
		embed.Image = nil
		return embed, nil
	}
	return embed, []*discordgo.File{tableFile(png)}
}

func (g *Gateway) track(id model.SessionID, ref messageRef) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messages[id] = ref
}

func (g *Gateway) forget(id model.SessionID) (messageRef, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ref, ok := g.messages[id]
	delete(g.messages, id)
	return ref, ok
}

// onEvent is the controller listener. It must not block, so edits run in
// their own goroutine.
func (g *Gateway) onEvent(e model.Event) {
	switch e.Type {
	case model.EventGameFinished:
		g.forget(e.SessionID)
	case model.EventGameExpired:
		ref, ok := g.forget(e.SessionID)
		if !ok {
			return
		}
		go g.deactivate(ref, e.Game)
	}
}

// deactivate strips the buttons from an expired game's message
func (g *Gateway) deactivate(ref messageRef, snap model.GameSnapshot) {
	embeds := []*discordgo.MessageEmbed{gameEmbed(snap)}
	components := []discordgo.MessageComponent{}
	_, err := g.api.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         ref.messageID,
		Channel:    ref.channelID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		g.logger.Warn("deactivate expired game",
			slog.String("session_id", string(snap.ID)),
			slog.String("error", err.Error()),
		)
	}
}

func (g *Gateway) ephemeral(i *discordgo.Interaction, content string) error {
	return g.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func (g *Gateway) say(i *discordgo.Interaction, content string) error {
	return g.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

func (g *Gateway) deferUpdate(i *discordgo.Interaction) error {
	return g.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

// interactionUser returns the invoking user in guilds and DMs alike
func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{}
}

// displayName prefers the guild nickname, then the global name
func displayName(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.Nick != "" {
		return i.Member.Nick
	}
	u := interactionUser(i)
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// isAdmin reports whether the invoking member holds Administrator
func isAdmin(i *discordgo.Interaction) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}
