package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/blackjack-go/internal/api"
	"github.com/mcoot/blackjack-go/internal/config"
	"github.com/mcoot/blackjack-go/internal/discord"
	"github.com/mcoot/blackjack-go/internal/factory"
	"github.com/mcoot/blackjack-go/internal/services/render"
)

const janitorInterval = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return err
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(factory.FromConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close storage", slog.String("error", err.Error()))
		}
	}()

	if err := app.Load(ctx); err != nil {
		logger.Error("failed to load persisted state", slog.String("error", err.Error()))
		return err
	}

	if cfg.FetchCardArt {
		client := &http.Client{Timeout: 30 * time.Second}
		if err := render.FetchCardArt(ctx, client, cfg.CardDir, cfg.CardArtURL, logger); err != nil {
			// Missing art falls back to placeholders
			logger.Warn("could not fetch card art", slog.String("error", err.Error()))
		}
	}

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(app.Router(), serverConfig, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server started", slog.String("addr", server.Addr()))
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		app.HubManager.CloseAll()
		return server.Shutdown(context.Background())
	})

	g.Go(func() error {
		err := app.StartJanitor(gctx, janitorInterval).Wait()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if cfg.DiscordToken != "" {
		g.Go(func() error {
			return discord.Run(gctx, discord.Config{
				Token:   cfg.DiscordToken,
				GuildID: cfg.DiscordGuild,
			}, discord.Deps{
				Controller: app.GameController,
				History:    app.HistoryService,
				Channels:   app.ChannelService,
				Renderer:   app.Renderer,
			}, logger.With(slog.String("gateway", "discord")))
		})
	} else {
		logger.Info("discord gateway disabled, BJ_DISCORD_TOKEN not set")
	}

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}
