package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/mcoot/blackjack-go/internal/api"
	"github.com/mcoot/blackjack-go/internal/api/sse"
	"github.com/mcoot/blackjack-go/internal/config"
	"github.com/mcoot/blackjack-go/internal/dependencies/random"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/auth"
	"github.com/mcoot/blackjack-go/internal/services/channels"
	"github.com/mcoot/blackjack-go/internal/services/deck"
	"github.com/mcoot/blackjack-go/internal/services/game"
	"github.com/mcoot/blackjack-go/internal/services/history"
	"github.com/mcoot/blackjack-go/internal/services/registry"
	"github.com/mcoot/blackjack-go/internal/services/render"
	"github.com/mcoot/blackjack-go/internal/storage"
	"github.com/mcoot/blackjack-go/internal/storage/jsonfile"
	"github.com/mcoot/blackjack-go/internal/storage/memory"
	redisstorage "github.com/mcoot/blackjack-go/internal/storage/redis"
	"github.com/mcoot/blackjack-go/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  quartz.Clock
	Random random.Random

	// Services
	Registry       *game.Registry
	GameController *game.Controller
	HistoryService *history.Service
	ChannelService *channels.Service
	AuthService    *auth.Service
	Renderer       *render.Renderer
	HubManager     *sse.HubManager

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// DataDir holds the JSON documents for the "json" backend
	DataDir string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file for the "sqlite" backend
	SQLitePath string
	// SessionTimeout is the idle limit of a game; zero uses the default
	SessionTimeout time.Duration
	// CardDir holds the card art used by the renderer
	CardDir string
}

// FromConfig maps the server configuration onto a factory Config
func FromConfig(c config.Config, logger *slog.Logger) Config {
	cfg := Config{
		AuthConfig:     auth.DefaultConfig(),
		Logger:         logger,
		StorageType:    c.StorageType,
		DataDir:        c.DataDir,
		SQLitePath:     c.SQLitePath,
		SessionTimeout: c.SessionTimeout,
		CardDir:        c.CardDir,
	}
	cfg.AuthConfig.AdminKeyHash = c.AdminKeyHash
	if c.StorageType == config.StorageRedis {
		rc := redisstorage.DefaultConfig()
		rc.URL = c.RedisURL
		cfg.RedisConfig = &rc
	}
	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	clk := quartz.NewReal()
	rnd := random.New()

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}

	reg := game.NewRegistry(clk, rnd)
	return newWithDependencies(store, clk, rnd, reg, authCfg, cfg.SessionTimeout, cfg.CardDir, logger), nil
}

func openStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageMemory
	}

	switch storageType {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageJSON:
		if cfg.DataDir == "" {
			return nil, errors.New("DataDir required when StorageType is json")
		}
		return jsonfile.New(cfg.DataDir)
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case config.StorageSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk quartz.Clock,
	rnd random.Random,
	reg *game.Registry,
	authCfg auth.Config,
	timeout time.Duration,
	cardDir string,
	logger *slog.Logger,
) *App {
	historyService := history.New(store, logger)
	channelService := channels.New(store, logger)
	gameController := game.NewController(reg, historyService, clk, timeout, logger)
	authService := auth.New(store, clk, rnd, authCfg)
	hubManager := sse.NewHubManager(logger)

	gameController.Subscribe(sse.NewBroadcaster(hubManager, logger).Publish)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Registry:       reg,
		GameController: gameController,
		HistoryService: historyService,
		ChannelService: channelService,
		AuthService:    authService,
		Renderer:       render.New(cardDir, logger),
		HubManager:     hubManager,
		Logger:         logger,
	}
}

// newDeckRegistry returns a registry whose sessions deal from next
func newDeckRegistry(clk quartz.Clock, next func() *deck.Deck) *game.Registry {
	return registry.New[*game.Session](func(playerID model.PlayerID) (*game.Session, error) {
		return game.NewSession(model.SessionID(uuid.NewString()), playerID, next(), clk)
	})
}

// Load reads persisted history and the channel allow-list
func (a *App) Load(ctx context.Context) error {
	if err := a.HistoryService.Load(ctx); err != nil {
		return err
	}
	return a.ChannelService.Load(ctx)
}

// Router builds the HTTP API over the app's services
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:         a.Logger,
		AuthService:    a.AuthService,
		GameController: a.GameController,
		HistoryService: a.HistoryService,
		ChannelService: a.ChannelService,
		Renderer:       a.Renderer,
		HubManager:     a.HubManager,
	})
}

// StartJanitor drops idle event hubs and expired login sessions every
// interval until ctx is cancelled. The ticker is registered before it returns.
func (a *App) StartJanitor(ctx context.Context, interval time.Duration) quartz.Waiter {
	return a.Clock.TickerFunc(ctx, interval, func() error {
		removed := a.HubManager.CleanupEmptyHubs()
		a.AuthService.CleanExpiredSessions()
		if removed > 0 {
			a.Logger.Debug("janitor removed idle hubs", slog.Int("count", removed))
		}
		return nil
	}, "janitor")
}

// Close ends every event stream and releases storage
func (a *App) Close() error {
	a.HubManager.CloseAll()
	return a.Storage.Close()
}
