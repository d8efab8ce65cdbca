package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
	"github.com/mcoot/blackjack-go/internal/api/handler"
	"github.com/mcoot/blackjack-go/internal/api/middleware"
	"github.com/mcoot/blackjack-go/internal/api/sse"
	sharedmw "github.com/mcoot/blackjack-go/internal/middleware"
	"github.com/mcoot/blackjack-go/internal/services/auth"
	"github.com/mcoot/blackjack-go/internal/services/channels"
	"github.com/mcoot/blackjack-go/internal/services/game"
	"github.com/mcoot/blackjack-go/internal/services/history"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	GameController game.ControllerInterface
	HistoryService *history.Service
	ChannelService *channels.Service
	Renderer       handler.TableRenderer
	HubManager     *sse.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.Renderer, cfg.HubManager, cfg.Logger)
	historyHandler := handler.NewHistoryHandler(cfg.HistoryService)
	channelHandler := handler.NewChannelHandler(cfg.ChannelService)

	authMiddleware := middleware.Auth(cfg.AuthService)
	adminMiddleware := middleware.Admin(cfg.AuthService)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(sharedmw.RequestID())
	api.Use(sharedmw.Recovery(cfg.Logger, writePanic))
	api.Use(sharedmw.Logging(cfg.Logger))

	// Player routes
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	players := api.PathPrefix("/players").Subrouter()
	players.Use(authMiddleware)
	players.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	players.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)

	// Game routes
	games := api.PathPrefix("/games").Subrouter()
	games.Use(authMiddleware)
	games.HandleFunc("", gameHandler.Start).Methods(http.MethodPost)
	games.HandleFunc("/{owner}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{owner}/hit", gameHandler.Hit).Methods(http.MethodPost)
	games.HandleFunc("/{owner}/stand", gameHandler.Stand).Methods(http.MethodPost)
	games.HandleFunc("/{owner}/table.png", gameHandler.Table).Methods(http.MethodGet)
	games.HandleFunc("/{owner}/events", gameHandler.Events).Methods(http.MethodGet)

	// History routes
	historyRoutes := api.PathPrefix("/history").Subrouter()
	historyRoutes.Use(authMiddleware)
	historyRoutes.HandleFunc("", historyHandler.Leaderboard).Methods(http.MethodGet)
	historyRoutes.HandleFunc("/{player}", historyHandler.Get).Methods(http.MethodGet)

	// Channel allow-list: the check is public, administration needs the admin key
	api.HandleFunc("/channels/{id}/allowed", channelHandler.Allowed).Methods(http.MethodGet)
	admin := api.PathPrefix("/channels").Subrouter()
	admin.Use(adminMiddleware)
	admin.HandleFunc("", channelHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("", channelHandler.Allow).Methods(http.MethodPost)
	admin.HandleFunc("/{id}", channelHandler.Remove).Methods(http.MethodDelete)

	api.HandleFunc("/health", handler.Health(cfg.GameController)).Methods(http.MethodGet)

	return r
}

// writePanic answers a recovered panic with the API's JSON error body
func writePanic(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
