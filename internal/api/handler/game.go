package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
	"github.com/mcoot/blackjack-go/internal/api/middleware"
	"github.com/mcoot/blackjack-go/internal/api/response"
	"github.com/mcoot/blackjack-go/internal/api/sse"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/game"
)

// TableRenderer draws the table image for a game
type TableRenderer interface {
	Render(player, dealer model.Hand, hideDealerSecondCard bool) ([]byte, error)
}

// GameHandler handles game-related endpoints
type GameHandler struct {
	controller game.ControllerInterface
	renderer   TableRenderer
	hubs       *sse.HubManager
	logger     *slog.Logger
}

// NewGameHandler creates a new game handler. renderer and hubs may be nil,
// which disables the table image and event stream routes.
func NewGameHandler(
	controller game.ControllerInterface,
	renderer TableRenderer,
	hubs *sse.HubManager,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		controller: controller,
		renderer:   renderer,
		hubs:       hubs,
		logger:     logger,
	}
}

// owner resolves the {owner} path segment; "me" is the caller
func owner(r *http.Request, caller *model.Player) model.PlayerID {
	id := mux.Vars(r)["owner"]
	if id == "" || id == "me" {
		return caller.ID
	}
	return model.PlayerID(id)
}

// Start handles POST /api/v1/games
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	g, err := h.controller.Start(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromSnapshot(g))
}

// Get handles GET /api/v1/games/{owner}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	g, err := h.controller.Current(r.Context(), owner(r, player))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromSnapshot(g))
}

// Hit handles POST /api/v1/games/{owner}/hit
func (h *GameHandler) Hit(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	res, err := h.controller.Hit(r.Context(), owner(r, player), player.ID)
	h.writeAction(w, res, err)
}

// Stand handles POST /api/v1/games/{owner}/stand
func (h *GameHandler) Stand(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	res, err := h.controller.Stand(r.Context(), owner(r, player), player.ID)
	h.writeAction(w, res, err)
}

// writeAction reports a hit or stand. A finished game whose history could
// not be saved still returns its final state alongside the error code.
func (h *GameHandler) writeAction(w http.ResponseWriter, res game.ActionResult, err error) {
	if err != nil && res.History != nil {
		h.logger.Warn("game settled without saving history",
			slog.String("player_id", string(res.Game.Owner)),
			slog.Any("error", err))
		status, apiErr := apierr.Describe(err)
		response.JSON(w, status, response.ActionError{
			Error:  apiErr,
			Action: response.ActionFromResult(res.Game, res.Applied, res.History),
		})
		return
	}
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ActionFromResult(res.Game, res.Applied, res.History))
}

// Table handles GET /api/v1/games/{owner}/table.png
func (h *GameHandler) Table(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	if h.renderer == nil {
		WriteError(w, apierr.NewRenderError())
		return
	}

	g, err := h.controller.Current(r.Context(), owner(r, player))
	if err != nil {
		WriteError(w, err)
		return
	}

	img, err := h.renderer.Render(g.PlayerHand, g.DealerHand, g.HideDealerCard())
	if err != nil {
		h.logger.Error("render table failed",
			slog.String("session_id", string(g.ID)),
			slog.Any("error", err))
		WriteError(w, apierr.NewRenderError())
		return
	}

	response.PNG(w, img)
}

// Events handles GET /api/v1/games/{owner}/events
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	if h.hubs == nil {
		WriteError(w, apierr.NewInternalError())
		return
	}
	id := owner(r, player)

	var initial []byte
	if g, err := h.controller.Current(r.Context(), id); err == nil {
		initial, err = sse.FormatEvent(model.Event{
			Type:      sse.SnapshotEvent,
			Timestamp: g.UpdatedAt,
			PlayerID:  g.Owner,
			SessionID: g.ID,
			Game:      g,
		})
		if err != nil {
			h.logger.Error("encode game snapshot failed", slog.Any("error", err))
		}
	}

	sse.ServeSSE(w, r, h.hubs, id, player.ID, initial)
}
