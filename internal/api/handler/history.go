package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
	"github.com/mcoot/blackjack-go/internal/api/middleware"
	"github.com/mcoot/blackjack-go/internal/api/response"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/history"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// HistoryHandler serves player records and the leaderboard
type HistoryHandler struct {
	history *history.Service
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(h *history.Service) *HistoryHandler {
	return &HistoryHandler{history: h}
}

// Get handles GET /api/v1/history/{player}
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["player"]
	if id == "me" {
		id = string(middleware.MustGetPlayer(r.Context()).ID)
	}

	rec, ok := h.history.Get(model.PlayerID(id))
	if !ok {
		WriteError(w, model.ErrHistoryNotFound)
		return
	}
	response.JSON(w, http.StatusOK, response.HistoryFromModel(rec))
}

// Leaderboard handles GET /api/v1/history?limit=n
func (h *HistoryHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLeaderboardSize {
			WriteError(w, apierr.NewInvalidRequestError("limit must be between 1 and 100"))
			return
		}
		limit = n
	}
	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(h.history.Leaderboard(limit)))
}
