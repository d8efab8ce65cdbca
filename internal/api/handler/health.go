package handler

import (
	"net/http"

	"github.com/mcoot/blackjack-go/internal/api/response"
)

// ActiveGameCounter reports how many sessions are live
type ActiveGameCounter interface {
	ActiveGames() int
}

// Health handles GET /api/v1/health
func Health(games ActiveGameCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{
			Status:      "ok",
			ActiveGames: games.ActiveGames(),
		})
	}
}
