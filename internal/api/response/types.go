package response

import (
	"time"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/auth"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
)

// Player represents a player in API responses
type Player struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Card is one face-up card
type Card struct {
	Code string `json:"code"`
	Rank string `json:"rank"`
	Suit string `json:"suit"`
	Text string `json:"text"`
}

// CardFromModel converts a model.Card
func CardFromModel(c model.Card) Card {
	return Card{
		Code: c.Code(),
		Rank: c.Rank.String(),
		Suit: c.Suit.Name(),
		Text: c.String(),
	}
}

// Hand is a list of face-up cards plus their value
type Hand struct {
	Cards []Card `json:"cards"`
	Value int    `json:"value"`
	Soft  bool   `json:"soft"`
	Text  string `json:"text"`
}

// HandFromModel converts a model.Hand
func HandFromModel(h model.Hand) Hand {
	cards := make([]Card, len(h))
	for i, c := range h {
		cards[i] = CardFromModel(c)
	}
	return Hand{
		Cards: cards,
		Value: scoring.HandValue(h),
		Soft:  scoring.IsSoft(h),
		Text:  scoring.Describe(h),
	}
}

// Game is the presentation of a session. While the player is still acting
// the dealer hand holds only the up card and HiddenCards counts the rest.
type Game struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	State       string    `json:"state"`
	Outcome     string    `json:"outcome,omitempty"`
	Result      string    `json:"result,omitempty"`
	Player      Hand      `json:"player"`
	Dealer      Hand      `json:"dealer"`
	HiddenCards int       `json:"hidden_cards"`
	CardsLeft   int       `json:"cards_left"`
	StartedAt   time.Time `json:"started_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GameFromSnapshot converts a model.GameSnapshot, hiding the hole card
func GameFromSnapshot(g model.GameSnapshot) Game {
	visible := g.VisibleDealerHand()
	return Game{
		ID:          string(g.ID),
		Owner:       string(g.Owner),
		State:       string(g.State),
		Outcome:     string(g.Outcome),
		Result:      ResultText(g.Outcome),
		Player:      HandFromModel(g.PlayerHand),
		Dealer:      HandFromModel(visible),
		HiddenCards: len(g.DealerHand) - len(visible),
		CardsLeft:   g.CardsLeft,
		StartedAt:   g.StartedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// ResultText returns the banner shown for a finished game
func ResultText(o model.Outcome) string {
	switch o {
	case model.OutcomeWin:
		return "You Win! 🎉"
	case model.OutcomeLose:
		return "You Lose 😢"
	case model.OutcomeDraw:
		return "Draw"
	default:
		return ""
	}
}

// Action is the response to a hit or stand
type Action struct {
	Game    Game     `json:"game"`
	Applied bool     `json:"applied"`
	History *History `json:"history,omitempty"`
}

// ActionFromResult converts the controller's result of a hit or stand
func ActionFromResult(game model.GameSnapshot, applied bool, rec *model.HistoryRecord) Action {
	a := Action{
		Game:    GameFromSnapshot(game),
		Applied: applied,
	}
	if rec != nil {
		h := HistoryFromModel(*rec)
		a.History = &h
	}
	return a
}

// ActionError reports a game that finished but whose result could not be
// saved. The error sits where clients look for it; the action carries the
// final game so the outcome is not lost.
type ActionError struct {
	Error  apierr.APIError `json:"error"`
	Action Action          `json:"action"`
}

// History is a player's lifetime record
type History struct {
	PlayerID      string `json:"player_id"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Draws         int    `json:"draws"`
	MaxStreak     int    `json:"max_streak"`
	CurrentStreak int    `json:"current_streak"`
	LastResult    string `json:"last_result,omitempty"`
}

// HistoryFromModel converts a model.HistoryRecord
func HistoryFromModel(r model.HistoryRecord) History {
	return History{
		PlayerID:      string(r.PlayerID),
		Wins:          r.Wins,
		Losses:        r.Losses,
		Draws:         r.Draws,
		MaxStreak:     r.MaxStreak,
		CurrentStreak: r.CurrentStreak,
		LastResult:    string(r.Last()),
	}
}

// Leaderboard lists the best records
type Leaderboard struct {
	Entries []History `json:"entries"`
}

// LeaderboardFromModel converts a ranked list of records
func LeaderboardFromModel(records []model.HistoryRecord) Leaderboard {
	entries := make([]History, len(records))
	for i, r := range records {
		entries[i] = HistoryFromModel(r)
	}
	return Leaderboard{Entries: entries}
}

// Channels lists the allowed channels. An empty list allows every channel.
type Channels struct {
	Channels []string `json:"channels"`
}

// ChannelsFromModel converts the allow-list
func ChannelsFromModel(ids []model.ChannelID) Channels {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return Channels{Channels: out}
}

// ChannelAllowed reports whether a single channel may host games
type ChannelAllowed struct {
	ChannelID string `json:"channel_id"`
	Allowed   bool   `json:"allowed"`
}

// Health is the health check response
type Health struct {
	Status      string `json:"status"`
	ActiveGames int    `json:"active_games"`
}
