package model

import "time"

// SessionID uniquely identifies one blackjack session
type SessionID string

// GameState represents the current phase of a session
type GameState string

const (
	GameStateDealing    GameState = "dealing"     // Opening deal in progress
	GameStatePlayerTurn GameState = "player_turn" // Waiting for hit or stand
	GameStateDealerTurn GameState = "dealer_turn" // Dealer drawing, resolved inside stand
	GameStateFinished   GameState = "finished"    // Terminal, carries an outcome
	GameStateAbandoned  GameState = "abandoned"   // Terminal, no outcome (timeout or integrity fault)
)

// IsTerminal reports whether no further action can change the session
func (s GameState) IsTerminal() bool {
	return s == GameStateFinished || s == GameStateAbandoned
}

// Outcome is the result of a finished session from the player's point of view
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeDraw Outcome = "draw"
)

// Valid reports whether o is one of the three recorded outcomes
func (o Outcome) Valid() bool {
	return o == OutcomeWin || o == OutcomeLose || o == OutcomeDraw
}

// GameSnapshot is a point-in-time copy of a session used for presentation.
// It never aliases the live session's hands.
type GameSnapshot struct {
	ID          SessionID
	Owner       PlayerID
	State       GameState
	Outcome     Outcome
	PlayerHand  Hand
	DealerHand  Hand
	PlayerValue int
	DealerValue int // Full dealer value; callers hide it while HideDealerCard is true
	CardsLeft   int
	StartedAt   time.Time
	UpdatedAt   time.Time
}

// HideDealerCard reports whether the dealer's second card is still face down
func (g GameSnapshot) HideDealerCard() bool {
	return !g.State.IsTerminal()
}

// VisibleDealerHand returns the dealer cards a viewer may see
func (g GameSnapshot) VisibleDealerHand() Hand {
	if g.HideDealerCard() && len(g.DealerHand) > 1 {
		return g.DealerHand[:1].Clone()
	}
	return g.DealerHand.Clone()
}
