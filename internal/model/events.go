package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventGameStarted  EventType = "game_started"
	EventCardDrawn    EventType = "card_drawn"
	EventGameFinished EventType = "game_finished"
	EventGameExpired  EventType = "game_expired"
)

// Event is emitted by the game controller on every session transition
type Event struct {
	Type      EventType
	Timestamp time.Time
	PlayerID  PlayerID
	SessionID SessionID
	Game      GameSnapshot
}
