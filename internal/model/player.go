package model

import "time"

// PlayerID uniquely identifies a player across gateways. HTTP guests get a
// "p_" prefixed ID; Discord players use their user snowflake, which keeps
// records in bj_history.json addressable.
type PlayerID string

// Player is an authenticated HTTP guest. Discord players have no Player
// record; the gateway works from the interaction's user.
type Player struct {
	ID          PlayerID
	DisplayName string
	CreatedAt   time.Time
}
