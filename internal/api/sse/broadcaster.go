package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/blackjack-go/internal/api/response"
	"github.com/mcoot/blackjack-go/internal/model"
)

// SnapshotEvent is sent once on connect with the owner's current game
const SnapshotEvent model.EventType = "game_state"

// Broadcaster turns controller events into SSE messages on the owner's hub
type Broadcaster struct {
	hubs   *HubManager
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubs *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubs:   hubs,
		logger: logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// EventPayload is the data of every game event on the stream
type EventPayload struct {
	Type      string        `json:"type"`
	SessionID string        `json:"session_id"`
	Game      response.Game `json:"game"`
}

// Publish forwards e to anyone watching its owner. It never blocks and is
// meant to be registered with the game controller.
func (b *Broadcaster) Publish(e model.Event) {
	hub := b.hubs.GetHub(e.PlayerID)
	if hub == nil {
		return
	}
	data, err := EncodeEvent(e)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("player_id", string(e.PlayerID)),
			slog.String("event", string(e.Type)),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(string(e.Type), string(data))
}

// EncodeEvent renders e as the JSON carried in an SSE data field
func EncodeEvent(e model.Event) ([]byte, error) {
	return json.Marshal(EventPayload{
		Type:      string(e.Type),
		SessionID: string(e.SessionID),
		Game:      response.GameFromSnapshot(e.Game),
	})
}

// FormatEvent renders e as a complete SSE message
func FormatEvent(e model.Event) ([]byte, error) {
	data, err := EncodeEvent(e)
	if err != nil {
		return nil, err
	}
	return formatSSEMessage(string(e.Type), string(data)), nil
}
