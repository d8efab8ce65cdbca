package storage

import (
	"context"

	"github.com/mcoot/blackjack-go/internal/model"
)

// Storage defines the interface for data persistence.
// Live sessions are never persisted; only their consequences are.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)

	// History operations
	LoadHistory(ctx context.Context) (map[model.PlayerID]model.HistoryRecord, error)
	SaveHistoryRecord(ctx context.Context, record model.HistoryRecord) error

	// Channel allow-list operations. Order is preserved.
	LoadChannels(ctx context.Context) ([]model.ChannelID, error)
	SaveChannels(ctx context.Context, channels []model.ChannelID) error

	// Close releases any underlying resources
	Close() error
}

// HistoryDocument is implemented by backends that keep all history in one
// document. They are handed the full record set on every change instead of
// merging a single record into what they last stored.
type HistoryDocument interface {
	SaveHistory(ctx context.Context, records map[model.PlayerID]model.HistoryRecord) error
}
