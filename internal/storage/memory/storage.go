package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players  map[model.PlayerID]*model.Player
	history  map[model.PlayerID]model.HistoryRecord
	channels []model.ChannelID

	// failWrites makes every write return the given error
	failWrites error
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerID]*model.Player),
		history: make(map[model.PlayerID]model.HistoryRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// FailWrites makes subsequent writes fail with err; nil restores normal behaviour.
// Used by tests to exercise persistence failures.
func (s *Storage) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = err
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return s.failWrites
	}
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

// History operations

func (s *Storage) LoadHistory(ctx context.Context) (map[model.PlayerID]model.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[model.PlayerID]model.HistoryRecord, len(s.history))
	for id, rec := range s.history {
		out[id] = rec.Clone()
	}
	return out, nil
}

func (s *Storage) SaveHistoryRecord(ctx context.Context, record model.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return s.failWrites
	}
	s.history[record.PlayerID] = record.Clone()
	return nil
}

// Channel operations

func (s *Storage) LoadChannels(ctx context.Context) ([]model.ChannelID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.channels), nil
}

func (s *Storage) SaveChannels(ctx context.Context, channels []model.ChannelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return s.failWrites
	}
	s.channels = slices.Clone(channels)
	return nil
}

// Close is a no-op for in-memory storage
func (s *Storage) Close() error {
	return nil
}
