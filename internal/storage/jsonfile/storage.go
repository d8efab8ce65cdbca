// Package jsonfile keeps state in plain JSON documents on disk, one file per
// collection. Every write rewrites the whole document through a temp file
// and a rename so a crash never leaves a half-written file behind.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/storage"
)

// File names inside the data directory
const (
	HistoryFile  = "bj_history.json"
	ChannelsFile = "bj_channels.json"
	PlayersFile  = "bj_players.json"
)

// Storage is a JSON-file implementation of the storage interface
type Storage struct {
	dir string

	// mu serializes every load-modify-save cycle
	mu sync.Mutex
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage         = (*Storage)(nil)
	_ storage.HistoryDocument = (*Storage)(nil)
)

// New creates the data directory if needed and returns a Storage rooted there
func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Close is a no-op; files are closed after every operation
func (s *Storage) Close() error {
	return nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make(map[model.PlayerID]model.Player)
	if err := s.read(PlayersFile, &players); err != nil {
		return err
	}
	players[player.ID] = *player
	return s.write(PlayersFile, players)
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make(map[model.PlayerID]model.Player)
	if err := s.read(PlayersFile, &players); err != nil {
		return nil, err
	}
	p, ok := players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return &p, nil
}

// History operations

func (s *Storage) LoadHistory(ctx context.Context) (map[model.PlayerID]model.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadHistory()
}

func (s *Storage) SaveHistoryRecord(ctx context.Context, record model.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.loadHistory()
	if err != nil {
		return err
	}
	history[record.PlayerID] = record
	return s.write(HistoryFile, history)
}

// SaveHistory replaces the history document with records. The file on disk
// is not read, so a damaged document is simply overwritten.
func (s *Storage) SaveHistory(ctx context.Context, records map[model.PlayerID]model.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(HistoryFile, records)
}

func (s *Storage) loadHistory() (map[model.PlayerID]model.HistoryRecord, error) {
	history := make(map[model.PlayerID]model.HistoryRecord)
	if err := s.read(HistoryFile, &history); err != nil {
		return nil, err
	}
	// PlayerID is the document key, not a field
	for id, rec := range history {
		rec.PlayerID = id
		history[id] = rec
	}
	return history, nil
}

// Channel operations

func (s *Storage) LoadChannels(ctx context.Context) ([]model.ChannelID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var channels []model.ChannelID
	if err := s.read(ChannelsFile, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

func (s *Storage) SaveChannels(ctx context.Context, channels []model.ChannelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := slices.Clone(channels)
	if out == nil {
		out = []model.ChannelID{}
	}
	return s.write(ChannelsFile, out)
}

// read decodes the named file into v. A missing file leaves v untouched.
func (s *Storage) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// write replaces the named file with the JSON encoding of v
func (s *Storage) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
