// Package history keeps per-player win/loss/draw statistics.
package history

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/storage"
)

// Service holds every player's HistoryRecord in memory and writes each
// change through to storage. After Load the in-memory map is authoritative;
// storage is never read again.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	// mu is held across the whole load-modify-save of Record
	mu      sync.RWMutex
	records map[model.PlayerID]model.HistoryRecord

	// unsaved holds players whose last per-record write failed
	unsaved map[model.PlayerID]struct{}
}

// New creates an empty history Service
func New(store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		logger:  logger.With(slog.String("component", "history")),
		records: make(map[model.PlayerID]model.HistoryRecord),
		unsaved: make(map[model.PlayerID]struct{}),
	}
}

// Load replaces the in-memory records with what storage holds
func (s *Service) Load(ctx context.Context) error {
	records, err := s.storage.LoadHistory(ctx)
	if err != nil {
		return fmt.Errorf("%w: load history: %w", model.ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[model.PlayerID]model.HistoryRecord, len(records))
	clear(s.unsaved)
	for id, rec := range records {
		rec.PlayerID = id
		s.records[id] = rec
	}

	s.logger.Info("history loaded", slog.Int("players", len(s.records)))
	return nil
}

// Record folds outcome into the player's record and persists it.
// The in-memory update stands even if the write fails; the error is then
// wrapped in ErrPersistence and later writes of any player catch storage up.
func (s *Service) Record(ctx context.Context, playerID model.PlayerID, outcome model.Outcome) (model.HistoryRecord, error) {
	if !outcome.Valid() {
		return model.HistoryRecord{}, fmt.Errorf("record history: unknown outcome %q", outcome)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[playerID]
	if !ok {
		rec = model.HistoryRecord{PlayerID: playerID}
	}
	rec.Apply(outcome)
	s.records[playerID] = rec

	if err := s.persist(ctx, playerID); err != nil {
		s.logger.Error("failed to persist history",
			slog.String("player_id", string(playerID)),
			slog.String("outcome", string(outcome)),
			slog.String("error", err.Error()),
		)
		return rec.Clone(), fmt.Errorf("%w: save history: %w", model.ErrPersistence, err)
	}

	return rec.Clone(), nil
}

// persist writes playerID's record. Document backends get every record;
// other backends also retry records whose earlier write failed. Only a
// failure to save playerID itself is returned. Callers hold mu.
func (s *Service) persist(ctx context.Context, playerID model.PlayerID) error {
	if doc, ok := s.storage.(storage.HistoryDocument); ok {
		return doc.SaveHistory(ctx, s.records)
	}

	if err := s.storage.SaveHistoryRecord(ctx, s.records[playerID]); err != nil {
		s.unsaved[playerID] = struct{}{}
		return err
	}
	delete(s.unsaved, playerID)

	for id := range s.unsaved {
		if err := s.storage.SaveHistoryRecord(ctx, s.records[id]); err != nil {
			s.logger.Warn("history retry failed",
				slog.String("player_id", string(id)),
				slog.String("error", err.Error()),
			)
			continue
		}
		delete(s.unsaved, id)
	}
	return nil
}

// Get returns a copy of the player's record
func (s *Service) Get(playerID model.PlayerID) (model.HistoryRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[playerID]
	if !ok {
		return model.HistoryRecord{}, false
	}
	return rec.Clone(), true
}

// Leaderboard returns up to n records ordered by best streak, then wins.
// n <= 0 returns every record.
func (s *Service) Leaderboard(n int) []model.HistoryRecord {
	s.mu.RLock()
	out := make([]model.HistoryRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.HistoryRecord) int {
		if c := cmp.Compare(b.MaxStreak, a.MaxStreak); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
