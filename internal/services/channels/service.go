// Package channels manages which chat channels may host games.
package channels

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/storage"
)

// Service is an ordered allow-list of channels. An empty list allows every channel.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu       sync.RWMutex
	channels []model.ChannelID
}

// New creates an empty allow-list
func New(store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		logger:  logger.With(slog.String("component", "channels")),
	}
}

// Load replaces the allow-list with the stored one
func (s *Service) Load(ctx context.Context) error {
	channels, err := s.storage.LoadChannels(ctx)
	if err != nil {
		return fmt.Errorf("%w: load channels: %w", model.ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels = dedupe(channels)
	return nil
}

// dedupe drops repeated IDs, keeping the first occurrence of each
func dedupe(channels []model.ChannelID) []model.ChannelID {
	seen := make(map[model.ChannelID]struct{}, len(channels))
	out := make([]model.ChannelID, 0, len(channels))
	for _, id := range channels {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// IsAllowed reports whether games may be played in id
func (s *Service) IsAllowed(id model.ChannelID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels) == 0 || slices.Contains(s.channels, id)
}

// Allow appends id to the allow-list
func (s *Service) Allow(ctx context.Context, id model.ChannelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.channels, id) {
		return model.ErrChannelAlreadyAllowed
	}
	next := append(slices.Clone(s.channels), id)
	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.channels = next

	s.logger.Info("channel allowed", slog.String("channel_id", string(id)))
	return nil
}

// Remove drops id from the allow-list. Removing the last entry opens every channel.
func (s *Service) Remove(ctx context.Context, id model.ChannelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.Index(s.channels, id)
	if idx < 0 {
		return model.ErrChannelNotListed
	}
	next := slices.Delete(slices.Clone(s.channels), idx, idx+1)
	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.channels = next

	s.logger.Info("channel removed", slog.String("channel_id", string(id)))
	return nil
}

// List returns the allow-list in insertion order
func (s *Service) List() []model.ChannelID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.channels)
}

func (s *Service) save(ctx context.Context, channels []model.ChannelID) error {
	if err := s.storage.SaveChannels(ctx, channels); err != nil {
		s.logger.Error("failed to persist channels", slog.String("error", err.Error()))
		return fmt.Errorf("%w: save channels: %w", model.ErrPersistence, err)
	}
	return nil
}
