package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerKey(player.ID), data, s.cfg.PlayerTTL).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// History operations

func (s *Storage) LoadHistory(ctx context.Context) (map[model.PlayerID]model.HistoryRecord, error) {
	ids, err := s.client.SMembers(ctx, historyIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[model.PlayerID]model.HistoryRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = historyKey(model.PlayerID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a record; skip it
			continue
		}
		var rec model.HistoryRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode history for %s: %w", ids[i], err)
		}
		rec.PlayerID = model.PlayerID(ids[i])
		out[rec.PlayerID] = rec
	}
	return out, nil
}

func (s *Storage) SaveHistoryRecord(ctx context.Context, record model.HistoryRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, historyKey(record.PlayerID), data, 0)
	pipe.SAdd(ctx, historyIndexKey(), string(record.PlayerID))
	_, err = pipe.Exec(ctx)
	return err
}

// Channel operations

func (s *Storage) LoadChannels(ctx context.Context) ([]model.ChannelID, error) {
	members, err := s.client.LRange(ctx, channelsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	channels := make([]model.ChannelID, len(members))
	for i, m := range members {
		channels[i] = model.ChannelID(m)
	}
	return channels, nil
}

func (s *Storage) SaveChannels(ctx context.Context, channels []model.ChannelID) error {
	key := channelsKey()

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(channels) > 0 {
		// Convert to []interface{} for RPush
		members := make([]interface{}, len(channels))
		for i, c := range channels {
			members[i] = string(c)
		}
		pipe.RPush(ctx, key, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}
