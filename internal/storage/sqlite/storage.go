// Package sqlite stores players, history and the channel allow-list in a
// single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/storage"
)

//go:embed schema.sql
var schema string

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open opens (creating if needed) the database at path and applies the schema
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database handle
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO players (id, display_name, created_at) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name`,
		string(player.ID), player.DisplayName, toMillis(player.CreatedAt),
	)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var (
		player    model.Player
		createdAt int64
	)
	row := s.db.QueryRowContext(ctx, `SELECT id, display_name, created_at FROM players WHERE id = ?`, string(id))
	if err := row.Scan(&player.ID, &player.DisplayName, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	player.CreatedAt = fromMillis(createdAt)
	return &player, nil
}

// History operations

func (s *Storage) LoadHistory(ctx context.Context) (map[model.PlayerID]model.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT player_id, wins, losses, draws, max_streak, current_streak, last_result FROM history`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.PlayerID]model.HistoryRecord)
	for rows.Next() {
		var (
			rec  model.HistoryRecord
			last sql.NullString
		)
		if err := rows.Scan(&rec.PlayerID, &rec.Wins, &rec.Losses, &rec.Draws, &rec.MaxStreak, &rec.CurrentStreak, &last); err != nil {
			return nil, err
		}
		if last.Valid {
			outcome := model.Outcome(last.String)
			rec.LastResult = &outcome
		}
		out[rec.PlayerID] = rec
	}
	return out, rows.Err()
}

func (s *Storage) SaveHistoryRecord(ctx context.Context, record model.HistoryRecord) error {
	var last sql.NullString
	if record.LastResult != nil {
		last = sql.NullString{String: string(*record.LastResult), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO history (player_id, wins, losses, draws, max_streak, current_streak, last_result)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(player_id) DO UPDATE SET
    wins = excluded.wins,
    losses = excluded.losses,
    draws = excluded.draws,
    max_streak = excluded.max_streak,
    current_streak = excluded.current_streak,
    last_result = excluded.last_result`,
		string(record.PlayerID), record.Wins, record.Losses, record.Draws,
		record.MaxStreak, record.CurrentStreak, last,
	)
	return err
}

// Channel operations

func (s *Storage) LoadChannels(ctx context.Context) ([]model.ChannelID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT channel_id FROM channels ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.ChannelID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		channels = append(channels, model.ChannelID(id))
	}
	return channels, rows.Err()
}

func (s *Storage) SaveChannels(ctx context.Context, channels []model.ChannelID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM channels`); err != nil {
		return err
	}
	for i, c := range channels {
		if _, err := tx.ExecContext(ctx, `INSERT INTO channels (position, channel_id) VALUES (?, ?)`, i, string(c)); err != nil {
			return fmt.Errorf("insert channel %s: %w", c, err)
		}
	}
	return tx.Commit()
}
