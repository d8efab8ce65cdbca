package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/blackjack-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	dir     string
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.dir = s.T().TempDir()
	st, err := New(s.dir)
	s.Require().NoError(err)
	s.storage = st
	s.ctx = context.Background()
}

func (s *StorageSuite) TestEmptyDirectoryLoadsNothing() {
	history, err := s.storage.LoadHistory(s.ctx)
	s.Require().NoError(err)
	s.Empty(history)

	channels, err := s.storage.LoadChannels(s.ctx)
	s.Require().NoError(err)
	s.Empty(channels)
}

func (s *StorageSuite) TestReadsExistingHistoryDocument() {
	doc := `{
  "123": {"wins": 3, "losses": 1, "draws": 0, "max_streak": 2, "current_streak": 1, "last_result": "win"},
  "456": {"wins": 0, "losses": 0, "draws": 0, "max_streak": 0, "current_streak": 0, "last_result": null}
}`
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, HistoryFile), []byte(doc), 0o644))

	history, err := s.storage.LoadHistory(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(history, 2)

	rec := history["123"]
	s.Equal(model.PlayerID("123"), rec.PlayerID)
	s.Equal(3, rec.Wins)
	s.Equal(2, rec.MaxStreak)
	s.Equal(model.OutcomeWin, rec.Last())
	s.Nil(history["456"].LastResult)
}

func (s *StorageSuite) TestHistoryDocumentLayout() {
	rec := model.HistoryRecord{PlayerID: "123"}
	rec.Apply(model.OutcomeDraw)
	s.Require().NoError(s.storage.SaveHistoryRecord(s.ctx, rec))

	data, err := os.ReadFile(filepath.Join(s.dir, HistoryFile))
	s.Require().NoError(err)
	s.JSONEq(`{"123":{"wins":0,"losses":0,"draws":1,"max_streak":0,"current_streak":0,"last_result":"draw"}}`, string(data))
}

func (s *StorageSuite) TestHistoryRoundTripAcrossInstances() {
	rec := model.HistoryRecord{PlayerID: "alice"}
	rec.Apply(model.OutcomeWin)
	s.Require().NoError(s.storage.SaveHistoryRecord(s.ctx, rec))

	other, err := New(s.dir)
	s.Require().NoError(err)
	loaded, err := other.LoadHistory(s.ctx)
	s.Require().NoError(err)
	s.Equal(rec, loaded["alice"])
}

func (s *StorageSuite) TestChannelsDocumentIsArray() {
	s.Require().NoError(s.storage.SaveChannels(s.ctx, []model.ChannelID{"2", "1"}))

	data, err := os.ReadFile(filepath.Join(s.dir, ChannelsFile))
	s.Require().NoError(err)
	s.JSONEq(`["2","1"]`, string(data))

	s.Require().NoError(s.storage.SaveChannels(s.ctx, nil))
	data, err = os.ReadFile(filepath.Join(s.dir, ChannelsFile))
	s.Require().NoError(err)
	s.JSONEq(`[]`, string(data))
}

func (s *StorageSuite) TestCorruptDocumentIsAnError() {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, HistoryFile), []byte("{not json"), 0o644))

	_, err := s.storage.LoadHistory(s.ctx)
	s.Error(err)
}

func (s *StorageSuite) TestSaveHistoryReplacesDocument() {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, HistoryFile), []byte("{not json"), 0o644))

	alice := model.HistoryRecord{PlayerID: "alice"}
	alice.Apply(model.OutcomeWin)
	bob := model.HistoryRecord{PlayerID: "bob"}
	bob.Apply(model.OutcomeLose)
	s.Require().NoError(s.storage.SaveHistory(s.ctx, map[model.PlayerID]model.HistoryRecord{
		"alice": alice,
		"bob":   bob,
	}))

	history, err := s.storage.LoadHistory(s.ctx)
	s.Require().NoError(err)
	s.Equal(alice, history["alice"])
	s.Equal(bob, history["bob"])
}

func (s *StorageSuite) TestNoTempFilesLeftBehind() {
	s.Require().NoError(s.storage.SaveChannels(s.ctx, []model.ChannelID{"1"}))

	entries, err := os.ReadDir(s.dir)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *StorageSuite) TestConcurrentWritersDoNotLoseRecords() {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rec := model.HistoryRecord{PlayerID: model.PlayerID(fmt.Sprintf("player-%d", n))}
			rec.Apply(model.OutcomeWin)
			s.NoError(s.storage.SaveHistoryRecord(s.ctx, rec))
		}(i)
	}
	wg.Wait()

	history, err := s.storage.LoadHistory(s.ctx)
	s.Require().NoError(err)
	s.Len(history, 20)
}

func (s *StorageSuite) TestPlayers() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: "p1", DisplayName: "Alice"}))

	got, err := s.storage.GetPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Alice", got.DisplayName)

	_, err = s.storage.GetPlayer(s.ctx, "p2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}
