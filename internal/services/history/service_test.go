package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/storage/jsonfile"
	"github.com/mcoot/blackjack-go/internal/storage/memory"
	"github.com/mcoot/blackjack-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) record(playerID model.PlayerID, outcomes ...model.Outcome) model.HistoryRecord {
	var rec model.HistoryRecord
	for _, o := range outcomes {
		var err error
		rec, err = s.service.Record(s.ctx, playerID, o)
		s.Require().NoError(err)
	}
	return rec
}

func (s *ServiceSuite) TestStreakAccounting() {
	rec := s.record("alice", model.OutcomeWin, model.OutcomeWin, model.OutcomeLose, model.OutcomeWin)

	s.Equal(1, rec.CurrentStreak)
	s.Equal(2, rec.MaxStreak)
	s.Equal(3, rec.Wins)
	s.Equal(1, rec.Losses)
	s.Equal(model.OutcomeWin, rec.Last())
}

func (s *ServiceSuite) TestDrawResetsStreak() {
	rec := s.record("alice", model.OutcomeWin, model.OutcomeWin, model.OutcomeWin, model.OutcomeDraw)

	s.Equal(0, rec.CurrentStreak)
	s.Equal(3, rec.MaxStreak)
	s.Equal(1, rec.Draws)
}

func (s *ServiceSuite) TestRecordWritesThrough() {
	s.record("alice", model.OutcomeLose)

	stored, err := s.storage.LoadHistory(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, stored["alice"].Losses)
}

func (s *ServiceSuite) TestRecordRejectsUnknownOutcome() {
	_, err := s.service.Record(s.ctx, "alice", model.OutcomeNone)
	s.Error(err)

	_, ok := s.service.Get("alice")
	s.False(ok)
}

func (s *ServiceSuite) TestPersistenceFailureIsReported() {
	boom := errors.New("disk full")
	s.storage.FailWrites(boom)

	rec, err := s.service.Record(s.ctx, "alice", model.OutcomeWin)
	s.ErrorIs(err, model.ErrPersistence)
	s.ErrorIs(err, boom)
	s.Equal(1, rec.Wins)

	// Memory stays authoritative and storage catches up on the next write
	s.storage.FailWrites(nil)
	s.record("alice", model.OutcomeWin)

	stored, _ := s.storage.LoadHistory(s.ctx)
	s.Equal(2, stored["alice"].Wins)
	s.Equal(2, stored["alice"].CurrentStreak)
}

func (s *ServiceSuite) TestFailedWriteRetriedByAnotherPlayer() {
	s.storage.FailWrites(errors.New("disk full"))
	_, err := s.service.Record(s.ctx, "alice", model.OutcomeWin)
	s.Require().ErrorIs(err, model.ErrPersistence)

	s.storage.FailWrites(nil)
	s.record("bob", model.OutcomeLose)

	reloaded := New(s.storage, testutil.NopLogger())
	s.Require().NoError(reloaded.Load(s.ctx))

	alice, ok := reloaded.Get("alice")
	s.Require().True(ok)
	s.Equal(1, alice.Wins)
	bob, ok := reloaded.Get("bob")
	s.Require().True(ok)
	s.Equal(1, bob.Losses)
}

func (s *ServiceSuite) TestLoadRestoresRecords() {
	s.record("alice", model.OutcomeWin, model.OutcomeWin)

	reloaded := New(s.storage, testutil.NopLogger())
	s.Require().NoError(reloaded.Load(s.ctx))

	rec, ok := reloaded.Get("alice")
	s.Require().True(ok)
	s.Equal(model.PlayerID("alice"), rec.PlayerID)
	s.Equal(2, rec.MaxStreak)
}

func (s *ServiceSuite) TestGetReturnsCopy() {
	s.record("alice", model.OutcomeWin)

	rec, _ := s.service.Get("alice")
	*rec.LastResult = model.OutcomeLose
	rec.Wins = 100

	again, _ := s.service.Get("alice")
	s.Equal(1, again.Wins)
	s.Equal(model.OutcomeWin, again.Last())
}

func (s *ServiceSuite) TestGetMissing() {
	_, ok := s.service.Get("nobody")
	s.False(ok)
}

func (s *ServiceSuite) TestLeaderboardOrder() {
	s.record("carol", model.OutcomeWin)
	s.record("alice", model.OutcomeWin, model.OutcomeWin, model.OutcomeLose)
	s.record("bob", model.OutcomeWin, model.OutcomeWin, model.OutcomeLose, model.OutcomeWin)
	s.record("dave", model.OutcomeLose)

	board := s.service.Leaderboard(0)
	s.Require().Len(board, 4)
	s.Equal(model.PlayerID("bob"), board[0].PlayerID)
	s.Equal(model.PlayerID("alice"), board[1].PlayerID)
	s.Equal(model.PlayerID("carol"), board[2].PlayerID)
	s.Equal(model.PlayerID("dave"), board[3].PlayerID)

	s.Len(s.service.Leaderboard(2), 2)
}

func (s *ServiceSuite) TestConcurrentRecordsAreSerialized() {
	const games = 100
	var wg sync.WaitGroup
	for i := 0; i < games; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.service.Record(s.ctx, model.PlayerID(fmt.Sprintf("p%d", n%4)), model.OutcomeLose)
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	total := 0
	for _, rec := range s.service.Leaderboard(0) {
		total += rec.Losses
	}
	s.Equal(games, total)

	stored, _ := s.storage.LoadHistory(s.ctx)
	for id, rec := range stored {
		live, _ := s.service.Get(id)
		s.Equal(live.Losses, rec.Losses)
	}
}

// flakyDocument fails the next whole-document history save
type flakyDocument struct {
	*jsonfile.Storage
	failNext bool
}

func (f *flakyDocument) SaveHistory(ctx context.Context, records map[model.PlayerID]model.HistoryRecord) error {
	if f.failNext {
		f.failNext = false
		return errors.New("disk full")
	}
	return f.Storage.SaveHistory(ctx, records)
}

func TestDocumentStoreKeepsEveryRecord(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	files, err := jsonfile.New(dir)
	require.NoError(t, err)

	store := &flakyDocument{Storage: files, failNext: true}
	svc := New(store, testutil.NopLogger())
	require.NoError(t, svc.Load(ctx))

	_, err = svc.Record(ctx, "alice", model.OutcomeWin)
	require.ErrorIs(t, err, model.ErrPersistence)
	_, err = svc.Record(ctx, "bob", model.OutcomeLose)
	require.NoError(t, err)

	reopened, err := jsonfile.New(dir)
	require.NoError(t, err)
	restarted := New(reopened, testutil.NopLogger())
	require.NoError(t, restarted.Load(ctx))

	alice, ok := restarted.Get("alice")
	require.True(t, ok)
	assert.Equal(t, 1, alice.Wins)
	bob, ok := restarted.Get("bob")
	require.True(t, ok)
	assert.Equal(t, 1, bob.Losses)
}
