package factory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/channels"
	"github.com/mcoot/blackjack-go/internal/services/history"
	"github.com/mcoot/blackjack-go/internal/testutil"
)

var errBoom = errors.New("boom")

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context

	eventsMu sync.Mutex
	events   []model.Event
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp(s.T())
	s.ctx = context.Background()
	s.events = nil
	s.app.GameController.Subscribe(func(e model.Event) {
		s.eventsMu.Lock()
		defer s.eventsMu.Unlock()
		s.events = append(s.events, e)
	})
}

func (s *IntegrationSuite) eventTypes() []model.EventType {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	types := make([]model.EventType, len(s.events))
	for i, e := range s.events {
		types[i] = e.Type
	}
	return types
}

func (s *IntegrationSuite) guest(id string) model.PlayerID {
	sess, err := s.app.CreateGuest(s.ctx, id, id)
	s.Require().NoError(err)
	return sess.PlayerID
}

// Test: a full game from guest creation to a recorded loss
func (s *IntegrationSuite) TestBustIsRecorded() {
	alice := s.guest("alice")
	s.app.QueueDeck("0S", "9H", "5C", "8D", "KC")

	g, err := s.app.GameController.Start(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(model.GameStatePlayerTurn, g.State)

	res, err := s.app.GameController.Hit(s.ctx, alice, alice)
	s.Require().NoError(err)
	s.Equal(model.OutcomeLose, res.Game.Outcome)
	s.Require().NotNil(res.History)
	s.Equal(1, res.History.Losses)

	s.Equal(0, s.app.GameController.ActiveGames())
	s.Equal([]model.EventType{model.EventGameStarted, model.EventGameFinished}, s.eventTypes())

	stored, err := s.app.MockStorage.LoadHistory(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, stored[alice].Losses)
}

// Test: win streak survives a reload from storage
func (s *IntegrationSuite) TestStreakPersistsAcrossReload() {
	alice := s.guest("alice")

	for i := 0; i < 3; i++ {
		s.app.QueueDeck("0S", "0H", "9C", "7D")
		_, err := s.app.GameController.Start(s.ctx, alice)
		s.Require().NoError(err)
		res, err := s.app.GameController.Stand(s.ctx, alice, alice)
		s.Require().NoError(err)
		s.Equal(model.OutcomeWin, res.Game.Outcome)
	}

	reloaded := history.New(s.app.MockStorage, testutil.NopLogger())
	s.Require().NoError(reloaded.Load(s.ctx))

	rec, ok := reloaded.Get(alice)
	s.Require().True(ok)
	s.Equal(3, rec.Wins)
	s.Equal(3, rec.MaxStreak)
	s.Equal(3, rec.CurrentStreak)
	s.Equal(model.OutcomeWin, rec.Last())
}

// Test: an idle game expires without touching history
func (s *IntegrationSuite) TestIdleGameExpires() {
	alice := s.guest("alice")
	s.app.QueueDeck("2S", "9H", "3C", "8D", "4C", "5C")

	_, err := s.app.GameController.Start(s.ctx, alice)
	s.Require().NoError(err)

	s.app.Advance(s.ctx, TestSessionTimeout)

	s.Equal(0, s.app.GameController.ActiveGames())
	_, err = s.app.GameController.Hit(s.ctx, alice, alice)
	s.ErrorIs(err, model.ErrNoActiveGame)
	_, ok := s.app.HistoryService.Get(alice)
	s.False(ok)
	s.Equal([]model.EventType{model.EventGameStarted, model.EventGameExpired}, s.eventTypes())
}

// Test: a hit pushes the expiry back
func (s *IntegrationSuite) TestHitExtendsTimeout() {
	alice := s.guest("alice")
	s.app.QueueDeck("2S", "9H", "3C", "8D", "4C", "5C")

	_, err := s.app.GameController.Start(s.ctx, alice)
	s.Require().NoError(err)

	s.app.Advance(s.ctx, time.Minute)
	_, err = s.app.GameController.Hit(s.ctx, alice, alice)
	s.Require().NoError(err)

	s.app.Advance(s.ctx, time.Minute)
	s.Equal(1, s.app.GameController.ActiveGames())

	s.app.Advance(s.ctx, time.Minute)
	s.Equal(0, s.app.GameController.ActiveGames())
}

// Test: players cannot act on each other's games
func (s *IntegrationSuite) TestOtherPlayerCannotAct() {
	alice := s.guest("alice")
	bob := s.guest("bob")
	s.app.QueueDeck("2S", "9H", "3C", "8D", "4C")

	_, err := s.app.GameController.Start(s.ctx, alice)
	s.Require().NoError(err)

	_, err = s.app.GameController.Hit(s.ctx, alice, bob)
	s.ErrorIs(err, model.ErrNotOwner)
	_, err = s.app.GameController.Stand(s.ctx, alice, bob)
	s.ErrorIs(err, model.ErrNotOwner)

	g, err := s.app.GameController.Current(s.ctx, alice)
	s.Require().NoError(err)
	s.Len(g.PlayerHand, 2)

	_, err = s.app.GameController.Current(s.ctx, bob)
	s.ErrorIs(err, model.ErrNoActiveGame)
}

// Test: a second game only after the first ends
func (s *IntegrationSuite) TestOneGameAtATime() {
	alice := s.guest("alice")
	s.app.QueueDeck("0S", "0H", "8C", "8D")
	s.app.QueueDeck("0S", "0H", "7C", "9D")

	_, err := s.app.GameController.Start(s.ctx, alice)
	s.Require().NoError(err)
	_, err = s.app.GameController.Start(s.ctx, alice)
	s.ErrorIs(err, model.ErrAlreadyActive)

	res, err := s.app.GameController.Stand(s.ctx, alice, alice)
	s.Require().NoError(err)
	s.Equal(model.OutcomeDraw, res.Game.Outcome)

	_, err = s.app.GameController.Start(s.ctx, alice)
	s.Require().NoError(err)
	res, err = s.app.GameController.Stand(s.ctx, alice, alice)
	s.Require().NoError(err)
	s.Equal(model.OutcomeLose, res.Game.Outcome)

	rec, ok := s.app.HistoryService.Get(alice)
	s.Require().True(ok)
	s.Equal(1, rec.Draws)
	s.Equal(1, rec.Losses)
}

// Test: a failed save still ends the game and keeps the in-memory record
func (s *IntegrationSuite) TestPersistenceFailureSurfaces() {
	alice := s.guest("alice")
	s.app.QueueDeck("0S", "0H", "9C", "7D")
	_, err := s.app.GameController.Start(s.ctx, alice)
	s.Require().NoError(err)

	s.app.MockStorage.FailWrites(errBoom)
	res, err := s.app.GameController.Stand(s.ctx, alice, alice)
	s.ErrorIs(err, model.ErrPersistence)
	s.Equal(model.OutcomeWin, res.Game.Outcome)
	s.Equal(0, s.app.GameController.ActiveGames())

	rec, ok := s.app.HistoryService.Get(alice)
	s.Require().True(ok)
	s.Equal(1, rec.Wins)
}

// Test: the allow-list round-trips through storage
func (s *IntegrationSuite) TestChannelAllowList() {
	s.True(s.app.ChannelService.IsAllowed("c1"))

	s.Require().NoError(s.app.ChannelService.Allow(s.ctx, "c1"))
	s.True(s.app.ChannelService.IsAllowed("c1"))
	s.False(s.app.ChannelService.IsAllowed("c2"))

	reloaded := channels.New(s.app.MockStorage, testutil.NopLogger())
	s.Require().NoError(reloaded.Load(s.ctx))
	s.Equal([]model.ChannelID{"c1"}, reloaded.List())
}

// Test: the janitor drops hubs with no listeners
func (s *IntegrationSuite) TestJanitorCleansHubs() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	s.app.HubManager.GetOrCreateHub("p_nobody")
	w := s.app.StartJanitor(ctx, time.Minute)

	s.app.Advance(s.ctx, time.Minute)
	s.Nil(s.app.HubManager.GetHub("p_nobody"))

	cancel()
	s.ErrorIs(w.Wait(), context.Canceled)
}
