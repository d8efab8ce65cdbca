package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/dealer"
	"github.com/mcoot/blackjack-go/internal/services/deck"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
)

// Result describes what a single hit or stand did to a session
type Result struct {
	Game model.GameSnapshot

	// Applied is false when the session was already over and the action was ignored
	Applied bool

	// Finished is true only for the call that moved the session to finished
	Finished bool
}

// Session is one player's blackjack game against the house.
// All methods are safe for concurrent use; actions are applied one at a time.
type Session struct {
	mu sync.Mutex

	id       model.SessionID
	owner    model.PlayerID
	deck     *deck.Deck
	strategy dealer.Strategy
	clock    quartz.Clock

	state   model.GameState
	outcome model.Outcome
	player  model.Hand
	dealer  model.Hand

	startedAt time.Time
	updatedAt time.Time

	done     chan struct{}
	doneOnce sync.Once
}

// NewSession deals the opening hands from d and leaves the session waiting
// for the player. Cards go player, dealer, player, dealer.
func NewSession(id model.SessionID, owner model.PlayerID, d *deck.Deck, clock quartz.Clock) (*Session, error) {
	now := clock.Now()
	s := &Session{
		id:        id,
		owner:     owner,
		deck:      d,
		strategy:  dealer.StandOnSeventeen,
		clock:     clock,
		state:     model.GameStateDealing,
		startedAt: now,
		updatedAt: now,
		done:      make(chan struct{}),
	}

	for i := 0; i < 2; i++ {
		if err := s.drawTo(&s.player); err != nil {
			return nil, fmt.Errorf("deal: %w", err)
		}
		if err := s.drawTo(&s.dealer); err != nil {
			return nil, fmt.Errorf("deal: %w", err)
		}
	}

	s.state = model.GameStatePlayerTurn
	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() model.SessionID {
	return s.id
}

// Owner returns the only player allowed to act on the session
func (s *Session) Owner() model.PlayerID {
	return s.owner
}

// Done is closed once the session is finished or abandoned
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Snapshot returns a copy of the current session state
func (s *Session) Snapshot() model.GameSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Hit draws one card for the player. Going over 21 loses immediately.
func (s *Session) Hit(actor model.PlayerID) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if actor != s.owner {
		return Result{}, model.ErrNotOwner
	}
	if s.state.IsTerminal() {
		return Result{Game: s.snapshotLocked()}, nil
	}

	if err := s.drawTo(&s.player); err != nil {
		s.abandonLocked()
		return Result{Game: s.snapshotLocked()}, fmt.Errorf("hit: %w", err)
	}

	if scoring.IsBust(s.player) {
		s.finishLocked(model.OutcomeLose)
		return Result{Game: s.snapshotLocked(), Applied: true, Finished: true}, nil
	}

	s.updatedAt = s.clock.Now()
	return Result{Game: s.snapshotLocked(), Applied: true}, nil
}

// Stand hands play to the dealer, who draws to 17, and settles the game
func (s *Session) Stand(actor model.PlayerID) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if actor != s.owner {
		return Result{}, model.ErrNotOwner
	}
	if s.state.IsTerminal() {
		return Result{Game: s.snapshotLocked()}, nil
	}

	s.state = model.GameStateDealerTurn
	hand, err := dealer.Play(s.deck, s.dealer, s.strategy)
	s.dealer = hand
	if err != nil {
		s.abandonLocked()
		return Result{Game: s.snapshotLocked()}, fmt.Errorf("stand: %w", err)
	}

	s.finishLocked(scoring.Compare(s.player, s.dealer))
	return Result{Game: s.snapshotLocked(), Applied: true, Finished: true}, nil
}

// Abandon ends the session without an outcome. It reports whether this call
// performed the transition.
func (s *Session) Abandon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsTerminal() {
		return false
	}
	s.abandonLocked()
	return true
}

func (s *Session) drawTo(hand *model.Hand) error {
	c, err := s.deck.Draw()
	if err != nil {
		return err
	}
	*hand = append(*hand, c)
	return nil
}

func (s *Session) finishLocked(outcome model.Outcome) {
	s.state = model.GameStateFinished
	s.outcome = outcome
	s.updatedAt = s.clock.Now()
	s.closeDone()
}

func (s *Session) abandonLocked() {
	s.state = model.GameStateAbandoned
	s.outcome = model.OutcomeNone
	s.updatedAt = s.clock.Now()
	s.closeDone()
}

func (s *Session) closeDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *Session) snapshotLocked() model.GameSnapshot {
	return model.GameSnapshot{
		ID:          s.id,
		Owner:       s.owner,
		State:       s.state,
		Outcome:     s.outcome,
		PlayerHand:  s.player.Clone(),
		DealerHand:  s.dealer.Clone(),
		PlayerValue: scoring.HandValue(s.player),
		DealerValue: scoring.HandValue(s.dealer),
		CardsLeft:   s.deck.Remaining(),
		StartedAt:   s.startedAt,
		UpdatedAt:   s.updatedAt,
	}
}
