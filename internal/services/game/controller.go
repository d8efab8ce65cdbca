package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/mcoot/blackjack-go/internal/dependencies/random"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/deck"
	"github.com/mcoot/blackjack-go/internal/services/history"
	"github.com/mcoot/blackjack-go/internal/services/registry"
)

// DefaultSessionTimeout is how long a session may sit idle before it expires
const DefaultSessionTimeout = 120 * time.Second

// Registry is the live-session registry the controller routes through
type Registry = registry.Registry[*Session]

// NewRegistry returns a registry that deals each new session from a freshly
// shuffled deck
func NewRegistry(clock quartz.Clock, rnd random.Random) *Registry {
	return registry.New[*Session](func(playerID model.PlayerID) (*Session, error) {
		return NewSession(model.SessionID(uuid.NewString()), playerID, deck.New(rnd), clock)
	})
}

// Listener receives every game event. Listeners are called synchronously
// and must not block.
type Listener func(model.Event)

// ActionResult is what a hit or stand returns to a gateway
type ActionResult struct {
	Game model.GameSnapshot

	// Applied is false when the action arrived after the game was over
	Applied bool

	// History is the player's updated record when this action finished the game
	History *model.HistoryRecord
}

// Controller drives sessions for every gateway: it starts them, routes
// actions to the owner's session, settles finished games exactly once and
// expires idle ones.
type Controller struct {
	registry *Registry
	history  *history.Service
	clock    quartz.Clock
	timeout  time.Duration
	logger   *slog.Logger

	timersMu sync.Mutex
	timers   map[model.SessionID]*quartz.Timer

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewController creates a new game Controller. A zero timeout uses DefaultSessionTimeout.
func NewController(
	reg *Registry,
	hist *history.Service,
	clock quartz.Clock,
	timeout time.Duration,
	logger *slog.Logger,
) *Controller {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	return &Controller{
		registry: reg,
		history:  hist,
		clock:    clock,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "game-controller")),
		timers:   make(map[model.SessionID]*quartz.Timer),
	}
}

// Subscribe registers l for every subsequent event
func (c *Controller) Subscribe(l Listener) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Start deals a new game for playerID
func (c *Controller) Start(ctx context.Context, playerID model.PlayerID) (model.GameSnapshot, error) {
	sess, err := c.registry.Start(playerID)
	if err != nil {
		return model.GameSnapshot{}, err
	}

	c.armTimeout(sess)
	snap := sess.Snapshot()

	c.logger.Info("game started",
		slog.String("player_id", string(playerID)),
		slog.String("session_id", string(sess.ID())),
	)
	c.publish(model.EventGameStarted, snap)
	return snap, nil
}

// Current returns the live game of playerID
func (c *Controller) Current(ctx context.Context, playerID model.PlayerID) (model.GameSnapshot, error) {
	sess := c.registry.Get(playerID)
	if sess == nil {
		return model.GameSnapshot{}, model.ErrNoActiveGame
	}
	return sess.Snapshot(), nil
}

// Session returns the live session of playerID, or nil
func (c *Controller) Session(playerID model.PlayerID) *Session {
	return c.registry.Get(playerID)
}

// ActiveGames returns how many sessions are live
func (c *Controller) ActiveGames() int {
	return c.registry.Len()
}

// Hit draws a card in owner's game on behalf of actor
func (c *Controller) Hit(ctx context.Context, owner, actor model.PlayerID) (ActionResult, error) {
	return c.act(ctx, owner, actor, (*Session).Hit)
}

// Stand ends owner's turn on behalf of actor and settles the game
func (c *Controller) Stand(ctx context.Context, owner, actor model.PlayerID) (ActionResult, error) {
	return c.act(ctx, owner, actor, (*Session).Stand)
}

func (c *Controller) act(
	ctx context.Context,
	owner, actor model.PlayerID,
	action func(*Session, model.PlayerID) (Result, error),
) (ActionResult, error) {
	sess := c.registry.Get(owner)
	if sess == nil {
		return ActionResult{}, model.ErrNoActiveGame
	}

	res, err := action(sess, actor)
	if err != nil {
		if errors.Is(err, model.ErrDeckExhausted) {
			c.logger.Error("deck exhausted, abandoning game",
				slog.String("player_id", string(owner)),
				slog.String("session_id", string(sess.ID())),
			)
			c.evict(sess, model.EventGameExpired, res.Game)
		}
		return ActionResult{Game: res.Game}, err
	}

	out := ActionResult{Game: res.Game, Applied: res.Applied}
	switch {
	case res.Finished:
		rec, herr := c.settle(ctx, sess, res.Game)
		out.History = &rec
		return out, herr
	case res.Applied:
		c.resetTimeout(sess)
		c.publish(model.EventCardDrawn, res.Game)
	}
	return out, nil
}

// settle runs the one-time side effects of a finished game. Only the call
// whose action finished the session reaches here.
func (c *Controller) settle(ctx context.Context, sess *Session, snap model.GameSnapshot) (model.HistoryRecord, error) {
	rec, err := c.history.Record(ctx, sess.Owner(), snap.Outcome)
	c.evict(sess, model.EventGameFinished, snap)

	c.logger.Info("game finished",
		slog.String("player_id", string(sess.Owner())),
		slog.String("session_id", string(sess.ID())),
		slog.String("outcome", string(snap.Outcome)),
		slog.Int("player_value", snap.PlayerValue),
		slog.Int("dealer_value", snap.DealerValue),
	)
	return rec, err
}

// Expire abandons owner's session if it is still sessionID and not over.
// Nothing is recorded in history.
func (c *Controller) Expire(ctx context.Context, owner model.PlayerID, sessionID model.SessionID) bool {
	sess := c.registry.Get(owner)
	if sess == nil || sess.ID() != sessionID {
		c.dropTimer(sessionID)
		return false
	}
	if !sess.Abandon() {
		return false
	}

	c.logger.Info("game expired",
		slog.String("player_id", string(owner)),
		slog.String("session_id", string(sessionID)),
	)
	c.evict(sess, model.EventGameExpired, sess.Snapshot())
	return true
}

// evict stops the session's timer, removes it from the registry and
// announces why it ended
func (c *Controller) evict(sess *Session, eventType model.EventType, snap model.GameSnapshot) {
	c.stopTimer(sess.ID())
	c.registry.EndSession(sess.Owner(), sess.ID())
	c.publish(eventType, snap)
}

// armTimeout starts the idle timer of a new session. An action may finish
// the session between registry.Start and here; its evict then found no timer
// to stop, so none is armed.
func (c *Controller) armTimeout(sess *Session) {
	owner, id := sess.Owner(), sess.ID()

	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	select {
	case <-sess.Done():
		return
	default:
	}
	c.timers[id] = c.clock.AfterFunc(c.timeout, func() {
		c.Expire(context.Background(), owner, id)
	}, "session", "timeout")
}

func (c *Controller) resetTimeout(sess *Session) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	if t, ok := c.timers[sess.ID()]; ok {
		t.Reset(c.timeout, "session", "reset")
	}
}

func (c *Controller) stopTimer(id model.SessionID) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
}

func (c *Controller) dropTimer(id model.SessionID) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	delete(c.timers, id)
}

func (c *Controller) publish(eventType model.EventType, snap model.GameSnapshot) {
	event := model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		PlayerID:  snap.Owner,
		SessionID: snap.ID,
		Game:      snap,
	}

	c.listenersMu.RLock()
	listeners := c.listeners
	c.listenersMu.RUnlock()

	for _, l := range listeners {
		l(event)
	}
}

// ControllerInterface is the surface gateways depend on
type ControllerInterface interface {
	Start(ctx context.Context, playerID model.PlayerID) (model.GameSnapshot, error)
	Current(ctx context.Context, playerID model.PlayerID) (model.GameSnapshot, error)
	Hit(ctx context.Context, owner, actor model.PlayerID) (ActionResult, error)
	Stand(ctx context.Context, owner, actor model.PlayerID) (ActionResult, error)
	Expire(ctx context.Context, owner model.PlayerID, sessionID model.SessionID) bool
	Subscribe(l Listener)
	ActiveGames() int
}

var _ ControllerInterface = (*Controller)(nil)
