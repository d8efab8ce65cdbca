package factory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"

	"github.com/mcoot/blackjack-go/internal/dependencies/mocks"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/auth"
	"github.com/mcoot/blackjack-go/internal/services/deck"
	"github.com/mcoot/blackjack-go/internal/storage/memory"
	"github.com/mcoot/blackjack-go/internal/testutil"
)

// TestSessionTimeout is the idle limit used by test apps
const TestSessionTimeout = 2 * time.Minute

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *quartz.Mock
	MockRandom  *mocks.MockRandom
	MockStorage *memory.Storage

	decksMu sync.Mutex
	decks   []*deck.Deck
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Games deal from decks queued with QueueDeck; with none queued they deal
// an unshuffled deck.
func NewTestApp(t testing.TB) *TestApp {
	return newTestApp(t, auth.DefaultConfig())
}

// NewTestAppWithAdminKey is NewTestApp with admin routes enabled for key
func NewTestAppWithAdminKey(t testing.TB, key string) *TestApp {
	hash, err := auth.HashAdminKey(key)
	if err != nil {
		t.Fatalf("hash admin key: %v", err)
	}
	cfg := auth.DefaultConfig()
	cfg.AdminKeyHash = hash
	return newTestApp(t, cfg)
}

func newTestApp(t testing.TB, authCfg auth.Config) *TestApp {
	store := memory.New()
	mockClock := quartz.NewMock(t)
	mockClock.Set(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockRandom.ShuffleDisabled = true

	ta := &TestApp{
		MockClock:   mockClock,
		MockRandom:  mockRandom,
		MockStorage: store,
	}

	reg := newDeckRegistry(mockClock, ta.nextDeck)
	ta.App = newWithDependencies(store, mockClock, mockRandom, reg, authCfg, TestSessionTimeout, t.TempDir(), testutil.NopLogger())
	return ta
}

// QueueDeck makes the next game deal the given card codes in order
func (t *TestApp) QueueDeck(codes ...string) {
	t.decksMu.Lock()
	defer t.decksMu.Unlock()
	t.decks = append(t.decks, deck.FromCards(model.MustParseCards(codes...)...))
}

func (t *TestApp) nextDeck() *deck.Deck {
	t.decksMu.Lock()
	defer t.decksMu.Unlock()
	if len(t.decks) == 0 {
		return deck.New(t.MockRandom)
	}
	d := t.decks[0]
	t.decks = t.decks[1:]
	return d
}

// CreateGuest registers a guest with a predictable ID and token
func (t *TestApp) CreateGuest(ctx context.Context, id, name string) (*auth.Session, error) {
	t.MockRandom.QueueString(id, "token-"+id)
	return t.AuthService.CreateGuestPlayer(ctx, name)
}

// Advance moves the mock clock forward by d, firing any timers due
func (t *TestApp) Advance(ctx context.Context, d time.Duration) {
	t.MockClock.Advance(d).MustWait(ctx)
}
