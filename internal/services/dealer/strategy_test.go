package dealer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/deck"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
)

func hand(codes ...string) model.Hand {
	return model.Hand(model.MustParseCards(codes...))
}

func TestStandOnSeventeen(t *testing.T) {
	tests := []struct {
		name  string
		cards []string
		want  bool
	}{
		{"sixteen draws", []string{"KS", "6D"}, true},
		{"hard seventeen stands", []string{"KS", "7D"}, false},
		{"soft seventeen stands", []string{"AS", "6D"}, false},
		{"twelve draws", []string{"AS", "AD"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StandOnSeventeen.ShouldDraw(hand(tt.cards...)))
		})
	}
}

func TestPlayDrawsUntilSeventeen(t *testing.T) {
	d := deck.FromCards(model.MustParseCards("2C", "3C", "4C", "KH")...)

	got, err := Play(d, hand("0S", "2D"), StandOnSeventeen)
	require.NoError(t, err)

	assert.Equal(t, []string{"0S", "2D", "2C", "3C"}, got.Codes())
	assert.Equal(t, 17, scoring.HandValue(got))
	assert.Equal(t, 2, d.Remaining())
}

func TestPlayDoesNotMutateInput(t *testing.T) {
	d := deck.FromCards(model.MustParseCards("5C")...)
	start := hand("0S", "2D")

	_, err := Play(d, start, StandOnSeventeen)
	require.NoError(t, err)
	assert.Len(t, start, 2)
}

func TestPlayStopsImmediatelyOnSeventeen(t *testing.T) {
	d := deck.FromCards(model.MustParseCards("5C")...)

	got, err := Play(d, hand("KS", "7D"), StandOnSeventeen)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, d.Remaining())
}

func TestPlaySurfacesDeckExhausted(t *testing.T) {
	d := deck.FromCards(model.MustParseCards("2C")...)

	got, err := Play(d, hand("0S", "2D"), StandOnSeventeen)
	assert.ErrorIs(t, err, model.ErrDeckExhausted)
	assert.Len(t, got, 3)
}

func TestCustomStrategy(t *testing.T) {
	d := deck.FromCards(model.MustParseCards("2C", "3C")...)
	never := StrategyFunc(func(model.Hand) bool { return false })

	got, err := Play(d, hand("2S", "2D"), never)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
