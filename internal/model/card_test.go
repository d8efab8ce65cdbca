package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCardRoundTrip(t *testing.T) {
	for _, c := range AllCards() {
		parsed, err := ParseCard(c.Code())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestParseCardRejectsUnknownCodes(t *testing.T) {
	for _, code := range []string{"", "A", "10H", "1S", "AX", "ah", "ZZ"} {
		_, err := ParseCard(code)
		assert.ErrorIs(t, err, ErrInvalidCard, "code %q", code)
	}
}

func TestAllCardsIsAFullDeck(t *testing.T) {
	cards := AllCards()
	assert.Len(t, cards, 52)

	seen := make(map[string]bool)
	for _, c := range cards {
		assert.False(t, seen[c.Code()])
		seen[c.Code()] = true
	}
}

func TestCardText(t *testing.T) {
	ten := Card{Rank: RankTen, Suit: SuitHearts}
	assert.Equal(t, "0H", ten.Code())
	assert.Equal(t, "10♥", ten.String())
	assert.Equal(t, "hearts", ten.Suit.Name())

	ace := Card{Rank: RankAce, Suit: SuitSpades}
	assert.True(t, ace.IsAce())
	assert.Equal(t, 11, ace.Rank.Points())
}

func TestRankPoints(t *testing.T) {
	assert.Equal(t, 2, RankTwo.Points())
	assert.Equal(t, 9, RankNine.Points())
	assert.Equal(t, 10, RankTen.Points())
	assert.Equal(t, 10, RankJack.Points())
	assert.Equal(t, 10, RankKing.Points())
}

func TestMustParseCardsPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseCards("AS", "??") })
}

func TestHandCloneIsIndependent(t *testing.T) {
	h := Hand(MustParseCards("AS", "KD"))
	c := h.Clone()
	c[0] = Card{Rank: RankTwo, Suit: SuitClubs}

	assert.Equal(t, []string{"AS", "KD"}, h.Codes())
	assert.Nil(t, Hand(nil).Clone())
}

func TestSnapshotHidesDealerWhileInPlay(t *testing.T) {
	snap := GameSnapshot{
		State:      GameStatePlayerTurn,
		DealerHand: Hand(MustParseCards("KD", "7C")),
	}
	assert.True(t, snap.HideDealerCard())
	assert.Equal(t, []string{"KD"}, snap.VisibleDealerHand().Codes())

	snap.State = GameStateFinished
	assert.False(t, snap.HideDealerCard())
	assert.Equal(t, []string{"KD", "7C"}, snap.VisibleDealerHand().Codes())
}
