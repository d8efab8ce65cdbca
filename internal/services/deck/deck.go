// Package deck models a single 52 card deck that is dealt without replacement.
package deck

import (
	"github.com/mcoot/blackjack-go/internal/dependencies/random"
	"github.com/mcoot/blackjack-go/internal/model"
)

// Size is the number of cards in a fresh deck
const Size = 52

// Deck is an ordered sequence of distinct cards. The card at index next is
// the top of the deck. A Deck is not safe for concurrent use; it is owned by
// exactly one session which serializes access.
type Deck struct {
	cards []model.Card
	next  int
}

// New returns a uniformly shuffled 52 card deck
func New(rnd random.Random) *Deck {
	cards := model.AllCards()
	rnd.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards}
}

// FromCards returns a deck that deals the given cards in order.
// Duplicate cards are dropped so the deck keeps its uniqueness invariant.
func FromCards(cards ...model.Card) *Deck {
	seen := make(map[model.Card]bool, len(cards))
	ordered := make([]model.Card, 0, len(cards))
	for _, c := range cards {
		if seen[c] {
			continue
		}
		seen[c] = true
		ordered = append(ordered, c)
	}
	return &Deck{cards: ordered}
}

// Draw removes and returns the top card
func (d *Deck) Draw() (model.Card, error) {
	if d.next >= len(d.cards) {
		return model.Card{}, model.ErrDeckExhausted
	}
	c := d.cards[d.next]
	d.next++
	return c, nil
}

// Remaining returns how many cards are left to deal
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
