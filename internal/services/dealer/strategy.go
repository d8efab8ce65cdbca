// Package dealer plays out the house hand once the player stands.
package dealer

import (
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/deck"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
)

// StandThreshold is the value at which the house stops drawing
const StandThreshold = 17

// Strategy decides whether the dealer takes another card
type Strategy interface {
	// ShouldDraw reports whether the dealer draws on the given hand
	ShouldDraw(hand model.Hand) bool
}

// StrategyFunc adapts a plain function to a Strategy
type StrategyFunc func(hand model.Hand) bool

// ShouldDraw calls f(hand)
func (f StrategyFunc) ShouldDraw(hand model.Hand) bool {
	return f(hand)
}

// StandOnSeventeen draws below 17 and stands on every 17, soft or hard
var StandOnSeventeen Strategy = StrategyFunc(func(hand model.Hand) bool {
	return scoring.HandValue(hand) < StandThreshold
})

// Play draws from d onto hand until the strategy stops. The returned hand is
// a new slice; on error it holds every card drawn before the failure.
func Play(d *deck.Deck, hand model.Hand, s Strategy) (model.Hand, error) {
	out := hand.Clone()
	for s.ShouldDraw(out) {
		c, err := d.Draw()
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}
