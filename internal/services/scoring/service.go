// Package scoring evaluates blackjack hands.
package scoring

import (
	"strconv"

	"github.com/mcoot/blackjack-go/internal/model"
)

// Blackjack is the best possible hand value
const Blackjack = 21

// evaluate sums the hand counting aces high, then demotes aces from 11 to 1
// while the total is over 21. It returns the total and how many aces still
// count as 11.
func evaluate(hand model.Hand) (total, softAces int) {
	for _, c := range hand {
		total += c.Rank.Points()
		if c.IsAce() {
			softAces++
		}
	}
	for total > Blackjack && softAces > 0 {
		total -= 10
		softAces--
	}
	return total, softAces
}

// HandValue returns the blackjack value of a hand
func HandValue(hand model.Hand) int {
	total, _ := evaluate(hand)
	return total
}

// IsSoft reports whether an ace is still counted as 11
func IsSoft(hand model.Hand) bool {
	_, soft := evaluate(hand)
	return soft > 0
}

// IsBust reports whether the hand is over 21
func IsBust(hand model.Hand) bool {
	return HandValue(hand) > Blackjack
}

// Compare decides the outcome of a stood hand against the dealer's final hand
func Compare(player, dealer model.Hand) model.Outcome {
	p := HandValue(player)
	d := HandValue(dealer)

	switch {
	case p > Blackjack:
		return model.OutcomeLose
	case d > Blackjack:
		return model.OutcomeWin
	case p > d:
		return model.OutcomeWin
	case p == d:
		return model.OutcomeDraw
	default:
		return model.OutcomeLose
	}
}

// Describe renders a value the way players read it, e.g. "soft 17"
func Describe(hand model.Hand) string {
	total, soft := evaluate(hand)
	switch {
	case total > Blackjack:
		return "bust"
	case soft > 0 && total < Blackjack:
		return "soft " + strconv.Itoa(total)
	default:
		return strconv.Itoa(total)
	}
}
