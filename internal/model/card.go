package model

import "fmt"

// Suit is one of the four French suits, encoded by its initial
type Suit byte

const (
	SuitClubs    Suit = 'C'
	SuitDiamonds Suit = 'D'
	SuitHearts   Suit = 'H'
	SuitSpades   Suit = 'S'
)

// Suits lists the suits in deck order
var Suits = []Suit{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades}

// Name returns the lowercase English name of the suit
func (s Suit) Name() string {
	switch s {
	case SuitClubs:
		return "clubs"
	case SuitDiamonds:
		return "diamonds"
	case SuitHearts:
		return "hearts"
	case SuitSpades:
		return "spades"
	default:
		return "unknown"
	}
}

// Symbol returns the unicode pip for the suit
func (s Suit) Symbol() string {
	switch s {
	case SuitClubs:
		return "♣"
	case SuitDiamonds:
		return "♦"
	case SuitHearts:
		return "♥"
	case SuitSpades:
		return "♠"
	default:
		return "?"
	}
}

// Rank is a card rank encoded by the single character used in card codes.
// Ten is encoded as '0' so that every code is exactly two characters.
type Rank byte

const (
	RankAce   Rank = 'A'
	RankTwo   Rank = '2'
	RankThree Rank = '3'
	RankFour  Rank = '4'
	RankFive  Rank = '5'
	RankSix   Rank = '6'
	RankSeven Rank = '7'
	RankEight Rank = '8'
	RankNine  Rank = '9'
	RankTen   Rank = '0'
	RankJack  Rank = 'J'
	RankQueen Rank = 'Q'
	RankKing  Rank = 'K'
)

// Ranks lists the ranks in deck order
var Ranks = []Rank{
	RankAce, RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven,
	RankEight, RankNine, RankTen, RankJack, RankQueen, RankKing,
}

// Points returns the blackjack value of the rank, with aces counted high
func (r Rank) Points() int {
	switch r {
	case RankAce:
		return 11
	case RankTen, RankJack, RankQueen, RankKing:
		return 10
	default:
		return int(r - '0')
	}
}

// String returns the printable rank ("10" rather than the code character)
func (r Rank) String() string {
	if r == RankTen {
		return "10"
	}
	return string(rune(r))
}

func (r Rank) valid() bool {
	for _, known := range Ranks {
		if r == known {
			return true
		}
	}
	return false
}

func (s Suit) valid() bool {
	for _, known := range Suits {
		if s == known {
			return true
		}
	}
	return false
}

// Card is an immutable playing card value
type Card struct {
	Rank Rank
	Suit Suit
}

// Code returns the two character card code, e.g. "AS" or "0H"
func (c Card) Code() string {
	return string([]byte{byte(c.Rank), byte(c.Suit)})
}

// String returns a human-readable form such as "10♥"
func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// IsAce reports whether the card is an ace
func (c Card) IsAce() bool {
	return c.Rank == RankAce
}

// ParseCard converts a card code back into a Card
func ParseCard(code string) (Card, error) {
	if len(code) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, code)
	}
	c := Card{Rank: Rank(code[0]), Suit: Suit(code[1])}
	if !c.Rank.valid() || !c.Suit.valid() {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, code)
	}
	return c, nil
}

// MustParseCards parses a list of codes and panics on an invalid one.
// Intended for tests and fixed tables.
func MustParseCards(codes ...string) []Card {
	cards := make([]Card, len(codes))
	for i, code := range codes {
		c, err := ParseCard(code)
		if err != nil {
			panic(err)
		}
		cards[i] = c
	}
	return cards
}

// AllCards returns the full 52 card alphabet in suit-major order
func AllCards() []Card {
	cards := make([]Card, 0, len(Suits)*len(Ranks))
	for _, s := range Suits {
		for _, r := range Ranks {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	return cards
}

// Hand is the ordered list of cards held by the player or the dealer
type Hand []Card

// Codes returns the card codes of the hand in deal order
func (h Hand) Codes() []string {
	codes := make([]string, len(h))
	for i, c := range h {
		codes[i] = c.Code()
	}
	return codes
}

// Clone returns a copy that shares no backing array with h
func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}
	out := make(Hand, len(h))
	copy(out, h)
	return out
}
