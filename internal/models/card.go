// internal/models/card.go
package models

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	// ErrInvalidRank is returned when a rank falls outside Ace..King.
	ErrInvalidRank = errors.New("card rank must be between 1 and 13")
	// ErrInvalidSuit is returned when a suit falls outside Spades..Hearts.
	ErrInvalidSuit = errors.New("card suit must be between 1 and 4")
)

// Rank is the face of a card. Its numeric value doubles as the card's point value.
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

var rankNames = [...]string{
	Ace: "ACE", Two: "TWO", Three: "THREE", Four: "FOUR", Five: "FIVE", Six: "SIX", Seven: "SEVEN",
	Eight: "EIGHT", Nine: "NINE", Ten: "TEN", Jack: "JACK", Queen: "QUEEN", King: "KING",
}

// Value returns the numeric value of the rank (1..13).
func (r Rank) Value() int { return int(r) }

// Valid reports whether r is one of the thirteen ranks.
func (r Rank) Valid() bool { return r >= Ace && r <= King }

func (r Rank) String() string {
	if !r.Valid() {
		return fmt.Sprintf("RANK(%d)", int(r))
	}
	return rankNames[r]
}

// Suit is the suit of a card. Its numeric value is the card's suit value.
type Suit int

const (
	Spades Suit = iota + 1
	Clubs
	Diamonds
	Hearts
)

var suitNames = [...]string{Spades: "SPADES", Clubs: "CLUBS", Diamonds: "DIAMONDS", Hearts: "HEARTS"}

// Value returns the numeric value of the suit (1..4).
func (s Suit) Value() int { return int(s) }

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool { return s >= Spades && s <= Hearts }

func (s Suit) String() string {
	if !s.Valid() {
		return fmt.Sprintf("SUIT(%d)", int(s))
	}
	return suitNames[s]
}

// Card is an immutable playing card. Cards compare equal with == when rank and suit match.
type Card struct {
	rank Rank
	suit Suit
}

// AceOfDiamonds is the card that sets a score's fallback flag.
var AceOfDiamonds = Card{rank: Ace, suit: Diamonds}

// NewCard builds a specific card, validating both ranges.
func NewCard(rank Rank, suit Suit) (Card, error) {
	if !rank.Valid() {
		return Card{}, fmt.Errorf("%w: got %d", ErrInvalidRank, int(rank))
	}
	if !suit.Valid() {
		return Card{}, fmt.Errorf("%w: got %d", ErrInvalidSuit, int(suit))
	}
	return Card{rank: rank, suit: suit}, nil
}

// MustCard is NewCard for constant inputs; it panics on an invalid card.
func MustCard(rank Rank, suit Suit) Card {
	c, err := NewCard(rank, suit)
	if err != nil {
		panic(err)
	}
	return c
}

// RandomCard draws a uniformly random rank and suit from r.
// A nil r uses the package-level generator, which is safe for concurrent use.
func RandomCard(r *rand.Rand) Card {
	if r == nil {
		return Card{rank: Rank(rand.IntN(13) + 1), suit: Suit(rand.IntN(4) + 1)}
	}
	return Card{rank: Rank(r.IntN(13) + 1), suit: Suit(r.IntN(4) + 1)}
}

func (c Card) Rank() Rank { return c.rank }

func (c Card) Suit() Suit { return c.suit }

// Point is the card's contribution to a score's point total.
func (c Card) Point() int { return c.rank.Value() }

// SuitValue is the card's contribution to a score's suit total.
func (c Card) SuitValue() int { return c.suit.Value() }

func (c Card) String() string {
	return c.rank.String() + " of " + c.suit.String()
}
