// internal/game/score.go
package game

import "github.com/jason-s-yu/baccarat/internal/models"

// Outcome is the result of comparing one side's score against the other's.
type Outcome int

const (
	Lose Outcome = -1
	Draw Outcome = 0
	Win  Outcome = 1
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Lose:
		return "lose"
	default:
		return "draw"
	}
}

// Score accumulates the cards of one side for a single round.
//
// Two scores are ordered in three stages: point total, then suit total, then
// whichever side holds the Ace of Diamonds. Equal on all three is a draw.
type Score struct {
	point     int
	suitPoint int
	fallback  bool
}

// Add counts a card. The point total is reduced mod 10 after every card.
func (s *Score) Add(c models.Card) {
	s.point = (s.point + c.Point()) % 10
	s.suitPoint += c.SuitValue()
	if c == models.AceOfDiamonds {
		s.fallback = true
	}
}

// Point is the running point total, always in [0,9].
func (s *Score) Point() int { return s.point }

// SuitPoint is the running sum of suit values.
func (s *Score) SuitPoint() int { return s.suitPoint }

// Fallback reports whether the Ace of Diamonds has been added.
func (s *Score) Fallback() bool { return s.fallback }

// Compare reports whether s wins, loses, or draws against other.
func (s *Score) Compare(other *Score) Outcome {
	switch {
	case s.point > other.point:
		return Win
	case s.point < other.point:
		return Lose
	case s.suitPoint > other.suitPoint:
		return Win
	case s.suitPoint < other.suitPoint:
		return Lose
	case s.fallback && !other.fallback:
		return Win
	case other.fallback && !s.fallback:
		return Lose
	}
	return Draw
}
