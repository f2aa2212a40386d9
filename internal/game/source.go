// internal/game/source.go
package game

import (
	"math/rand/v2"
	"sync"

	"github.com/jason-s-yu/baccarat/internal/models"
)

// CardSource supplies cards to the dealer. Implementations must be safe for
// concurrent use; uniqueness within a round is the dealer's job, not the source's.
type CardSource interface {
	Draw() models.Card
}

// RandomSource draws from the runtime's ChaCha8 generator.
type RandomSource struct{}

func (RandomSource) Draw() models.Card { return models.RandomCard(nil) }

// SeededSource is a deterministic source, mostly for tests and replays.
type SeededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a source whose sequence depends only on seed.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededSource) Draw() models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.RandomCard(s.rng)
}

// ScriptedSource replays a fixed list of cards, wrapping around at the end.
type ScriptedSource struct {
	mu    sync.Mutex
	cards []models.Card
	next  int
}

// NewScriptedSource panics on an empty script.
func NewScriptedSource(cards ...models.Card) *ScriptedSource {
	if len(cards) == 0 {
		panic("game: empty card script")
	}
	return &ScriptedSource{cards: cards}
}

func (s *ScriptedSource) Draw() models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cards[s.next]
	s.next = (s.next + 1) % len(s.cards)
	return c
}
