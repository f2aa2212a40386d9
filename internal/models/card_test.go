package models

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCardAllValid(t *testing.T) {
	for r := Ace; r <= King; r++ {
		for s := Spades; s <= Hearts; s++ {
			c, err := NewCard(r, s)
			require.NoError(t, err)
			assert.Equal(t, r, c.Rank())
			assert.Equal(t, s, c.Suit())
			assert.Equal(t, int(r), c.Point())
			assert.Equal(t, int(s), c.SuitValue())

			again, _ := NewCard(r, s)
			assert.Equal(t, c, again)
			assert.True(t, c == again)
		}
	}
}

func TestNewCardRejectsOutOfRange(t *testing.T) {
	_, err := NewCard(0, Spades)
	assert.ErrorIs(t, err, ErrInvalidRank)
	_, err = NewCard(14, Spades)
	assert.ErrorIs(t, err, ErrInvalidRank)
	_, err = NewCard(Ace, 0)
	assert.ErrorIs(t, err, ErrInvalidSuit)
	_, err = NewCard(Ace, 5)
	assert.ErrorIs(t, err, ErrInvalidSuit)
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "ACE of DIAMONDS", AceOfDiamonds.String())
	assert.Equal(t, "KING of HEARTS", MustCard(King, Hearts).String())
	assert.Equal(t, "RANK(0)", Rank(0).String())
}

func TestRandomCardInRange(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	seenRanks := map[Rank]bool{}
	seenSuits := map[Suit]bool{}
	for i := 0; i < 2000; i++ {
		c := RandomCard(r)
		require.True(t, c.Rank().Valid(), "rank %d", c.Rank())
		require.True(t, c.Suit().Valid(), "suit %d", c.Suit())
		seenRanks[c.Rank()] = true
		seenSuits[c.Suit()] = true
	}
	assert.Len(t, seenRanks, 13)
	assert.Len(t, seenSuits, 4)

	c := RandomCard(nil)
	assert.True(t, c.Rank().Valid())
	assert.True(t, c.Suit().Valid())
}
