package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/baccarat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore connects to BACCARAT_TEST_DATABASE_URL or skips.
func openTestStore(t *testing.T) *RoundStore {
	t.Helper()
	url := os.Getenv("BACCARAT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("BACCARAT_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := Connect(ctx, url)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(pool.Close)

	s := NewRoundStore(pool)
	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

func TestConnectBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://dealer@localhost:notaport/baccarat")
	assert.Error(t, err)
}

func TestSaveRoundsEmpty(t *testing.T) {
	// an empty batch never touches the pool
	s := NewRoundStore(nil)
	assert.NoError(t, s.SaveRounds(context.Background(), nil))
}

func TestSaveRoundsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	rec := models.RoundRecord{
		RoundID:      uuid.New(),
		UserID:       user,
		Bet:          500,
		ClientCards:  []string{"NINE of HEARTS", "ACE of SPADES", "TWO of CLUBS"},
		ServerCards:  []string{"KING of HEARTS", "FIVE of SPADES", "THREE of CLUBS"},
		ClientPoint:  2,
		ServerPoint:  8,
		Outcome:      "lose",
		BalanceAfter: 999_500,
		Timestamp:    time.Now().UnixMilli(),
	}
	second := rec
	second.RoundID = uuid.New()

	require.NoError(t, s.SaveRounds(ctx, []models.RoundRecord{rec, second}))
	require.NoError(t, s.SaveRounds(ctx, []models.RoundRecord{rec}))

	n, err := s.CountRounds(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
