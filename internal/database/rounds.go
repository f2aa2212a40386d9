// internal/database/rounds.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/baccarat/internal/models"
)

const roundsSchema = `
	CREATE TABLE IF NOT EXISTS rounds (
		round_id      UUID PRIMARY KEY,
		user_id       UUID NOT NULL,
		bet           BIGINT NOT NULL,
		client_cards  TEXT[] NOT NULL,
		server_cards  TEXT[] NOT NULL,
		client_point  SMALLINT NOT NULL,
		server_point  SMALLINT NOT NULL,
		outcome       TEXT NOT NULL,
		balance_after BIGINT NOT NULL,
		eliminated    BOOLEAN NOT NULL DEFAULT FALSE,
		played_at     TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS rounds_user_id_idx ON rounds (user_id, played_at);
`

// RoundStore persists round records. It is an audit log only; balances live in memory.
type RoundStore struct {
	pool *pgxpool.Pool
}

// NewRoundStore wraps an open pool.
func NewRoundStore(pool *pgxpool.Pool) *RoundStore {
	return &RoundStore{pool: pool}
}

// EnsureSchema creates the rounds table if needed.
func (s *RoundStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, roundsSchema); err != nil {
		return fmt.Errorf("create rounds schema: %w", err)
	}
	return nil
}

// SaveRounds inserts the batch in one transaction. Records already stored are skipped,
// so a batch retried after a partial failure is safe.
func (s *RoundStore) SaveRounds(ctx context.Context, recs []models.RoundRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if err := insertRoundTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert round %v: %w", rec.RoundID, err)
			}
		}
		return nil
	})
}

// CountRounds returns how many rounds are stored for a user.
func (s *RoundStore) CountRounds(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rounds WHERE user_id=$1`, userID).Scan(&n)
	return n, err
}

func insertRoundTx(ctx context.Context, tx pgx.Tx, rec models.RoundRecord) error {
	q := `
		INSERT INTO rounds (
			round_id, user_id, bet, client_cards, server_cards,
			client_point, server_point, outcome, balance_after, eliminated, played_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (round_id) DO NOTHING
	`
	_, err := tx.Exec(ctx, q,
		rec.RoundID, rec.UserID, rec.Bet, rec.ClientCards, rec.ServerCards,
		rec.ClientPoint, rec.ServerPoint, rec.Outcome, rec.BalanceAfter, rec.Eliminated,
		time.UnixMilli(rec.Timestamp),
	)
	return err
}
