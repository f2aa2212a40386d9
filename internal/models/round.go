// internal/models/round.go
package models

import "github.com/google/uuid"

// RoundRecord is the minimal summary of a finished round, shipped to the historian.
type RoundRecord struct {
	RoundID      uuid.UUID `json:"round_id"`
	UserID       uuid.UUID `json:"user_id"`
	Bet          int64     `json:"bet"`
	ClientCards  []string  `json:"client_cards"`
	ServerCards  []string  `json:"server_cards"`
	ClientPoint  int       `json:"client_point"`
	ServerPoint  int       `json:"server_point"`
	Outcome      string    `json:"outcome"` // 'win', 'lose', 'draw' from the client's side
	BalanceAfter int64     `json:"balance_after"`
	Eliminated   bool      `json:"eliminated"`
	Timestamp    int64     `json:"timestamp"` // epoch millis
}
