// internal/game/round.go
package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/baccarat/internal/ledger"
	"github.com/jason-s-yu/baccarat/internal/models"
	"github.com/jason-s-yu/baccarat/internal/protocol"
	"github.com/sirupsen/logrus"
)

// CardsPerRound is the number of cards dealt in one round, alternating client and server.
const CardsPerRound = 6

// MaxBet is the largest accepted bet.
const MaxBet = math.MaxInt32

// maxRedraws bounds how often the dealer retries a duplicate card before giving up.
const maxRedraws = 10_000

// ErrDealFailed is returned when the card source cannot produce six distinct cards.
var ErrDealFailed = errors.New("could not deal distinct cards")

// Ledger is the part of the user ledger the engine needs.
type Ledger interface {
	Balance(id uuid.UUID) (int64, error)
	Adjust(id uuid.UUID, delta int64) (int64, bool, error)
}

// Recorder receives every finished round. It must not block for long; the
// engine calls it inline after settling the balance.
type Recorder interface {
	RecordRound(ctx context.Context, rec models.RoundRecord) error
}

// NopRecorder drops all records.
type NopRecorder struct{}

func (NopRecorder) RecordRound(context.Context, models.RoundRecord) error { return nil }

// Engine deals and settles rounds against a ledger.
type Engine struct {
	Ledger   Ledger
	Source   CardSource
	Recorder Recorder
	Logger   *logrus.Logger
}

// NewEngine returns an engine with a random card source and no recorder.
func NewEngine(l Ledger, logger *logrus.Logger) *Engine {
	return &Engine{
		Ledger:   l,
		Source:   RandomSource{},
		Recorder: NopRecorder{},
		Logger:   logger,
	}
}

// RoundResult is everything needed to describe one round to the player.
type RoundResult struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Bet    int64

	// Cards in dealing order; even indexes went to the client, odd to the server.
	Cards  [CardsPerRound]models.Card
	Client Score
	Server Score

	Outcome    Outcome // from the client's side
	Balance    int64
	Eliminated bool

	// Vanished is set when the user left the ledger between validation and settlement.
	Vanished bool
}

// PlayRound validates the bet and user, deals, and settles the balance.
// Rejected bets and unknown users come back as *protocol.QueryError.
func (e *Engine) PlayRound(ctx context.Context, userID uuid.UUID, bet int64) (*RoundResult, error) {
	if bet < 1 || bet > MaxBet {
		return nil, protocol.MalformedError()
	}
	if _, err := e.Ledger.Balance(userID); err != nil {
		return nil, unknownUser(userID, err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate round id: %w", err)
	}
	res := &RoundResult{ID: id, UserID: userID, Bet: bet}

	if err := e.deal(res); err != nil {
		return nil, err
	}

	res.Outcome = res.Client.Compare(&res.Server)
	switch res.Outcome {
	case Win:
		res.Balance, _, err = e.Ledger.Adjust(userID, bet)
	case Lose:
		res.Balance, res.Eliminated, err = e.Ledger.Adjust(userID, -bet)
	default:
		res.Balance, err = e.Ledger.Balance(userID)
	}
	if err != nil {
		if !errors.Is(err, ledger.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to settle round %s: %w", id, err)
		}
		res.Vanished = true
	}

	e.record(ctx, res)
	return res, nil
}

// deal draws six pairwise distinct cards and hands them out alternately.
func (e *Engine) deal(res *RoundResult) error {
	for i := 0; i < CardsPerRound; i++ {
		card, ok := e.drawDistinct(res.Cards[:i])
		if !ok {
			return ErrDealFailed
		}
		res.Cards[i] = card
		if i%2 == 0 {
			res.Client.Add(card)
		} else {
			res.Server.Add(card)
		}
	}
	return nil
}

func (e *Engine) drawDistinct(dealt []models.Card) (models.Card, bool) {
	for try := 0; try < maxRedraws; try++ {
		c := e.Source.Draw()
		if !containsCard(dealt, c) {
			return c, true
		}
	}
	return models.Card{}, false
}

func containsCard(cards []models.Card, c models.Card) bool {
	for _, d := range cards {
		if d == c {
			return true
		}
	}
	return false
}

func (e *Engine) record(ctx context.Context, res *RoundResult) {
	if e.Recorder == nil || res.Vanished {
		return
	}
	if err := e.Recorder.RecordRound(ctx, res.Record(time.Now())); err != nil && e.Logger != nil {
		e.Logger.WithFields(logrus.Fields{
			"round": res.ID,
			"user":  res.UserID,
			"error": err,
		}).Warn("failed to record round")
	}
}

func unknownUser(id uuid.UUID, err error) error {
	if errors.Is(err, ledger.ErrUserNotFound) {
		return protocol.UnknownUserError(id)
	}
	return fmt.Errorf("failed to read balance of %s: %w", id, err)
}

// Record summarises the round for the historian.
func (r *RoundResult) Record(at time.Time) models.RoundRecord {
	rec := models.RoundRecord{
		RoundID:      r.ID,
		UserID:       r.UserID,
		Bet:          r.Bet,
		ClientPoint:  r.Client.Point(),
		ServerPoint:  r.Server.Point(),
		Outcome:      r.Outcome.String(),
		BalanceAfter: r.Balance,
		Eliminated:   r.Eliminated,
		Timestamp:    at.UnixMilli(),
	}
	for i, c := range r.Cards {
		if i%2 == 0 {
			rec.ClientCards = append(rec.ClientCards, c.String())
		} else {
			rec.ServerCards = append(rec.ServerCards, c.String())
		}
	}
	return rec
}

// Report renders the round as the multi-line text sent back to the player.
func (r *RoundResult) Report() string {
	var b strings.Builder
	for i, c := range r.Cards {
		side := "Client"
		if i%2 == 1 {
			side = "Server"
		}
		fmt.Fprintf(&b, "%s card %s\n", side, c)
	}
	fmt.Fprintf(&b, "Server point: %d\nYour point: %d\n", r.Server.Point(), r.Client.Point())

	if r.Vanished {
		b.WriteString(protocol.UnknownUserError(r.UserID).Error())
		b.WriteString("\n")
		return b.String()
	}

	switch r.Outcome {
	case Win:
		fmt.Fprintf(&b, "You won! Your current money is %d\n", r.Balance)
	case Lose:
		fmt.Fprintf(&b, "You lost! Your current money is %d\n", r.Balance)
		if r.Eliminated {
			b.WriteString("You've lost all of the cash. Come back next time.\n")
		}
	default:
		fmt.Fprintf(&b, "Draw! Your current money is %d\n", r.Balance)
	}
	return b.String()
}
