// internal/handlers/dispatcher.go
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jason-s-yu/baccarat/internal/game"
	"github.com/jason-s-yu/baccarat/internal/ledger"
	"github.com/jason-s-yu/baccarat/internal/protocol"
	"github.com/sirupsen/logrus"
)

// internalErrorMessage is sent when a query fails for a reason the client cannot fix.
const internalErrorMessage = "Internal server error, please try again"

// Dispatcher turns one query line into one response text. It owns no state of
// its own; the ledger and the engine are shared by every transport.
type Dispatcher struct {
	Ledger *ledger.Ledger
	Engine *game.Engine
	Logger *logrus.Logger
}

// NewDispatcher wires a dispatcher over a ledger and an engine playing against it.
func NewDispatcher(l *ledger.Ledger, e *game.Engine, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		Ledger: l,
		Engine: e,
		Logger: logger,
	}
}

// Handle parses and executes a query. Rejected queries come back as their
// plain-English message; Handle never fails.
func (d *Dispatcher) Handle(ctx context.Context, line string) string {
	q, err := protocol.Parse(line, d.Ledger)
	if err != nil {
		return d.reject(err)
	}

	switch q.Kind {
	case protocol.NewUser:
		id, err := d.Ledger.CreateUser()
		if err != nil {
			return d.reject(err)
		}
		d.Logger.WithField("user", id).Debug("user created")
		return fmt.Sprintf("user-id %s amount %d", id, ledger.StartingBalance)

	case protocol.NewGame:
		res, err := d.Engine.PlayRound(ctx, q.UserID, q.Bet)
		if err != nil {
			return d.reject(err)
		}
		d.Logger.WithFields(logrus.Fields{
			"user":       q.UserID,
			"round":      res.ID,
			"bet":        q.Bet,
			"outcome":    res.Outcome.String(),
			"balance":    res.Balance,
			"eliminated": res.Eliminated,
		}).Debug("round played")
		return res.Report()

	case protocol.QuitGame:
		if !d.Ledger.Remove(q.UserID) {
			return d.reject(protocol.UnknownUserError(q.UserID))
		}
		d.Logger.WithField("user", q.UserID).Debug("user quit")
		return fmt.Sprintf("User ID %s has quit. Have a nice day!", q.UserID)
	}
	return d.reject(protocol.MalformedError())
}

func (d *Dispatcher) reject(err error) string {
	var qe *protocol.QueryError
	if errors.As(err, &qe) {
		fields := logrus.Fields{"kind": qe.Kind.String()}
		if qe.Kind == protocol.UnknownUser {
			fields["user"] = qe.UserID
		}
		d.Logger.WithFields(fields).Debug("query rejected")
		return qe.Error()
	}
	d.Logger.WithError(err).Error("query failed")
	return internalErrorMessage
}
