// internal/protocol/query.go
package protocol

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// MaxQueryBytes is the receive buffer size. Longer queries are truncated, not rejected.
const MaxQueryBytes = 1 << 20

// Command keywords and argument labels of the wire grammar.
const (
	CmdNewUser  = "new-user"
	CmdNewGame  = "new-game"
	CmdQuitGame = "quit-game"

	ArgUserID   = "user-id"
	ArgBetMoney = "bet-money"
)

// Kind identifies which command a query carries.
type Kind int

const (
	NewUser Kind = iota + 1
	NewGame
	QuitGame
)

func (k Kind) String() string {
	switch k {
	case NewUser:
		return CmdNewUser
	case NewGame:
		return CmdNewGame
	case QuitGame:
		return CmdQuitGame
	}
	return "unknown"
}

// Query is one parsed request line.
type Query struct {
	Kind   Kind
	UserID uuid.UUID // set for NewGame and QuitGame
	Bet    int64     // set for NewGame
}

// Users answers whether an id is known. The ledger satisfies it.
type Users interface {
	Exists(id uuid.UUID) bool
}

// Parse turns one query line into a Query.
//
// Keywords are case-insensitive and tokens are separated by any whitespace.
// For commands that reference a user, the id is parsed and looked up in users
// before the rest of the command is checked, so a missing user is reported even
// when the remaining tokens are malformed. A nil users skips the lookup.
func Parse(line string, users Users) (Query, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 1 && fields[0] == CmdNewUser {
		return Query{Kind: NewUser}, nil
	}
	if len(fields) < 3 {
		return Query{}, MalformedError()
	}

	id, err := uuid.Parse(fields[2])
	if err != nil {
		return Query{}, MalformedError()
	}
	if users != nil && !users.Exists(id) {
		return Query{}, UnknownUserError(id)
	}
	if fields[1] != ArgUserID {
		return Query{}, MalformedError()
	}

	switch fields[0] {
	case CmdNewGame:
		if len(fields) != 5 || fields[3] != ArgBetMoney {
			return Query{}, MalformedError()
		}
		bet, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil || bet < 1 {
			return Query{}, MalformedError()
		}
		return Query{Kind: NewGame, UserID: id, Bet: bet}, nil
	case CmdQuitGame:
		if len(fields) != 3 {
			return Query{}, MalformedError()
		}
		return Query{Kind: QuitGame, UserID: id}, nil
	}
	return Query{}, MalformedError()
}

// String renders q back into its canonical wire form.
func (q Query) String() string {
	switch q.Kind {
	case NewUser:
		return CmdNewUser
	case NewGame:
		return CmdNewGame + " " + ArgUserID + " " + q.UserID.String() + " " + ArgBetMoney + " " + strconv.FormatInt(q.Bet, 10)
	case QuitGame:
		return CmdQuitGame + " " + ArgUserID + " " + q.UserID.String()
	}
	return ""
}
