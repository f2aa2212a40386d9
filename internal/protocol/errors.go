// internal/protocol/errors.go
package protocol

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrorKind classifies a rejected query.
type ErrorKind int

const (
	MalformedQuery ErrorKind = iota + 1 // unparseable command, missing tokens, bad id or bet
	UnknownUser                         // well-formed id absent from the ledger
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedQuery:
		return "malformed_query"
	case UnknownUser:
		return "unknown_user"
	}
	return "unknown_error"
}

// QueryError is a rejected query. Its message is sent to the client verbatim.
type QueryError struct {
	Kind   ErrorKind
	UserID uuid.UUID // set for UnknownUser
}

// MalformedError returns the generic malformed-query error.
func MalformedError() *QueryError {
	return &QueryError{Kind: MalformedQuery}
}

// UnknownUserError returns the error naming a missing id.
func UnknownUserError(id uuid.UUID) *QueryError {
	return &QueryError{Kind: UnknownUser, UserID: id}
}

func (e *QueryError) Error() string {
	if e.Kind == UnknownUser {
		return fmt.Sprintf("User ID %s does not exist, please create the user first", e.UserID)
	}
	return "Invalid game query format, please try again"
}
