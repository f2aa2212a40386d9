// internal/ledger/ledger.go
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// StartingBalance is the cash every new user is given.
const StartingBalance int64 = 1_000_000

// ErrUserNotFound is returned for ids that were never created, quit, or went bankrupt.
var ErrUserNotFound = errors.New("user not found")

// account guards one user's balance. Once removed is set the account is dead and
// every later operation on it reports ErrUserNotFound.
type account struct {
	mu      sync.Mutex
	balance int64
	removed bool
}

// Ledger maps user ids to cash balances.
//
// The map lock is only held to look up, insert, or delete an account. Balance
// updates lock the account alone, so rounds for unrelated users never wait on each other.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*account
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		accounts: make(map[uuid.UUID]*account),
	}
}

// CreateUser inserts a fresh id holding StartingBalance.
func (l *Ledger) CreateUser() (uuid.UUID, error) {
	for {
		id, err := uuid.NewRandom()
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to generate user id: %w", err)
		}

		l.mu.Lock()
		if _, taken := l.accounts[id]; taken {
			l.mu.Unlock()
			continue
		}
		l.accounts[id] = &account{balance: StartingBalance}
		l.mu.Unlock()
		return id, nil
	}
}

func (l *Ledger) lookup(id uuid.UUID) (*account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.accounts[id]
	return a, ok
}

// Exists reports whether id currently holds a balance.
func (l *Ledger) Exists(id uuid.UUID) bool {
	_, err := l.Balance(id)
	return err == nil
}

// Balance returns the current balance of id.
func (l *Ledger) Balance(id uuid.UUID) (int64, error) {
	a, ok := l.lookup(id)
	if !ok {
		return 0, ErrUserNotFound
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.removed {
		return 0, ErrUserNotFound
	}
	return a.balance, nil
}

// Adjust adds delta to the balance of id and returns the new balance.
// A result below 1 removes the user in the same step and reports eliminated.
func (l *Ledger) Adjust(id uuid.UUID, delta int64) (balance int64, eliminated bool, err error) {
	a, ok := l.lookup(id)
	if !ok {
		return 0, false, ErrUserNotFound
	}

	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return 0, false, ErrUserNotFound
	}
	a.balance += delta
	balance = a.balance
	if balance < 1 {
		a.removed = true
		eliminated = true
	}
	a.mu.Unlock()

	if eliminated {
		l.unlink(id, a)
	}
	return balance, eliminated, nil
}

// Remove deletes id and reports whether this call was the one that removed it.
func (l *Ledger) Remove(id uuid.UUID) bool {
	l.mu.Lock()
	a, ok := l.accounts[id]
	if ok {
		delete(l.accounts, id)
	}
	l.mu.Unlock()
	if !ok {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	wasRemoved := a.removed
	a.removed = true
	return !wasRemoved
}

// Len returns the number of live users.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.accounts)
}

// unlink drops a dead account from the map unless the id was already reused or removed.
func (l *Ledger) unlink(id uuid.UUID, a *account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.accounts[id]; ok && cur == a {
		delete(l.accounts, id)
	}
}
