package server_test

import (
	"context"
	"io"
	"net"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/baccarat/internal/client"
	"github.com/jason-s-yu/baccarat/internal/game"
	"github.com/jason-s-yu/baccarat/internal/handlers"
	"github.com/jason-s-yu/baccarat/internal/ledger"
	"github.com/jason-s-yu/baccarat/internal/models"
	"github.com/jason-s-yu/baccarat/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var newUserRe = regexp.MustCompile(`^user-id ([0-9a-f-]{36}) amount 1000000$`)

// houseAlwaysWins deals the client 6 points and the server 9.
var houseAlwaysWins = []models.Card{
	models.MustCard(models.Ace, models.Spades), models.MustCard(models.Nine, models.Spades),
	models.MustCard(models.Two, models.Spades), models.MustCard(models.Ten, models.Spades),
	models.MustCard(models.Three, models.Spades), models.MustCard(models.Ten, models.Clubs),
}

type harness struct {
	addr   string
	ledger *ledger.Ledger
}

func startGame(t *testing.T, source game.CardSource) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	l := ledger.New()
	engine := game.NewEngine(l, logger)
	if source != nil {
		engine.Source = source
	}
	d := handlers.NewDispatcher(l, engine, logger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.New(d, logger, server.Config{ReadTimeout: time.Second}).Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return &harness{addr: ln.Addr().String(), ledger: l}
}

func (h *harness) query(t *testing.T, q string) string {
	t.Helper()
	resp, err := client.Query(context.Background(), h.addr, q)
	require.NoError(t, err)
	return resp
}

func (h *harness) newUser(t *testing.T) uuid.UUID {
	t.Helper()
	m := newUserRe.FindStringSubmatch(h.query(t, "new-user"))
	require.Len(t, m, 2)
	return uuid.MustParse(m[1])
}

func TestNewUserOverTCP(t *testing.T) {
	h := startGame(t, nil)

	resp := h.query(t, "new-user")
	require.Regexp(t, newUserRe, resp)

	id := uuid.MustParse(newUserRe.FindStringSubmatch(resp)[1])
	bal, err := h.ledger.Balance(id)
	require.NoError(t, err)
	assert.Equal(t, ledger.StartingBalance, bal)

	assert.Regexp(t, newUserRe, h.query(t, "NEW-USER"))
}

func TestNewGameUnknownUser(t *testing.T) {
	h := startGame(t, nil)
	id := uuid.New()

	resp := h.query(t, "new-game user-id "+id.String()+" bet-money 500")
	assert.Equal(t, "User ID "+id.String()+" does not exist, please create the user first", resp)
}

func TestNewGameNonNumericBet(t *testing.T) {
	h := startGame(t, nil)
	id := h.newUser(t)

	resp := h.query(t, "new-game user-id "+id.String()+" bet-money abc")
	assert.Equal(t, "Invalid game query format, please try again", resp)
}

func TestGarbageQuery(t *testing.T) {
	h := startGame(t, nil)
	assert.Equal(t, "Invalid game query format, please try again", h.query(t, "deal me in"))
}

func TestQuitGame(t *testing.T) {
	h := startGame(t, nil)
	id := h.newUser(t)

	resp := h.query(t, "quit-game user-id "+id.String())
	assert.Contains(t, resp, id.String())
	assert.Equal(t, "User ID "+id.String()+" has quit. Have a nice day!", resp)

	resp = h.query(t, "new-game user-id "+id.String()+" bet-money 10")
	assert.Equal(t, "User ID "+id.String()+" does not exist, please create the user first", resp)

	resp = h.query(t, "quit-game user-id "+id.String())
	assert.Contains(t, resp, "does not exist")
}

func TestPlayRoundOverTCP(t *testing.T) {
	h := startGame(t, game.NewSeededSource(11))
	id := h.newUser(t)

	resp := h.query(t, "new-game user-id "+id.String()+" bet-money 500")
	lines := strings.Split(resp, "\n")
	require.Len(t, lines, 9)
	for i := 0; i < game.CardsPerRound; i++ {
		side := "Client card "
		if i%2 == 1 {
			side = "Server card "
		}
		assert.True(t, strings.HasPrefix(lines[i], side), "line %d: %q", i, lines[i])
	}
	assert.Regexp(t, `^Server point: [0-9]$`, lines[6])
	assert.Regexp(t, `^Your point: [0-9]$`, lines[7])
	assert.Regexp(t, `^(You won!|You lost!|Draw!) Your current money is (1000500|999500|1000000)$`, lines[8])
}

func TestBankruptcyOverTCP(t *testing.T) {
	h := startGame(t, game.NewScriptedSource(houseAlwaysWins...))
	id := h.newUser(t)
	q := "new-game user-id " + id.String() + " bet-money 500000"

	resp := h.query(t, q)
	assert.True(t, strings.HasSuffix(resp, "You lost! Your current money is 500000"), resp)

	resp = h.query(t, q)
	assert.True(t, strings.HasSuffix(resp,
		"You lost! Your current money is 0\nYou've lost all of the cash. Come back next time."), resp)
	assert.False(t, h.ledger.Exists(id))

	resp = h.query(t, q)
	assert.Equal(t, "User ID "+id.String()+" does not exist, please create the user first", resp)
}
