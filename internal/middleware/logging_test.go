package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "/ping", hook.LastEntry().Data["path"])
	assert.Equal(t, http.MethodGet, hook.LastEntry().Data["method"])
}

func TestConnectionLogs(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	LogConnect(logger, "10.0.0.1:5000", "tcp")
	LogQuery(logger, "10.0.0.1:5000", "tcp", 8, 42, time.Millisecond)
	LogDisconnect(logger, "10.0.0.1:5000", "tcp", errors.New("broken pipe"))
	LogDisconnect(logger, "10.0.0.2:5000", "ws", nil)

	require.Len(t, hook.Entries, 4)
	assert.Equal(t, logrus.DebugLevel, hook.Entries[0].Level)
	assert.Equal(t, "query served", hook.Entries[1].Message)
	assert.Equal(t, 42, hook.Entries[1].Data["out"])
	assert.Contains(t, hook.Entries[2].Data, "error")
	assert.NotContains(t, hook.Entries[3].Data, "error")
	assert.Equal(t, "ws", hook.Entries[3].Data["transport"])
}
