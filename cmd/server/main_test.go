package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/jason-s-yu/baccarat/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// freePort reserves a loopback port and releases it for the caller.
func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return strconv.Itoa(port)
}

// ping hits the gateway's liveness probe on a fresh connection.
func ping(port string) error {
	c := &http.Client{
		Timeout:   time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	resp, err := c.Get("http://127.0.0.1:" + port + "/ping")
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New(resp.Status)
	}
	return nil
}

func TestRunRedisUnavailable(t *testing.T) {
	cfg := config.Config{Port: "0", RedisAddr: "127.0.0.1:1"}
	err := run(context.Background(), cfg, quietLogger())
	assert.ErrorContains(t, err, "round history")
}

func TestRunBindFailureShutsDownGateway(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	wsPort := freePort(t)
	cfg := config.Config{
		Port:   strconv.Itoa(busy.Addr().(*net.TCPAddr).Port),
		WSPort: wsPort,
	}

	err = run(context.Background(), cfg, quietLogger())
	require.Error(t, err)

	// run returned only after the gateway was shut down
	assert.Error(t, ping(wsPort))
}

func TestRunStopsOnCancel(t *testing.T) {
	wsPort := freePort(t)
	cfg := config.Config{Port: "0", WSPort: wsPort}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, quietLogger()) }()

	require.Eventually(t, func() bool { return ping(wsPort) == nil }, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("run did not return after cancellation")
	}

	assert.Error(t, ping(wsPort))
}
