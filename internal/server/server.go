// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/jason-s-yu/baccarat/internal/middleware"
	"github.com/jason-s-yu/baccarat/internal/protocol"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const transport = "tcp"

// DefaultMaxConns bounds open connections. A connection waiting for its query
// holds a protocol.MaxQueryBytes buffer, so the default caps that at 256 MiB.
const DefaultMaxConns = 256

// Handler answers one query with one response.
type Handler interface {
	Handle(ctx context.Context, query string) string
}

// Config tunes the connection loop. Zero fields take the defaults below.
type Config struct {
	Workers      int           // dispatch workers; 1 keeps every query on a single loop
	QueueSize    int           // read queries waiting for a worker
	MaxConns     int64         // connections held open at once; each may pin a MaxQueryBytes buffer
	ReadTimeout  time.Duration // how long a client may stay silent after connecting
	WriteTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.QueueSize < 1 {
		c.QueueSize = 64
	}
	if c.MaxConns < 1 {
		c.MaxConns = DefaultMaxConns
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	return c
}

// Server runs the accept/read/dispatch/write/close cycle for every connection.
//
// Each accepted connection gets a goroutine that waits for its single query to
// become readable; the runtime poller plays the role of the readiness loop, so a
// client that never writes only holds its own goroutine. Read queries are handed,
// in the order they became readable, to a fixed set of dispatch workers that run
// the handler, write the response, and close the connection.
type Server struct {
	handler Handler
	logger  *logrus.Logger
	cfg     Config
	slots   *semaphore.Weighted
	bufs    sync.Pool
}

// New builds a server around handler.
func New(handler Handler, logger *logrus.Logger, cfg Config) *Server {
	cfg = cfg.withDefaults()
	return &Server{
		handler: handler,
		logger:  logger,
		cfg:     cfg,
		slots:   semaphore.NewWeighted(cfg.MaxConns),
		bufs: sync.Pool{New: func() any {
			b := make([]byte, protocol.MaxQueryBytes)
			return &b
		}},
	}
}

type request struct {
	conn     net.Conn
	remote   string
	query    string
	size     int
	accepted time.Time
}

// ListenAndServe binds addr and serves until ctx is cancelled. Failing to bind is
// the only error it returns.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen(transport, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.logger.Infof("Listening for queries on %s", ln.Addr())
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes ln, lets
// queries already read finish, and returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	ready := make(chan request, s.cfg.QueueSize)

	g.Go(func() error {
		<-gctx.Done()
		ln.Close()
		return nil
	})

	g.Go(func() error {
		var readers sync.WaitGroup
		defer func() {
			readers.Wait()
			close(ready)
		}()
		return s.acceptLoop(gctx, ln, ready, &readers)
	})

	for i := 0; i < s.cfg.Workers; i++ {
		g.Go(func() error {
			for req := range ready {
				s.respond(ctx, req)
			}
			return nil
		})
	}

	return g.Wait()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener, ready chan<- request, readers *sync.WaitGroup) error {
	var backoff time.Duration
	for {
		if err := s.slots.Acquire(ctx, 1); err != nil {
			return nil
		}
		conn, err := ln.Accept()
		if err != nil {
			s.slots.Release(1)
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("listener closed: %w", err)
			}
			backoff = nextBackoff(backoff)
			s.logger.WithError(err).Warnf("accept failed; retrying in %v", backoff)
			if !sleepCtx(ctx, backoff) {
				return nil
			}
			continue
		}
		backoff = 0

		readers.Add(1)
		go func() {
			defer readers.Done()
			s.read(ctx, conn, ready)
		}()
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > time.Second {
		d = time.Second
	}
	return d
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// read waits for the connection's only query and queues it for dispatch.
// Anything past MaxQueryBytes is dropped.
func (s *Server) read(ctx context.Context, conn net.Conn, ready chan<- request) {
	accepted := time.Now()
	remote := conn.RemoteAddr().String()
	middleware.LogConnect(s.logger, remote, transport)

	buf := s.bufs.Get().(*[]byte)
	defer s.bufs.Put(buf)

	conn.SetReadDeadline(accepted.Add(s.cfg.ReadTimeout))
	n, err := conn.Read(*buf)
	if n == 0 {
		middleware.LogDisconnect(s.logger, remote, transport, err)
		s.release(conn)
		return
	}

	query, err := protocol.Decode((*buf)[:n])
	if err != nil {
		s.logger.WithError(err).WithField("remote", remote).Warn("dropping undecodable query")
		s.release(conn)
		return
	}

	req := request{conn: conn, remote: remote, query: query, size: n, accepted: accepted}
	select {
	case ready <- req:
	case <-ctx.Done():
		s.release(conn)
	}
}

// respond runs the handler, writes its answer, and closes the connection.
func (s *Server) respond(ctx context.Context, req request) {
	defer s.release(req.conn)

	s.logger.WithFields(logrus.Fields{"remote": req.remote, "query": req.query}).Debug("query received")
	resp := s.handler.Handle(ctx, req.query)

	out, err := protocol.Encode(resp)
	if err != nil {
		s.logger.WithError(err).Error("failed to encode response")
		return
	}

	req.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if _, err := req.conn.Write(out); err != nil {
		middleware.LogDisconnect(s.logger, req.remote, transport, err)
		return
	}
	middleware.LogQuery(s.logger, req.remote, transport, req.size, len(out), time.Since(req.accepted))
}

func (s *Server) release(conn net.Conn) {
	conn.Close()
	s.slots.Release(1)
}
