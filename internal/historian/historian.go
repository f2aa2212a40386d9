// internal/historian/historian.go pops round records from the queue and persists them in batches.
package historian

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/baccarat/internal/cache"
	"github.com/jason-s-yu/baccarat/internal/models"
	"github.com/sirupsen/logrus"
)

// Queue yields round records; ok is false when the wait timed out empty.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (rec models.RoundRecord, ok bool, err error)
}

// Sink stores a batch atomically.
type Sink interface {
	SaveRounds(ctx context.Context, recs []models.RoundRecord) error
}

// Config tunes batching.
type Config struct {
	BatchSize  int
	FlushDelay time.Duration
	PopTimeout time.Duration
	// MaxPending caps records kept for retry while the sink is failing.
	MaxPending int
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.FlushDelay <= 0 {
		c.FlushDelay = 500 * time.Millisecond
	}
	if c.PopTimeout <= 0 {
		c.PopTimeout = 3 * time.Second
	}
	if c.MaxPending < c.BatchSize {
		c.MaxPending = 100 * c.BatchSize
	}
	return c
}

// Service accumulates records in memory and flushes them when the batch fills
// or the flush ticker fires, whichever comes first.
type Service struct {
	queue  Queue
	sink   Sink
	cfg    Config
	logger *logrus.Logger

	batchMu sync.Mutex
	batch   []models.RoundRecord
}

// New builds a historian service.
func New(queue Queue, sink Sink, logger *logrus.Logger, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		queue:  queue,
		sink:   sink,
		cfg:    cfg,
		logger: logger,
		batch:  make([]models.RoundRecord, 0, cfg.BatchSize),
	}
}

// Run consumes the queue until ctx is done, then flushes what is left.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.FlushDelay)
	defer ticker.Stop()

	s.logger.Info("historian service started")
	defer s.logger.Info("historian shutting down")

	for {
		select {
		case <-ctx.Done():
			// the run context is gone; give the final flush its own deadline
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.flush(flushCtx)
			return nil

		case <-ticker.C:
			s.flush(ctx)

		default:
			rec, ok, err := s.queue.Pop(ctx, s.cfg.PopTimeout)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				if errors.Is(err, cache.ErrBadRecord) {
					s.logger.Warnf("dropping round record: %v", err)
					continue
				}
				s.logger.Errorf("queue pop: %v", err)
				sleep(ctx, s.cfg.FlushDelay)
				continue
			}
			if !ok {
				continue
			}
			if s.append(rec) {
				s.flush(ctx)
			}
		}
	}
}

// append adds a record and reports whether the batch is full.
func (s *Service) append(rec models.RoundRecord) bool {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	s.batch = append(s.batch, rec)
	return len(s.batch) >= s.cfg.BatchSize
}

// flush writes the pending batch. On failure the records stay pending, up to MaxPending.
func (s *Service) flush(ctx context.Context) {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	if len(s.batch) == 0 {
		return
	}
	batchCopy := make([]models.RoundRecord, len(s.batch))
	copy(batchCopy, s.batch)

	if err := s.sink.SaveRounds(ctx, batchCopy); err != nil {
		if over := len(s.batch) - s.cfg.MaxPending; over > 0 {
			s.batch = append(s.batch[:0], s.batch[over:]...)
			s.logger.WithField("dropped", over).Warn("historian backlog full, oldest rounds discarded")
		}
		s.logger.WithFields(logrus.Fields{
			"pending": len(s.batch),
			"error":   err,
		}).Error("failed to flush rounds")
		return
	}
	s.batch = s.batch[:0]
	s.logger.Debugf("flushed %d rounds to DB", len(batchCopy))
}

// Pending returns the number of records not yet stored.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
