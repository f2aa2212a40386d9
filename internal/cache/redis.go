// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/baccarat/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for round records.
const DefaultQueueName = "baccarat_rounds"

// ErrBadRecord marks a queue entry that could not be decoded. The entry is consumed.
var ErrBadRecord = errors.New("invalid round record")

// Connect opens a Redis client and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// RoundQueue is a Redis list of JSON round records. The server pushes, the historian pops.
type RoundQueue struct {
	rdb  *redis.Client
	name string
}

// NewRoundQueue wraps rdb; an empty name uses DefaultQueueName.
func NewRoundQueue(rdb *redis.Client, name string) *RoundQueue {
	if name == "" {
		name = DefaultQueueName
	}
	return &RoundQueue{rdb: rdb, name: name}
}

// RecordRound serializes the record to JSON, then pushes it to the Redis queue.
// This does not block the calling logic (other than a quick network send).
func (q *RoundQueue) RecordRound(ctx context.Context, rec models.RoundRecord) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	if err := q.rdb.RPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.name, err)
	}
	return nil
}

// Pop waits up to timeout for the next record. ok is false when nothing arrived.
func (q *RoundQueue) Pop(ctx context.Context, timeout time.Duration) (rec models.RoundRecord, ok bool, err error) {
	res, err := q.rdb.BLPop(ctx, timeout, q.name).Result()
	if errors.Is(err, redis.Nil) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("BLPop %s: %w", q.name, err)
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return rec, false, nil
	}
	rec, err = DecodeRecord([]byte(res[1]))
	if err != nil {
		return rec, false, err
	}
	return rec, true, nil
}

// Len reports how many records are waiting.
func (q *RoundQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name).Result()
}

// EncodeRecord is the queue's wire format.
func EncodeRecord(rec models.RoundRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal RoundRecord: %w", err)
	}
	return data, nil
}

// DecodeRecord parses one queue entry.
func DecodeRecord(data []byte) (models.RoundRecord, error) {
	var rec models.RoundRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	return rec, nil
}
