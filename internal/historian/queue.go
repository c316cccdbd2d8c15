// Package historian captures game history outside the engine: a redis queue
// for per-action records and a postgres store for final results. Both are
// optional collaborators; the engine runs identically without them.
package historian

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cabolab/cabo/internal/engine"
)

// DefaultQueueName is the redis list actions are pushed onto.
const DefaultQueueName = "cabo_actions"

// Queue publishes ActionRecords to a redis list for asynchronous archival.
// It implements engine.Recorder.
type Queue struct {
	client *redis.Client
	name   string
}

// NewQueue connects a redis-backed action queue from environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (default 0)
//   - HISTORIAN_QUEUE_NAME (default DefaultQueueName)
func NewQueue() (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		DB:   getEnvInt("REDIS_DB", 0),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Queue{
		client: client,
		name:   getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName),
	}, nil
}

// Record serializes the record to JSON and pushes it onto the queue.
func (q *Queue) Record(ctx context.Context, rec engine.ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal action record: %w", err)
	}
	if err := q.client.RPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to push to redis list %q: %w", q.name, err)
	}
	return nil
}

// Close releases the redis connection.
func (q *Queue) Close() error {
	return q.client.Close()
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
