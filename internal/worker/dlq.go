package worker

// dlq.go — Dead Letter Queue
// Receipt and email jobs that fail permanently, or run out of attempts, are
// parked here for manual inspection. One Redis list per source queue:
// dlq:{original_queue}, newest first and capped at dlqMaxLen entries.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"
	dlqMaxLen = 1000
)

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
}

// SendToDLQ parks a failed job. Errors are logged, not returned: the job is
// already lost to the worker and nothing upstream can retry the push.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	dlqKey := DLQPrefix + queue
	_, err = rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, dlqKey, data)
		p.LTrim(ctx, dlqKey, 0, dlqMaxLen-1)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: failed to push to DLQ")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLengths reports the size of each queue's DLQ, keyed by queue name.
func DLQLengths(ctx context.Context, rdb *redis.Client, queues ...string) (map[string]int64, error) {
	cmds := make(map[string]*redis.IntCmd, len(queues))
	_, err := rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, q := range queues {
			cmds[q] = p.LLen(ctx, DLQPrefix+q)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(queues))
	for q, cmd := range cmds {
		out[q] = cmd.Val()
	}
	return out, nil
}
