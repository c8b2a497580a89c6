package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueComprobante = "jobs:comprobante"
	QueueEmail       = "jobs:email"

	maxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobHandler processes the payload of one job. Returning a Permanent error
// sends the job to the DLQ without further retries.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueComprobante pushes a receipt job to Redis.
func (d *Dispatcher) EnqueueComprobante(ctx context.Context, payload ComprobanteJobPayload) error {
	return d.enqueue(ctx, QueueComprobante, "comprobante", payload)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming every queue that
// has a handler. Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers map[string]JobHandler, numWorkers int) {
	queues := make([]string, 0, len(handlers))
	for q := range handlers {
		queues = append(queues, q)
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, queues, i)
	}
	log.Info().Strs("queues", queues).Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers map[string]JobHandler, queues []string, id int) {
	fallos := 0
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if errors.Is(err, redis.Nil) {
				fallos = 0
				continue // timeout
			}
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				fallos++
				wait := popBackoff(fallos)
				log.Warn().Err(err).Int("worker", id).Dur("retry_in", wait).Msg("worker: BRPOP failed")
				select {
				case <-ctx.Done():
				case <-time.After(wait):
				}
				continue
			}
			fallos = 0
			if len(result) < 2 {
				continue
			}
			queue, raw := result[0], result[1]
			job, err := processJob(ctx, handlers, queue, raw)
			if err != nil {
				SendToDLQ(context.WithoutCancel(ctx), rdb, queue, job, err.Error(), attemptsFor(err))
			}
		}
	}
}

// processJob decodes raw and runs the queue's handler with retries.
func processJob(ctx context.Context, handlers map[string]JobHandler, queue, raw string) (Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return Job{Payload: json.RawMessage(raw)}, Permanent(err)
	}
	h, ok := handlers[queue]
	if !ok {
		return job, Permanent(errors.New("no handler for queue " + queue))
	}

	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	return job, withRetry(ctx, maxAttempts, func(attempt int) error {
		err := h.Process(ctx, job.Payload)
		if err != nil && !IsPermanent(err) {
			log.Warn().Err(err).Str("queue", queue).Int("attempt", attempt+1).Msg("job attempt failed")
		}
		return err
	})
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Permanent errors stop the loop at once.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * backoffUnit
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		lastErr = err
		if IsPermanent(err) {
			return err
		}
	}
	return lastErr
}

var backoffUnit = time.Second

// popBackoff is the pause after the n-th consecutive BRPOP failure,
// doubling from backoffUnit up to 32 units.
func popBackoff(n int) time.Duration {
	return backoffUnit << uint(min(n-1, 5))
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error { return permanentError{err: err} }

func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

func attemptsFor(err error) int {
	if IsPermanent(err) {
		return 1
	}
	return maxAttempts
}
