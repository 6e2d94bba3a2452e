package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueTickets = "jobs:tickets"
	QueueEmail   = "jobs:email"

	JobTicket = "ticket"
	JobEmail  = "email"

	// MaxAttempts per job before it is moved to the DLQ.
	MaxAttempts = 3
)

// retryBaseDelay is the first backoff step; later steps double it.
var retryBaseDelay = time.Second

// Pause between failed queue polls (Redis unreachable); doubles up to the cap.
var (
	pollErrorBaseDelay = time.Second
	pollErrorMaxDelay  = 30 * time.Second
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobHandler processes one payload. Returning an error triggers a retry
// unless it is wrapped with Permanent.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// WorkerHandlers is wired in the composition root (cmd/server).
type WorkerHandlers struct {
	Ticket JobHandler
	Email  JobHandler
}

func (h *WorkerHandlers) forType(jobType string) JobHandler {
	if h == nil {
		return nil
	}
	switch jobType {
	case JobTicket:
		return h.Ticket
	case JobEmail:
		return h.Email
	}
	return nil
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error { return &permanentError{err: err} }

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueTicket pushes a ticket (PDF + optional email) job.
func (d *Dispatcher) EnqueueTicket(ctx context.Context, payload TicketJobPayload) error {
	return d.enqueue(ctx, QueueTickets, JobTicket, payload)
}

// EnqueueEmail pushes an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
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

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP, idle at zero CPU when idle. The returned
// WaitGroup is done once every worker has seen ctx cancelled.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, rdb, handlers, id)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return &wg
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := Queues
	failures := 0
	for {
		if ctx.Err() != nil {
			log.Info().Msgf("worker %d shutting down", id)
			return
		}
		// Blocking pop: waits up to 5s then loops to check ctx
		result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				failures = 0
				continue
			}
			failures++
			wait := pollBackoff(failures)
			log.Warn().Err(err).Int("worker", id).Int("failures", failures).Dur("retry_in", wait).Msg("queue poll failed")
			select {
			case <-ctx.Done():
			case <-time.After(wait):
			}
			continue
		}
		failures = 0
		if len(result) < 2 {
			continue
		}
		processJob(ctx, rdb, handlers, result[0], result[1])
	}
}

// pollBackoff is the pause after the n-th consecutive poll failure.
func pollBackoff(n int) time.Duration {
	wait := pollErrorBaseDelay
	for i := 1; i < n && wait < pollErrorMaxDelay; i++ {
		wait *= 2
	}
	return min(wait, pollErrorMaxDelay)
}

// processJob runs one job with retries; exhausted or permanent failures go
// to the DLQ.
func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		deadLetter(ctx, rdb, DLQEntry{Queue: queue, Raw: raw, Motivo: "envelope inválido: " + err.Error()})
		return
	}

	h := handlers.forType(job.Type)
	if h == nil {
		deadLetter(ctx, rdb, DLQEntry{Queue: queue, Job: &job, Motivo: "sin handler para el tipo de job"})
		return
	}

	attempts, err := withRetry(ctx, MaxAttempts, func(attempt int) error {
		err := h.Process(ctx, job.Payload)
		if err != nil {
			log.Warn().Err(err).Str("type", job.Type).Int("attempt", attempt+1).Msg("job failed")
		}
		return err
	})
	if err != nil {
		deadLetter(ctx, rdb, DLQEntry{Queue: queue, Job: &job, Motivo: err.Error(), Intentos: attempts})
		return
	}
	log.Debug().Str("type", job.Type).Int("attempts", attempts).Msg("job done")
}

// withRetry calls fn up to maxAttempts times with exponential backoff
// (retryBaseDelay, then doubled). Permanent errors stop immediately.
// Returns the number of attempts made and the last error.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) (int, error) {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := retryBaseDelay * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return i, ctx.Err()
			case <-time.After(wait):
			}
		}
		lastErr = fn(i)
		if lastErr == nil {
			return i + 1, nil
		}
		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return i + 1, lastErr
		}
	}
	return maxAttempts, lastErr
}
