package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Dead letters live in one capped Redis list per source queue: dlq:{queue}.
const (
	DLQPrefix = "dlq:"
	dlqMaxLen = 1000
)

// Queues lists every job queue the pool consumes.
var Queues = []string{QueueTickets, QueueEmail}

// DLQEntry is what an operator finds in dlq:{queue}. Job is nil when the
// envelope itself could not be decoded; Raw then holds the original bytes.
type DLQEntry struct {
	Queue     string    `json:"queue"`
	Job       *Job      `json:"job,omitempty"`
	Raw       string    `json:"raw,omitempty"`
	Motivo    string    `json:"motivo"`
	Intentos  int       `json:"intentos"`
	FallidoEn time.Time `json:"fallido_en"`
}

// deadLetter parks a job that will not be retried. Newest entries sit at the
// head; anything past dlqMaxLen is trimmed.
func deadLetter(ctx context.Context, rdb *redis.Client, entry DLQEntry) {
	entry.FallidoEn = time.Now().UTC()
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", entry.Queue).Msg("dlq: marshal entry")
		return
	}

	key := DLQPrefix + entry.Queue
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, dlqMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: push")
		return
	}

	ev := log.Warn().Str("queue", entry.Queue).Str("motivo", entry.Motivo).Int("intentos", entry.Intentos)
	if entry.Job != nil {
		ev = ev.Str("job_type", entry.Job.Type)
	}
	ev.Msg("dlq: job descartado")
}

// DLQLengths reports the size of every DLQ, keyed by source queue.
func DLQLengths(ctx context.Context, rdb *redis.Client) (map[string]int64, error) {
	pipe := rdb.Pipeline()
	cmds := make(map[string]*redis.IntCmd, len(Queues))
	for _, q := range Queues {
		cmds[q] = pipe.LLen(ctx, DLQPrefix+q)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(cmds))
	for q, cmd := range cmds {
		out[q] = cmd.Val()
	}
	return out, nil
}
