package worker

// dlq_drainer.go
// Background goroutine that periodically re-queues dead-lettered jobs onto
// their original queues. Entries that have already been through too many
// delivery rounds stay parked for manual inspection.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	drainTickInterval = 2 * time.Minute
	drainBatchSize    = 10
	maxRedeliveries   = 5
)

// StartDLQDrainer launches a goroutine that ticks every two minutes and
// replays a bounded batch from each DLQ. It respects the context for
// graceful shutdown.
func StartDLQDrainer(ctx context.Context, rdb *redis.Client) {
	go func() {
		ticker := time.NewTicker(drainTickInterval)
		defer ticker.Stop()

		log.Info().Msg("dlq_drainer: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("dlq_drainer: shutting down")
				return
			case <-ticker.C:
				for _, queue := range []string{QueueReceipt, QueueEmail} {
					drainQueue(ctx, rdb, queue)
				}
			}
		}
	}()
}

// replayJob builds the job to re-enqueue for a DLQ entry. The entry's
// cumulative delivery count rides along on the envelope; workers report it
// back (+1) when they dead-letter the job again. Returns false once the
// entry has used up its redeliveries and must stay parked.
func replayJob(entry DLQEntry) (Job, bool) {
	if entry.Attempts >= maxRedeliveries {
		return Job{}, false
	}
	return Job{Type: entry.JobType, Payload: entry.Payload, Attempts: entry.Attempts}, true
}

func drainQueue(ctx context.Context, rdb *redis.Client, queue string) {
	dlqKey := DLQPrefix + queue
	redelivered := 0

	for i := 0; i < drainBatchSize; i++ {
		raw, err := rdb.RPop(ctx, dlqKey).Result()
		if err != nil {
			return // empty, or redis unreachable — either way stop this tick
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("dlq_drainer: unparseable entry dropped")
			continue
		}

		job, ok := replayJob(entry)
		if !ok {
			// Park it back at the head; an operator has to look at it.
			_ = rdb.LPush(ctx, dlqKey, raw).Err()
			log.Warn().
				Str("queue", queue).
				Str("job_type", entry.JobType).
				Int("attempts", entry.Attempts).
				Msg("dlq_drainer: entry exceeded redelivery limit, parked")
			return
		}

		encoded, err := json.Marshal(job)
		if err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("dlq_drainer: re-encode failed")
			continue
		}
		if err := rdb.LPush(ctx, queue, encoded).Err(); err != nil {
			// Replay failed — put the entry back so nothing is lost.
			_ = rdb.LPush(ctx, dlqKey, raw).Err()
			log.Error().Err(err).Str("queue", queue).Msg("dlq_drainer: requeue failed")
			return
		}
		redelivered++
	}

	if redelivered > 0 {
		log.Info().Str("queue", queue).Int("count", redelivered).Msg("dlq_drainer: jobs redelivered")
	}
}
