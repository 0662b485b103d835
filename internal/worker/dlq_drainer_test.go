package worker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayJob_CarriesDeliveryCount(t *testing.T) {
	entry := DLQEntry{
		OriginalQueue: QueueEmail,
		JobType:       "email",
		Payload:       json.RawMessage(`{"to_email":"ana@example.hn"}`),
		Attempts:      3,
	}

	job, ok := replayJob(entry)
	require.True(t, ok)
	assert.Equal(t, "email", job.Type)
	assert.Equal(t, 3, job.Attempts)
	assert.JSONEq(t, `{"to_email":"ana@example.hn"}`, string(job.Payload))
}

func TestReplayJob_ParksAtRedeliveryLimit(t *testing.T) {
	entry := DLQEntry{JobType: "receipt", Attempts: maxRedeliveries}

	_, ok := replayJob(entry)
	assert.False(t, ok)
}

// A job whose failure is permanent must not cycle between the queue and the
// DLQ forever: each delivery round raises the count the worker reports back,
// and the drainer refuses the replay once the limit is reached.
func TestReplayJob_PermanentFailureTerminates(t *testing.T) {
	job := Job{Type: "email", Payload: json.RawMessage(`{}`)}

	rounds := 0
	for {
		rounds++
		require.LessOrEqual(t, rounds, maxRedeliveries+1, "job cycled past the redelivery limit")

		// Worker fails the delivery and dead-letters the job with the
		// cumulative count, exactly as EmailWorker.Process does.
		entry := DLQEntry{JobType: job.Type, Payload: job.Payload, Attempts: job.Attempts + 1}

		// The envelope survives the Redis round trip with its count intact.
		encoded, err := json.Marshal(entry)
		require.NoError(t, err)
		var decoded DLQEntry
		require.NoError(t, json.Unmarshal(encoded, &decoded))
		assert.Equal(t, entry.Attempts, decoded.Attempts)

		next, ok := replayJob(decoded)
		if !ok {
			assert.Equal(t, maxRedeliveries, decoded.Attempts)
			return
		}
		assert.Equal(t, decoded.Attempts, next.Attempts)
		job = next
	}
}
